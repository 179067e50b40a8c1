package engine

import (
	"codeberg.org/mutker/llmbind/internal/journal"
	"codeberg.org/mutker/llmbind/internal/logger"
	"codeberg.org/mutker/llmbind/pkg/llmerr"
)

type options struct {
	log      logger.Logger
	recorder journal.Recorder
	detail   llmerr.Detail
}

type Option func(*options)

// WithLogger sets the logger used for boundary diagnostics and unmapped
// status warnings.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithRecorder journals every failure Check translates.
func WithRecorder(r journal.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithDetail sets the provider queried for a low-level description of each
// failure.
func WithDetail(d llmerr.Detail) Option {
	return func(o *options) {
		o.detail = d
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Default()
	}
	if o.recorder == nil {
		o.recorder = journal.Noop()
	}
	return o
}
