package engine

import (
	"context"
	"os"
	"sync"

	"codeberg.org/mutker/llmbind/internal/config"
	"codeberg.org/mutker/llmbind/internal/errors"
	"codeberg.org/mutker/llmbind/internal/journal"
	"codeberg.org/mutker/llmbind/internal/logger"
	"codeberg.org/mutker/llmbind/pkg/llmerr"
	"github.com/ebitengine/purego"
)

const (
	symGetErrorStack  = "pv_get_error_stack"
	symFreeErrorStack = "pv_free_error_stack"
	symStatusToString = "pv_status_to_string"
	symVersion        = "pv_picollm_version"
)

var closeLib = closeLibrary

// Engine is the error boundary of the native inference engine. Every status
// returned by an engine call goes through Check.
type Engine struct {
	lib      uintptr
	mapper   *llmerr.Mapper
	detail   llmerr.Detail
	recorder journal.Recorder
	log      logger.Logger

	// the engine keeps a single error stack per process
	mu sync.Mutex

	getErrorStack  func(stack *uintptr, depth *int32) int32
	freeErrorStack func(stack uintptr)
	statusToString func(status int32) string
	version        func() string
}

func newEngine(o options) *Engine {
	return &Engine{
		mapper:   llmerr.NewMapper(logger.StatusReporter(o.log)),
		detail:   o.detail,
		recorder: o.recorder,
		log:      o.log,
	}
}

// Open loads the engine shared library at path.
func Open(path string, opts ...Option) (*Engine, error) {
	errFactory := errors.New()

	if path == "" {
		return nil, errFactory.New(ErrLibraryNotFound)
	}

	o := applyOptions(opts)

	lib, err := openLibrary(path)
	if err != nil {
		return nil, errFactory.Wrap(ErrLibraryLoad, err)
	}

	e := newEngine(o)
	e.lib = lib

	if err := e.register(); err != nil {
		if cerr := closeLib(lib); cerr != nil {
			o.log.Warn().Err(cerr).Str("path", path).Msg("Failed to close engine library")
		}
		return nil, err
	}

	o.log.Info().
		Str("path", path).
		Str("version", e.Version()).
		Msg("Engine library loaded")

	return e, nil
}

// NewFromConfig builds the logger and failure journal described by cfg and
// opens the configured engine library. A logger or recorder passed through
// opts replaces the one built from cfg.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Engine, error) {
	errFactory := errors.New()

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, errFactory.Wrap(ErrInitFailed, err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log
	if log == nil {
		log = logger.New(os.Stderr, level, !logger.IsService())
	}

	rec, owned := o.recorder, o.recorder == nil
	if owned {
		rec, err = journal.NewService(cfg.JournalConfig(), log)
		if err != nil {
			appErr := errFactory.Wrap(ErrInitFailed, err)
			logger.ErrorWithCode(log, appErr).Msg("Failed to open failure journal")
			return nil, appErr
		}
	}

	opts = append([]Option{WithLogger(log), WithRecorder(rec)}, opts...)
	e, err := Open(cfg.Library, opts...)
	if err != nil {
		var appErr errors.Error
		if errors.As(err, &appErr) {
			logger.ErrorWithCode(log, appErr).Str("path", cfg.Library).Msg("Failed to open engine")
		}
		if owned {
			if cerr := rec.Close(); cerr != nil {
				log.Warn().Err(cerr).Msg("Failed to close failure journal")
			}
		}
		return nil, err
	}

	return e, nil
}

func (e *Engine) register() error {
	errFactory := errors.New()

	syms := []struct {
		name string
		fn   any
	}{
		{symGetErrorStack, &e.getErrorStack},
		{symFreeErrorStack, &e.freeErrorStack},
		{symStatusToString, &e.statusToString},
		{symVersion, &e.version},
	}

	for _, s := range syms {
		sym, err := findSymbol(e.lib, s.name)
		if err != nil {
			return errFactory.WithData(ErrSymbolNotFound, struct {
				Symbol string
				Error  string
			}{
				Symbol: s.name,
				Error:  err.Error(),
			})
		}
		purego.RegisterFunc(s.fn, sym)
	}

	return nil
}

// Check converts the status returned by an engine call into an error. It
// returns nil for SUCCESS. Otherwise the engine error stack is drained into
// the returned *llmerr.Error, which is also journaled.
func (e *Engine) Check(ctx context.Context, ret int32, msg string) error {
	status := llmerr.Status(ret)
	if status == llmerr.StatusSuccess {
		return nil
	}

	failure := e.mapper.New(status, msg, e.errorStack(), e.detail)

	if err := e.recorder.Record(ctx, failure); err != nil {
		e.log.Warn().Err(err).Msg("Failed to journal engine failure")
	}

	e.log.Debug().
		Str("kind", failure.Name()).
		Str("status", status.String()).
		Int("stack_depth", len(failure.MessageStack())).
		Msg(msg)

	return failure
}

func (e *Engine) errorStack() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.getErrorStack == nil {
		return nil
	}

	var (
		ptr   uintptr
		depth int32
	)
	if st := llmerr.Status(e.getErrorStack(&ptr, &depth)); st != llmerr.StatusSuccess {
		e.log.Warn().
			Str("status", e.statusString(st)).
			Msg("Unable to get engine error state")
		return nil
	}
	if ptr == 0 {
		return nil
	}
	defer e.freeErrorStack(ptr)

	return goStrings(ptr, int(depth))
}

// StatusString returns the engine's name for status.
func (e *Engine) StatusString(status llmerr.Status) string {
	return e.statusString(status)
}

func (e *Engine) statusString(status llmerr.Status) string {
	if e.statusToString != nil {
		if s := e.statusToString(int32(status)); s != "" {
			return s
		}
	}
	return status.String()
}

// Version returns the engine version, or an empty string when unknown.
func (e *Engine) Version() string {
	if e.version == nil {
		return ""
	}
	return e.version()
}

// Close releases the failure journal. The library itself stays loaded for
// the life of the process.
func (e *Engine) Close() error {
	if e.recorder == nil {
		return nil
	}
	if err := e.recorder.Close(); err != nil {
		return errors.New().Wrap(ErrShutdownFailed, err)
	}
	return nil
}
