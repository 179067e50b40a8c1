package logger

import "codeberg.org/mutker/llmbind/pkg/llmerr"

type statusReporter struct {
	log Logger
}

// StatusReporter returns an llmerr.Reporter that logs unmapped engine
// statuses as warnings on l.
func StatusReporter(l Logger) llmerr.Reporter {
	return &statusReporter{log: l}
}

func (r *statusReporter) UnmappedStatus(status llmerr.Status) {
	r.log.Warn().
		Int32("status", int32(status)).
		Str("status_name", status.String()).
		Msg("Unmapped error code")
}
