package llmerr

import "github.com/rs/zerolog/log"

// Reporter receives a notice for every status that has no dedicated variant.
type Reporter interface {
	UnmappedStatus(status Status)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(status Status)

func (f ReporterFunc) UnmappedStatus(status Status) { f(status) }

// Mapper builds *Error values from engine statuses.
type Mapper struct {
	reporter Reporter
}

// NewMapper returns a Mapper that sends unmapped statuses to reporter.
// A nil reporter drops them.
func NewMapper(reporter Reporter) *Mapper {
	return &Mapper{reporter: reporter}
}

// New builds the error variant matching status. stack and detail may be nil.
// An unknown status produces a KindBase error and one reporter notice.
func (m *Mapper) New(status Status, msg string, stack []string, detail Detail) *Error {
	kind, ok := KindOf(status)
	if !ok && m != nil && m.reporter != nil {
		m.reporter.UnmappedStatus(status)
	}

	return newError(status, kind, msg, stack, detail)
}

// globalReporter warns through the zerolog global logger.
var globalReporter = ReporterFunc(func(status Status) {
	log.Warn().
		Int32("status", int32(status)).
		Str("status_name", status.String()).
		Msg("Unmapped error code")
})

var defaultMapper = NewMapper(globalReporter)

// New builds an error with a Mapper that reports unmapped statuses to the
// zerolog global logger.
func New(status Status, msg string, stack []string, detail Detail) *Error {
	return defaultMapper.New(status, msg, stack, detail)
}
