package llmerr

import (
	"errors"
	"strconv"
	"strings"
)

// Detail provides a low-level description of the last engine failure.
type Detail interface {
	ErrorString() string
}

// Error is a failure reported by the engine. It is immutable once built.
type Error struct {
	status       Status
	kind         Kind
	shortMessage string
	messageStack []string
	display      string
}

// Error returns the composed display string.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	return e.display
}

func (e *Error) Status() Status       { return e.status }
func (e *Error) Kind() Kind           { return e.kind }
func (e *Error) Name() string         { return e.kind.Name() }
func (e *Error) ShortMessage() string { return e.shortMessage }

// MessageStack returns a copy of the engine message stack.
func (e *Error) MessageStack() []string {
	if len(e.messageStack) == 0 {
		return nil
	}

	out := make([]string, len(e.messageStack))
	copy(out, e.messageStack)

	return out
}

// Is matches a Kind target. KindBase matches every *Error.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	if !ok {
		return false
	}

	return k == KindBase || k == e.kind
}

func newError(status Status, kind Kind, msg string, stack []string, detail Detail) *Error {
	var cloned []string
	if len(stack) > 0 {
		cloned = make([]string, len(stack))
		copy(cloned, stack)
	}

	return &Error{
		status:       status,
		kind:         kind,
		shortMessage: msg,
		messageStack: cloned,
		display:      compose(msg, cloned, detail),
	}
}

func compose(msg string, stack []string, detail Detail) string {
	var sb strings.Builder
	sb.WriteString(msg)

	if detail != nil {
		if s := detail.ErrorString(); s != "" {
			sb.WriteString("\nDetails: ")
			sb.WriteString(s)
		}
	}

	if len(stack) > 0 {
		sb.WriteString(": ")
		for i, entry := range stack {
			sb.WriteString("\n  [")
			sb.WriteString(strconv.Itoa(i))
			sb.WriteString("] ")
			sb.WriteString(entry)
		}
	}

	return sb.String()
}

// AsError returns the *Error in err's chain, or nil.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return nil
}

// IsStopIteration reports whether err signals the engine's end of sequence.
func IsStopIteration(err error) bool {
	e := AsError(err)
	return e != nil && e.kind == KindStopIteration
}
