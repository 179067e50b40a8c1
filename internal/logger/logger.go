package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/llmbind/internal/errors"
	"github.com/rs/zerolog"
)

var std = New(os.Stderr, WarnLevel, !IsService())

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

type zeroLogger struct {
	log zerolog.Logger
}

// New returns a Logger writing to w. With console set the output is human
// readable, otherwise it is one JSON object per line.
func New(w io.Writer, level LogLevel, console bool) Logger {
	if console {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	return &zeroLogger{
		log: zerolog.New(w).Level(zerolog.Level(level)).With().Timestamp().Logger(),
	}
}

func (l *zeroLogger) Debug() *LogEvent { return &LogEvent{l.log.Debug()} }
func (l *zeroLogger) Info() *LogEvent  { return &LogEvent{l.log.Info()} }
func (l *zeroLogger) Warn() *LogEvent  { return &LogEvent{l.log.Warn()} }
func (l *zeroLogger) Error() *LogEvent { return &LogEvent{l.log.Error()} }

// Default returns the package logger.
func Default() Logger {
	return std
}

// ParseLevel converts a configured level name to a LogLevel.
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, errors.New().WithData(errors.ErrInvalidLogLevel, level)
	}
}

// IsService checks if the process is running under a service manager
func IsService() bool {
	if os.Getenv("INVOCATION_ID") != "" || os.Getenv("SERVICE_NAME") != "" {
		return true
	}

	return os.Getppid() == 1
}

// ErrorWithCode logs an application error together with its code
func ErrorWithCode(l Logger, err errors.Error) *LogEvent {
	ev := l.Error().Event.
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error())
	if cause := err.Unwrap(); cause != nil {
		ev = ev.AnErr("error", cause)
	}

	return &LogEvent{ev}
}
