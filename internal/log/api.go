// Package log provides a leveled structured logger used across the SDK.
// Components never reach for a global logger; they accept a Logger via
// their constructor options and default to Discard().
package log

// Fields provides additional contextual information on log entries.
type Fields = map[string]any

// Level values assign a severity to logged messages.
type Level uint

const (
	// Debug level should be used for information broadly interesting to
	// developers, including minor recoverable failures.
	Debug Level = 0

	// Info level should be used for informational messages highlighting
	// the progress of the application.
	Info Level = 1

	// Warning level should be used for potentially harmful situations.
	Warning Level = 2

	// Error level marks events that prevent normal execution of a single
	// operation, without necessarily terminating the process.
	Error Level = 3
)

// String returns a textual representation of a level value.
func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "invalid-level"
	}
}

// SimpleLogger defines the minimal leveled logging interface used by
// SDK components.
type SimpleLogger interface {
	Debug(args ...any)
	Debugf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warning(args ...any)
	Warningf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
}

// Logger extends SimpleLogger with structured-field and sub-logger support.
type Logger interface {
	SimpleLogger

	// WithFields returns a logger that will include the given fields on
	// the next chained message.
	WithFields(fields Fields) Logger

	// WithField is a single-entry convenience wrapper around WithFields.
	WithField(key string, value any) Logger

	// SetLevel adjusts the verbosity of the logger; messages below lvl
	// are discarded.
	SetLevel(lvl Level)

	// Sub returns a new logger instance tagged with the provided fields
	// for every message it produces.
	Sub(tags Fields) Logger
}
