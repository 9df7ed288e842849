package logger

import "codeberg.org/mutker/r730fanctl/internal/errors"

// Logger defines the interface for logging operations.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	WithLevel(level LogLevel) *LogEvent
	ErrorWithCode(err errors.Error) *LogEvent
}
