package logger

import (
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/r730fanctl/internal/errors"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// Rotation policy for the log file
	logMaxSizeMB  = 5
	logMaxBackups = 5
)

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel maps a configured level name to a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(name) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warning", "warn":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, errors.New().WithData(errors.ErrInvalidLogLevel, name)
	}
}

func (l LogLevel) String() string {
	return zerolog.Level(l).String()
}

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// Config selects where log output goes and how much of it.
type Config struct {
	Level LogLevel
	// File is the path of a rotated log file. Empty means stdout.
	File string
	// IsService suppresses console timestamps when a service manager
	// already stamps every line.
	IsService bool
}

type zlogger struct {
	log    zerolog.Logger
	closer io.Closer
}

// New builds a Logger writing to stdout or a rotated log file. The returned
// close function releases the file; it is a no-op for stdout.
func New(cfg Config) (Logger, func() error) {
	var out io.Writer
	closeFn := func() error { return nil }

	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
		}
		out = zerolog.ConsoleWriter{
			Out:        file,
			NoColor:    true,
			TimeFormat: time.RFC3339,
		}
		closeFn = file.Close
	} else {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		if cfg.IsService {
			output.TimeFormat = ""
			output.FormatTimestamp = func(_ interface{}) string {
				return ""
			}
		}
		out = output
	}

	return FromZerolog(zerolog.New(out).With().Timestamp().Logger().Level(zerolog.Level(cfg.Level))), closeFn
}

// FromZerolog adapts an existing zerolog logger.
func FromZerolog(l zerolog.Logger) Logger {
	return &zlogger{log: l}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &zlogger{log: zerolog.Nop()}
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid()
}

func (l *zlogger) Debug() *LogEvent {
	return &LogEvent{l.log.Debug()}
}

func (l *zlogger) Info() *LogEvent {
	return &LogEvent{l.log.Info()}
}

func (l *zlogger) Warn() *LogEvent {
	return &LogEvent{l.log.Warn()}
}

func (l *zlogger) Error() *LogEvent {
	return &LogEvent{l.log.Error()}
}

func (l *zlogger) WithLevel(level LogLevel) *LogEvent {
	return &LogEvent{l.log.WithLevel(zerolog.Level(level))}
}

// ErrorWithCode logs an error message with a specific error code
func (l *zlogger) ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{l.log.Error().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}
