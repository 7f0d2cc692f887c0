package log

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

const loggerDomainName = "gateseal"

// Config selects the level and destination of log output.
type Config struct {
	Level    string
	FilePath string

	// Console receives the output when FilePath is empty. Nil means os.Stderr.
	Console io.Writer
}

// Logger is an hclog.Logger with a success level for completed steps.
type Logger struct {
	hclog.Logger
}

func NewLogger(level string) *Logger {
	return newLogger(hclog.LevelFromString(level), os.Stderr)
}

// NewLoggerFromConfig writes to cfg.FilePath when set, otherwise to the console.
//
// If the log file can't be opened, it returns an error.
func NewLoggerFromConfig(cfg Config) (*Logger, error) {
	level := hclog.LevelFromString(cfg.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	if cfg.FilePath == "" {
		if cfg.Console == nil {
			return newLogger(level, os.Stderr), nil
		}
		return newLogger(level, cfg.Console), nil
	}

	logFileWriter, err := os.OpenFile(
		cfg.FilePath,
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0640,
	)
	if err != nil {
		return nil, fmt.Errorf("could not create log file, %w", err)
	}

	return newLogger(level, logFileWriter), nil
}

func newLogger(level hclog.Level, out io.Writer) *Logger {
	return &Logger{
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   loggerDomainName,
			Level:  level,
			Output: out,
		}),
	}
}

// Wrap adapts an existing hclog.Logger.
func Wrap(l hclog.Logger) *Logger {
	return &Logger{Logger: l}
}

// Named returns a sub-logger for one component.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name)}
}

// Success marks a step that finished as expected.
func (l *Logger) Success(msg string, args ...interface{}) {
	l.Info(msg, append(args, "status", "ok")...)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: hclog.NewNullLogger()}
}
