package debuglog

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

var (
	mu           sync.RWMutex
	currentLevel = LevelOff
	logger       = zerolog.Nop()
	logFile      *os.File
)

// Setup configures the logging system with the specified level and optional
// file path. Without a path, records go to stderr through a console writer.
func Setup(level LogLevel, filePath ...string) error {
	mu.Lock()
	defer mu.Unlock()

	currentLevel = level

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	if level == LevelOff {
		logger = zerolog.Nop()
		return nil
	}

	var out io.Writer
	if len(filePath) > 0 && filePath[0] != "" {
		if err := os.MkdirAll(filepath.Dir(filePath[0]), 0o755); err != nil {
			return errors.Wrap(err, "failed to create log directory")
		}
		f, err := os.OpenFile(filePath[0], os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrapf(err, "failed to open log file %s", filePath[0])
		}
		logFile = f
		out = f
	} else {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	logger = zerolog.New(out).
		Level(level.zerolog()).
		With().
		Timestamp().
		Str("app", "anirss").
		Logger()
	return nil
}

// SetOutput routes records to w at the given level. Tests use it to capture
// log output.
func SetOutput(w io.Writer, level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
	logger = zerolog.New(w).Level(level.zerolog()).With().Timestamp().Logger()
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// Close closes the log file if open
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	logger = zerolog.Nop()
	currentLevel = LevelOff
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

func event(level LogLevel) *zerolog.Event {
	mu.RLock()
	l := logger
	mu.RUnlock()
	switch level {
	case LevelDebug:
		return l.Debug()
	case LevelInfo:
		return l.Info()
	case LevelWarn:
		return l.Warn()
	default:
		return l.Error()
	}
}

func Debugf(format string, args ...any) {
	event(LevelDebug).Msgf(format, args...)
}

func Infof(format string, args ...any) {
	event(LevelInfo).Msgf(format, args...)
}

func Warnf(format string, args ...any) {
	event(LevelWarn).Msgf(format, args...)
}

func Errorf(format string, args ...any) {
	event(LevelError).Msgf(format, args...)
}

// FieldLogger attaches a fixed set of key-value fields to every record.
type FieldLogger struct {
	fields map[string]interface{}
}

// WithFields returns a new logger with the specified fields
func WithFields(fields map[string]interface{}) *FieldLogger {
	return &FieldLogger{fields: fields}
}

func (fl *FieldLogger) emit(level LogLevel, format string, args ...any) {
	event(level).Fields(fl.fields).Msgf(format, args...)
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	fl.emit(LevelDebug, format, args...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	fl.emit(LevelInfo, format, args...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	fl.emit(LevelWarn, format, args...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	fl.emit(LevelError, format, args...)
}
