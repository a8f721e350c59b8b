// Package debug provides logging and profiling for output plugins.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	// LogLevelDebug is for detailed debugging information.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general informational messages.
	LogLevelInfo
	// LogLevelWarn is for warning messages.
	LogLevelWarn
	// LogLevelError is for error messages.
	LogLevelError
	// LogLevelFatal only lets fatal errors through. Output plugins never
	// terminate the host, so it behaves like LogLevelOff.
	LogLevelFatal
	// LogLevelOff disables all logging.
	LogLevelOff
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelFatal:
		return "FATAL"
	case LogLevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel converts a level name such as "debug" or "WARN" to a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	var zl zapcore.Level
	switch s {
	case "off", "OFF":
		return LogLevelOff, nil
	case "fatal", "FATAL":
		return LogLevelFatal, nil
	}
	if err := zl.UnmarshalText([]byte(s)); err != nil {
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	switch zl {
	case zapcore.DebugLevel:
		return LogLevelDebug, nil
	case zapcore.InfoLevel:
		return LogLevelInfo, nil
	case zapcore.WarnLevel:
		return LogLevelWarn, nil
	default:
		return LogLevelError, nil
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	default:
		// Fatal and Off. Nothing is ever logged at fatal, so both silence
		// the logger without zap exiting the host process.
		return zapcore.FatalLevel
	}
}

// Logger provides leveled, structured logging backed by zap.
//
// A Logger and every child returned by With share one locked WriteSyncer,
// so loggers used from different window threads never interleave writes.
type Logger struct {
	mu     sync.Mutex
	sink   zapcore.WriteSyncer
	closer io.Closer
	prefix string
	flags  int
	level  LogLevel
	atom   zap.AtomicLevel
	zl     *zap.Logger
	fields []zap.Field
}

// Flags for logger output formatting.
const (
	FlagTime      = 1 << iota // Include timestamp
	FlagShortFile             // Include short file name and line number
	FlagLongFile              // Include full file path and line number
	FlagLevel                 // Include log level
	FlagPrefix                // Include prefix
)

// DefaultFlags are the default formatting flags.
const DefaultFlags = FlagTime | FlagShortFile | FlagLevel | FlagPrefix

var defaultLogger *Logger

func init() {
	defaultLogger = New(os.Stderr, "vroutput", DefaultFlags)
}

// New creates a new logger instance.
func New(output io.Writer, prefix string, flags int) *Logger {
	l := &Logger{
		sink:   zapcore.Lock(zapcore.AddSync(output)),
		prefix: prefix,
		flags:  flags,
		level:  LogLevelInfo,
		atom:   zap.NewAtomicLevelAt(zapcore.InfoLevel),
	}
	l.rebuild()
	return l
}

// NewFileLogger creates a logger that writes to a file. Close releases the file.
func NewFileLogger(filename, prefix string, flags int) (*Logger, error) {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := New(file, prefix, flags)
	l.closer = file
	return l, nil
}

// rebuild recreates the zap core. Callers hold l.mu or own l exclusively.
func (l *Logger) rebuild() {
	enc := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000"),
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if l.flags&FlagTime != 0 {
		enc.TimeKey = "time"
	}
	if l.flags&FlagLevel != 0 {
		enc.LevelKey = "level"
	}
	if l.flags&FlagPrefix != 0 {
		enc.NameKey = "logger"
	}
	if l.flags&(FlagShortFile|FlagLongFile) != 0 {
		enc.CallerKey = "caller"
		if l.flags&FlagLongFile != 0 {
			enc.EncodeCaller = zapcore.FullCallerEncoder
		}
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), l.sink, l.atom)
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
	if l.prefix != "" {
		zl = zl.Named(l.prefix)
	}
	l.zl = zl.With(l.fields...)
}

// With returns a child logger that adds fields to every message. The child
// writes to the same sink but does not own it.
func (l *Logger) With(fields ...zap.Field) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	child := &Logger{
		sink:   l.sink,
		prefix: l.prefix,
		flags:  l.flags,
		level:  l.level,
		atom:   zap.NewAtomicLevelAt(l.atom.Level()),
		fields: append(append([]zap.Field(nil), l.fields...), fields...),
	}
	child.rebuild()
	return child
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.atom.SetLevel(level.zapLevel())
}

// Sync flushes buffered output.
func (l *Logger) Sync() error {
	return l.sink.Sync()
}

// Close flushes output and closes the log file opened by NewFileLogger.
// Children created with With must not be used afterwards.
func (l *Logger) Close() error {
	_ = l.Sync()

	l.mu.Lock()
	c := l.closer
	l.closer = nil
	l.mu.Unlock()

	if c == nil {
		return nil
	}
	return c.Close()
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	current, zl := l.level, l.zl
	l.mu.Unlock()

	if level < current {
		return
	}

	msg := fmt.Sprintf(format, args...)
	switch level {
	case LogLevelDebug:
		zl.Debug(msg)
	case LogLevelInfo:
		zl.Info(msg)
	case LogLevelWarn:
		zl.Warn(msg)
	default:
		zl.Error(msg)
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LogLevelDebug, format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LogLevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LogLevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LogLevelError, format, args...)
}

// Default returns the logger used when no other logger is configured.
func Default() *Logger {
	return defaultLogger
}
