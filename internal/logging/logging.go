package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level controls which log lines are emitted
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level, defaulting to info
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field is a structured logging attribute attached to a single log line
type Field struct {
	fields []zap.Field
}

// WithField creates a single key/value field
func WithField(key string, value interface{}) Field {
	return Field{fields: []zap.Field{zap.Any(key, value)}}
}

// WithFields creates a field carrying every entry of the map
func WithFields(m map[string]interface{}) Field {
	fs := make([]zap.Field, 0, len(m))
	for k, v := range m {
		fs = append(fs, zap.Any(k, v))
	}
	return Field{fields: fs}
}

// Logger is a leveled structured logger backed by zap
type Logger struct {
	z *zap.Logger
}

// New creates a logger writing JSON lines to stdout at the given level
func New(level Level) *Logger {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapLevel(level))
	zc.DisableStacktrace = true
	zc.OutputPaths = []string{"stdout"}

	z, err := zc.Build()
	if err != nil {
		panic(err)
	}
	return &Logger{z: z}
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func flatten(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.fields...)
	}
	return out
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.z.Debug(msg, flatten(fields)...)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.z.Info(msg, flatten(fields)...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.z.Warn(msg, flatten(fields)...)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.z.Error(msg, flatten(fields)...)
}

// Sync flushes buffered log entries; call before process exit
func (l *Logger) Sync() {
	_ = l.z.Sync()
}
