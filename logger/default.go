package logger

import (
	"sync"

	"github.com/nexlog-go/nexlog/core"
	"github.com/nexlog-go/nexlog/handler"
)

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

func init() {
	console, err := handler.NewConsoleSink(handler.ConsoleConfig{MinLevel: core.InfoLevel})
	if err != nil {
		panic(err)
	}

	l, err := NewBuilder().
		WithSink(console).
		WithLevel(core.InfoLevel).
		Build()
	if err != nil {
		panic(err)
	}
	defaultLogger = l
}

// Default returns the package-level default Logger.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the package-level default Logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Package-level convenience functions delegating to Default().

func Trace(msg string, fields ...core.Field) error    { return Default().Trace(msg, fields...) }
func Debug(msg string, fields ...core.Field) error    { return Default().Debug(msg, fields...) }
func Info(msg string, fields ...core.Field) error     { return Default().Info(msg, fields...) }
func Warn(msg string, fields ...core.Field) error     { return Default().Warn(msg, fields...) }
func Error(msg string, fields ...core.Field) error    { return Default().Error(msg, fields...) }
func Critical(msg string, fields ...core.Field) error { return Default().Critical(msg, fields...) }

func TraceSafe(msg string, fields ...core.Field)    { Default().TraceSafe(msg, fields...) }
func DebugSafe(msg string, fields ...core.Field)    { Default().DebugSafe(msg, fields...) }
func InfoSafe(msg string, fields ...core.Field)     { Default().InfoSafe(msg, fields...) }
func WarnSafe(msg string, fields ...core.Field)     { Default().WarnSafe(msg, fields...) }
func ErrorSafe(msg string, fields ...core.Field)    { Default().ErrorSafe(msg, fields...) }
func CriticalSafe(msg string, fields ...core.Field) { Default().CriticalSafe(msg, fields...) }

// With creates a child of the default Logger carrying additional fields.
func With(fields ...core.Field) *Logger {
	return Default().With(fields...)
}
