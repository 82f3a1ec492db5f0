package logger

import "github.com/nexlog-go/nexlog/core"

// Level re-exports core.Level and its constants for convenience so
// callers need not import the core package directly for everyday use.
type Level = core.Level

const (
	TraceLevel    = core.TraceLevel
	DebugLevel    = core.DebugLevel
	InfoLevel     = core.InfoLevel
	WarnLevel     = core.WarnLevel
	ErrorLevel    = core.ErrorLevel
	CriticalLevel = core.CriticalLevel
)

// ParseLevel re-exports core.ParseLevel.
func ParseLevel(s string) (Level, bool) { return core.ParseLevel(s) }
