package logger

import (
	"os"
	"time"

	"github.com/nexlog-go/nexlog/core"
	"github.com/nexlog-go/nexlog/errs"
	"github.com/nexlog-go/nexlog/formatter"
)

// Config is the flat, programmatic-default configuration record (§6).
// Environment variables, if present, take precedence during startup
// (ApplyEnv).
type Config struct {
	MinLevel      core.Level
	EnableConsole bool
	EnableColors  bool

	EnableFileLogging bool
	FilePath          string
	MaxFileSize       int64
	MaxRotatedFiles   int
	EnableRotation    bool

	BufferSize      int
	FlushIntervalMS int
	AsyncMode       bool
	EnableMetadata  bool

	Formatter    formatter.Config
	ErrorHandler errs.ErrorHandler
}

// DefaultConfig returns Config populated with §6's defaults.
func DefaultConfig() Config {
	return Config{
		MinLevel:          core.InfoLevel,
		EnableConsole:     true,
		EnableColors:      true,
		EnableFileLogging: false,
		MaxFileSize:       10 * 1024 * 1024,
		MaxRotatedFiles:   5,
		EnableRotation:    true,
		BufferSize:        4096,
		FlushIntervalMS:   5000,
		AsyncMode:         false,
		EnableMetadata:    true,
	}
}

// ApplyEnv overlays NEXLOG_LEVEL, NEXLOG_COLOR, NEXLOG_FILE and
// NEXLOG_FORMAT onto cfg when set, per §6's environment override list.
func (c Config) ApplyEnv() Config {
	if v := os.Getenv("NEXLOG_LEVEL"); v != "" {
		if lvl, ok := core.ParseLevel(v); ok {
			c.MinLevel = lvl
		}
	}
	if v := os.Getenv("NEXLOG_COLOR"); v != "" {
		c.EnableColors = v == "1" || v == "true"
	}
	if v := os.Getenv("NEXLOG_FILE"); v != "" {
		c.EnableFileLogging = true
		c.FilePath = v
	}
	if v := os.Getenv("NEXLOG_FORMAT"); v != "" {
		c.Formatter.Template = v
	}
	return c
}

func (c Config) flushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMS) * time.Millisecond
}
