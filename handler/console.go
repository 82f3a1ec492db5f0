package handler

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/nexlog-go/nexlog/core"
	"github.com/nexlog-go/nexlog/errs"
	"github.com/nexlog-go/nexlog/formatter"
)

// ConsoleConfig configures a ConsoleSink.
type ConsoleConfig struct {
	// Writer defaults to os.Stdout.
	Writer   io.Writer
	MinLevel core.Level
	// UseColor is honored only if Writer is (or wraps) a terminal file
	// descriptor; isatty detection forces it off otherwise.
	UseColor bool
	// FastMode bypasses the formatter entirely, emitting
	// "[timestamp] message\n" (§4.C).
	FastMode     bool
	TemplateCfg  formatter.Config
	CustomFields map[string]formatter.CustomHandlerFunc
	ErrorHandler errs.ErrorHandler
}

// ConsoleSink writes to standard output or standard error (§4.C).
type ConsoleSink struct {
	// mu serializes template rendering in WriteStructured; writeMu
	// serializes writes to the underlying writer, including preformatted
	// bytes from the async pipeline or the logger's fan-out. mu is
	// released before writeMu is taken, so the two are never held at
	// once.
	mu      sync.Mutex
	writeMu sync.Mutex
	writer  io.Writer
	tpl     *formatter.Template
	level   core.Level
	fast    bool
	errH    errs.ErrorHandler
}

// NewConsoleSink builds a ConsoleSink. Color is auto-detected: if the
// resolved writer is not backed by a terminal file descriptor,
// UseColor is forced off regardless of cfg.UseColor.
func NewConsoleSink(cfg ConsoleConfig) (*ConsoleSink, error) {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	useColor := cfg.UseColor && isTerminalWriter(w)
	if useColor {
		if f, ok := w.(*os.File); ok {
			w = colorable.NewColorable(f)
		}
	}

	tplCfg := cfg.TemplateCfg
	if tplCfg.Template == "" {
		tplCfg.Template = formatter.DefaultConsoleTemplate
	}
	tplCfg.UseColor = useColor
	tpl, err := formatter.Compile(tplCfg, cfg.CustomFields)
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, "compile console template", err)
	}

	return &ConsoleSink{
		writer: w,
		tpl:    tpl,
		level:  cfg.MinLevel,
		fast:   cfg.FastMode,
		errH:   cfg.ErrorHandler,
	}, nil
}

// isTerminalWriter reports whether w is an *os.File connected to a
// terminal, per go-isatty.
func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (s *ConsoleSink) Kind() Kind          { return KindConsole }
func (s *ConsoleSink) MinLevel() core.Level { return s.level }

func (s *ConsoleSink) WriteStructured(level core.Level, message string, fields []core.Field, md *core.Metadata) error {
	if level < s.level {
		return nil
	}

	if s.fast {
		ts := time.Now().Unix()
		if md != nil && !md.Timestamp.IsZero() {
			ts = md.Timestamp.Unix()
		}
		line := "[" + strconv.FormatInt(ts, 10) + "] " + message + "\n"
		return s.WritePreformatted([]byte(line))
	}

	s.mu.Lock()
	b, err := s.tpl.Render(level, message, md)
	s.mu.Unlock()
	if err != nil {
		return errs.Wrap(errs.KindConfig, "render console template", err)
	}
	return s.WritePreformatted(append(b, '\n'))
}

func (s *ConsoleSink) WritePreformatted(b []byte) error {
	s.writeMu.Lock()
	_, err := s.writer.Write(b)
	s.writeMu.Unlock()
	if err != nil {
		s.report(errs.KindIO, fmt.Sprintf("console write: %v", err))
		return errs.Wrap(errs.KindIO, "console write", err)
	}
	return nil
}

// Flush is a no-op: the console sink holds no buffered bytes of its own.
func (s *ConsoleSink) Flush() error { return nil }

// Close is a no-op: stdout/stderr are not owned by the sink.
func (s *ConsoleSink) Close() error { return nil }

func (s *ConsoleSink) report(kind errs.Kind, msg string) {
	if s.errH == nil {
		return
	}
	file, line, _ := core.GetCaller(2)
	s.errH.HandleError(errs.ErrorContext{Kind: kind, Message: msg, File: file, Line: line, Timestamp: time.Now()})
}
