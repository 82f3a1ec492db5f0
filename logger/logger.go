package logger

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/nexlog-go/nexlog/core"
	"github.com/nexlog-go/nexlog/errs"
	"github.com/nexlog-go/nexlog/formatter"
	"github.com/nexlog-go/nexlog/handler"
)

// Logger is the synchronous logger of §4.D: an ordered list of sinks,
// a console formatter (colors honored) and a file formatter (colors
// always disabled), fanned out to under a single mutex per record.
type Logger struct {
	mu   sync.Mutex
	sinks []handler.Sink

	consoleTpl *formatter.Template
	fileTpl    *formatter.Template

	level         core.Level
	fields        []core.Field
	includeCaller bool
	callerSkip    int
	enableMeta    bool

	errH errs.ErrorHandler
}

// Builder provides the teacher's fluent With*-chain construction idiom
// (logger/logger.go in the source tree), adapted to build a
// multi-sink synchronous Logger instead of a single-handler one.
type Builder struct {
	sinks         []handler.Sink
	consoleCfg    formatter.Config
	fileCfg       formatter.Config
	level         core.Level
	fields        []core.Field
	includeCaller bool
	callerSkip    int
	enableMeta    bool
	errH          errs.ErrorHandler
}

// NewBuilder creates a Builder with §6's defaults.
func NewBuilder() *Builder {
	return &Builder{
		level:      core.InfoLevel,
		callerSkip: 4,
		enableMeta: true,
		consoleCfg: formatter.Config{Template: formatter.DefaultConsoleTemplate},
		fileCfg:    formatter.Config{Template: formatter.DefaultFileTemplate},
	}
}

func (b *Builder) WithSink(s handler.Sink) *Builder {
	b.sinks = append(b.sinks, s)
	return b
}

func (b *Builder) WithLevel(level core.Level) *Builder {
	b.level = level
	return b
}

func (b *Builder) WithFields(fields ...core.Field) *Builder {
	b.fields = append(b.fields, fields...)
	return b
}

func (b *Builder) WithCaller(enabled bool) *Builder {
	b.includeCaller = enabled
	return b
}

func (b *Builder) WithMetadata(enabled bool) *Builder {
	b.enableMeta = enabled
	return b
}

func (b *Builder) WithConsoleFormat(cfg formatter.Config) *Builder {
	b.consoleCfg = cfg
	return b
}

func (b *Builder) WithFileFormat(cfg formatter.Config) *Builder {
	b.fileCfg = cfg
	return b
}

func (b *Builder) WithErrorHandler(h errs.ErrorHandler) *Builder {
	b.errH = h
	return b
}

// Build compiles the console/file templates and returns the Logger.
func (b *Builder) Build() (*Logger, error) {
	consoleCfg := b.consoleCfg
	fileCfg := b.fileCfg
	fileCfg.UseColor = false // file formatter never carries ANSI (§4.D)

	consoleTpl, err := formatter.Compile(consoleCfg, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, "compile console formatter", err)
	}
	fileTpl, err := formatter.Compile(fileCfg, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, "compile file formatter", err)
	}

	return &Logger{
		sinks:         append([]handler.Sink(nil), b.sinks...),
		consoleTpl:    consoleTpl,
		fileTpl:       fileTpl,
		level:         b.level,
		fields:        b.fields,
		includeCaller: b.includeCaller,
		callerSkip:    b.callerSkip,
		enableMeta:    b.enableMeta,
		errH:          b.errH,
	}, nil
}

// AddHandler registers a sink (§6: addHandler).
func (l *Logger) AddHandler(s handler.Sink) {
	l.mu.Lock()
	l.sinks = append(l.sinks, s)
	l.mu.Unlock()
}

// RemoveHandler unregisters a sink by identity (§6: removeHandler).
func (l *Logger) RemoveHandler(s handler.Sink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.sinks {
		if existing == s {
			l.sinks = append(l.sinks[:i], l.sinks[i+1:]...)
			return
		}
	}
}

// With returns a new Logger sharing sinks/templates but carrying
// additional default fields (immutable operation, per the teacher).
func (l *Logger) With(fields ...core.Field) *Logger {
	newFields := make([]core.Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &Logger{
		sinks:         l.sinks,
		consoleTpl:    l.consoleTpl,
		fileTpl:       l.fileTpl,
		level:         l.level,
		fields:        newFields,
		includeCaller: l.includeCaller,
		callerSkip:    l.callerSkip,
		enableMeta:    l.enableMeta,
		errH:          l.errH,
	}
}

// Log is the core operation (§4.D): level gate, mutex-guarded fan-out
// to every sink with the sink-appropriate formatter, error handler
// reporting per sink without aborting delivery to the rest. fields is
// accepted for call-site symmetry with LogStructured but the §4.B
// placeholder template has no per-field rendering; use LogStructured
// when fields must reach the output.
func (l *Logger) Log(level core.Level, msg string, fields ...core.Field) error {
	if level < l.level {
		return nil
	}

	md := l.buildMetadata()

	l.mu.Lock()
	defer l.mu.Unlock()

	var errors []error
	for _, s := range l.sinks {
		if level < s.MinLevel() {
			continue
		}
		tpl := l.fileTpl
		if s.Kind() == handler.KindConsole {
			tpl = l.consoleTpl
		}
		b, err := tpl.Render(level, msg, &md)
		if err != nil {
			l.report(errs.KindConfig, fmt.Sprintf("render: %v", err))
			errors = append(errors, err)
			continue
		}
		if err := s.WritePreformatted(append(b, '\n')); err != nil {
			l.report(errs.KindIO, fmt.Sprintf("sink write: %v", err))
			errors = append(errors, err)
		}
	}
	return multierr.Combine(errors...)
}

// LogStructured bypasses the console/file template selection and
// calls each sink's own WriteStructured, carrying fields through for
// sinks whose formatter renders structured output (§4.C).
func (l *Logger) LogStructured(level core.Level, msg string, fields ...core.Field) error {
	if level < l.level {
		return nil
	}

	md := l.buildMetadata()
	allFields := l.fields
	if len(fields) > 0 {
		allFields = append(append([]core.Field(nil), l.fields...), fields...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var errors []error
	for _, s := range l.sinks {
		if level < s.MinLevel() {
			continue
		}
		if err := s.WriteStructured(level, msg, allFields, &md); err != nil {
			l.report(errs.KindIO, fmt.Sprintf("sink write: %v", err))
			errors = append(errors, err)
		}
	}
	return multierr.Combine(errors...)
}

func (l *Logger) buildMetadata() core.Metadata {
	md := core.Metadata{Timestamp: time.Now()}
	if !l.enableMeta {
		return md
	}
	md.Thread = core.ThreadID()
	if l.includeCaller {
		file, line, fn := core.GetCaller(l.callerSkip)
		md.File, md.Line, md.Function = file, line, fn
	}
	md.Context = core.GetActive()
	return md
}

func (l *Logger) report(kind errs.Kind, msg string) {
	if l.errH == nil {
		return
	}
	file, line, _ := core.GetCaller(2)
	l.errH.HandleError(errs.ErrorContext{Kind: kind, Message: msg, File: file, Line: line, Timestamp: time.Now()})
}

// Trace/Debug/Info/Warn/Error/Critical log at the fixed level,
// returning every sink's delivery error combined with multierr (nil if
// none failed).
func (l *Logger) Trace(msg string, fields ...core.Field) error    { return l.Log(core.TraceLevel, msg, fields...) }
func (l *Logger) Debug(msg string, fields ...core.Field) error    { return l.Log(core.DebugLevel, msg, fields...) }
func (l *Logger) Info(msg string, fields ...core.Field) error     { return l.Log(core.InfoLevel, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...core.Field) error     { return l.Log(core.WarnLevel, msg, fields...) }
func (l *Logger) Error(msg string, fields ...core.Field) error    { return l.Log(core.ErrorLevel, msg, fields...) }
func (l *Logger) Critical(msg string, fields ...core.Field) error { return l.Log(core.CriticalLevel, msg, fields...) }

// TraceSafe/.../CriticalSafe are the "non-failing" convenience
// variants (§4.D): swallow delivery errors and flush every sink
// afterward, for best-effort fire-and-forget call sites such as a
// program's exit path.
func (l *Logger) TraceSafe(msg string, fields ...core.Field)    { l.logSafe(core.TraceLevel, msg, fields) }
func (l *Logger) DebugSafe(msg string, fields ...core.Field)    { l.logSafe(core.DebugLevel, msg, fields) }
func (l *Logger) InfoSafe(msg string, fields ...core.Field)     { l.logSafe(core.InfoLevel, msg, fields) }
func (l *Logger) WarnSafe(msg string, fields ...core.Field)     { l.logSafe(core.WarnLevel, msg, fields) }
func (l *Logger) ErrorSafe(msg string, fields ...core.Field)    { l.logSafe(core.ErrorLevel, msg, fields) }
func (l *Logger) CriticalSafe(msg string, fields ...core.Field) { l.logSafe(core.CriticalLevel, msg, fields) }

func (l *Logger) logSafe(level core.Level, msg string, fields []core.Field) {
	_ = l.Log(level, msg, fields...)
	_ = l.Flush()
}

// Flush flushes every registered sink, aggregating failures.
func (l *Logger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var errors []error
	for _, s := range l.sinks {
		if err := s.Flush(); err != nil {
			errors = append(errors, err)
		}
	}
	return multierr.Combine(errors...)
}

// Close closes every sink in reverse-registration order, flushing each
// first (§3 Lifecycle: "each handler is deinitialized in
// reverse-registration order, flushing first"), aggregating teardown
// failures with multierr rather than keeping only the last one (§10).
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var errors []error
	for i := len(l.sinks) - 1; i >= 0; i-- {
		if err := l.sinks[i].Close(); err != nil {
			errors = append(errors, err)
		}
	}
	return multierr.Combine(errors...)
}
