package logger

import (
	"time"

	"github.com/nexlog-go/nexlog/async"
	"github.com/nexlog-go/nexlog/core"
	"github.com/nexlog-go/nexlog/errs"
	"github.com/nexlog-go/nexlog/handler"
)

// AsyncLogger is the async pipeline of §4.E: a bounded drop-oldest
// queue feeding a background-worker Processor. Each attached sink is
// wrapped in an async.SinkHandler, which recognizes the flush sentinel
// and otherwise calls the sink's own WriteStructured — so rendering,
// rotation and the console fast path are exactly what the synchronous
// Logger uses, just invoked from the worker instead of the caller.
type AsyncLogger struct {
	queue *async.Queue
	proc  *async.Processor

	level         core.Level
	fields        []core.Field
	includeCaller bool
	callerSkip    int
	enableMeta    bool
}

// AsyncBuilder builds an AsyncLogger.
type AsyncBuilder struct {
	queueSize     int
	sinks         []handler.Sink
	level         core.Level
	fields        []core.Field
	includeCaller bool
	callerSkip    int
	enableMeta    bool
	errH          errs.ErrorHandler
}

// NewAsyncBuilder creates an AsyncBuilder with §6's defaults
// (queue capacity 10000).
func NewAsyncBuilder() *AsyncBuilder {
	return &AsyncBuilder{
		queueSize:  10000,
		level:      core.InfoLevel,
		callerSkip: 4,
		enableMeta: true,
	}
}

func (b *AsyncBuilder) WithQueueSize(n int) *AsyncBuilder {
	b.queueSize = n
	return b
}

func (b *AsyncBuilder) WithSink(s handler.Sink) *AsyncBuilder {
	b.sinks = append(b.sinks, s)
	return b
}

func (b *AsyncBuilder) WithLevel(level core.Level) *AsyncBuilder {
	b.level = level
	return b
}

func (b *AsyncBuilder) WithFields(fields ...core.Field) *AsyncBuilder {
	b.fields = append(b.fields, fields...)
	return b
}

func (b *AsyncBuilder) WithCaller(enabled bool) *AsyncBuilder {
	b.includeCaller = enabled
	return b
}

func (b *AsyncBuilder) WithErrorHandler(h errs.ErrorHandler) *AsyncBuilder {
	b.errH = h
	return b
}

// Build assembles the AsyncLogger. Call Start to launch the worker.
func (b *AsyncBuilder) Build() *AsyncLogger {
	q := async.NewQueue(b.queueSize)
	proc := async.NewProcessor(q, b.errH)
	for _, s := range b.sinks {
		proc.AddHandler(async.NewSinkHandler(s))
	}
	return &AsyncLogger{
		queue:         q,
		proc:          proc,
		level:         b.level,
		fields:        b.fields,
		includeCaller: b.includeCaller,
		callerSkip:    b.callerSkip,
		enableMeta:    b.enableMeta,
	}
}

// AddHandler wraps and registers a sink on the running or not-yet-started
// pipeline.
func (l *AsyncLogger) AddHandler(s handler.Sink) {
	l.proc.AddHandler(async.NewSinkHandler(s))
}

// Start launches the background worker (§6: start()).
func (l *AsyncLogger) Start() error { return l.proc.Start() }

// Stop drains and shuts the worker down, closing every wrapped handler
// in reverse-registration order (§6: stop(); §3 Lifecycle).
func (l *AsyncLogger) Stop() error { return l.proc.Stop() }

// Close is an alias for Stop, matching the synchronous Logger's
// Close for callers that tear down both kinds of logger uniformly.
func (l *AsyncLogger) Close() error { return l.proc.Stop() }

// Drain polls until the queue empties or timeout elapses (§6: drain()).
func (l *AsyncLogger) Drain(timeout time.Duration) error { return l.proc.Drain(timeout) }

// GetStats returns processed/dropped/queued/handler-error counters
// (§6: getStats()).
func (l *AsyncLogger) GetStats() async.Snapshot { return l.proc.Stats() }

// Flush injects a flush sentinel that every attached sink forwards to
// its own Flush (§4.E).
func (l *AsyncLogger) Flush() { l.proc.Flush() }

// Log enqueues a record; it never blocks, per §4.E's push semantics.
func (l *AsyncLogger) Log(level core.Level, msg string, fields ...core.Field) {
	if level < l.level {
		return
	}

	e := core.GetEntry()
	e.Level = level
	e.Message = msg
	if len(l.fields) > 0 {
		e.Fields = append(e.Fields, l.fields...)
	}
	if len(fields) > 0 {
		e.Fields = append(e.Fields, fields...)
	}
	e.Metadata.Timestamp = time.Now()
	if l.enableMeta {
		e.Metadata.Thread = core.ThreadID()
		if l.includeCaller {
			e.Metadata.File, e.Metadata.Line, e.Metadata.Function = core.GetCaller(l.callerSkip)
		}
		e.Metadata.Context = core.GetActive()
	}
	l.queue.Push(e)
}

func (l *AsyncLogger) Trace(msg string, fields ...core.Field)    { l.Log(core.TraceLevel, msg, fields...) }
func (l *AsyncLogger) Debug(msg string, fields ...core.Field)    { l.Log(core.DebugLevel, msg, fields...) }
func (l *AsyncLogger) Info(msg string, fields ...core.Field)     { l.Log(core.InfoLevel, msg, fields...) }
func (l *AsyncLogger) Warn(msg string, fields ...core.Field)     { l.Log(core.WarnLevel, msg, fields...) }
func (l *AsyncLogger) Error(msg string, fields ...core.Field)    { l.Log(core.ErrorLevel, msg, fields...) }
func (l *AsyncLogger) Critical(msg string, fields ...core.Field) { l.Log(core.CriticalLevel, msg, fields...) }
