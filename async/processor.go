package async

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/nexlog-go/nexlog/core"
	"github.com/nexlog-go/nexlog/errs"
)

// FlushSentinel is the message value Flush injects into the queue.
// Handler implementations recognize it and forward to their
// underlying Flush rather than rendering it as a record (§4.E).
const FlushSentinel = "__FLUSH__"

// Handler processes entries popped off a Queue by a Processor's worker.
type Handler interface {
	HandleAsync(e *core.Entry) error
	Close() error
}

const (
	stateIdle int32 = iota
	stateRunning
	stateStopped
)

// Processor owns one background worker and a list of Handlers (§4.E).
type Processor struct {
	queue *Queue
	errH  errs.ErrorHandler

	mu       sync.Mutex
	handlers []Handler

	stats Stats
	state int32
	wg    sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

// NewProcessor builds a Processor draining from queue.
func NewProcessor(queue *Queue, errH errs.ErrorHandler) *Processor {
	return &Processor{queue: queue, errH: errH}
}

// AddHandler registers h. Safe to call after Start; already-popped
// entries are never retroactively redelivered to a newly added handler
// (§5).
func (p *Processor) AddHandler(h Handler) {
	p.mu.Lock()
	p.handlers = append(p.handlers, h)
	p.mu.Unlock()
}

// Start launches the worker goroutine. Calling Start twice fails with
// a State error (§4.E: "start() is idempotent-error").
func (p *Processor) Start() error {
	if !atomic.CompareAndSwapInt32(&p.state, stateIdle, stateRunning) {
		return errs.New(errs.KindState, "processor already started")
	}
	p.wg.Add(1)
	go p.run()
	return nil
}

func (p *Processor) run() {
	defer p.wg.Done()
	for {
		e, err := p.queue.Pop()
		if err != nil {
			return
		}
		p.dispatch(e)
	}
}

func (p *Processor) dispatch(e *core.Entry) {
	p.mu.Lock()
	handlers := p.handlers
	p.mu.Unlock()

	for _, h := range handlers {
		if err := h.HandleAsync(e); err != nil {
			p.stats.incHandlerError()
			p.report(err)
		}
	}
	p.stats.incProcessed()
	core.PutEntry(e)
}

func (p *Processor) report(err error) {
	if p.errH == nil {
		return
	}
	file, line, _ := core.GetCaller(3)
	p.errH.HandleError(errs.ErrorContext{
		Kind:      errs.KindUnexpected,
		Message:   err.Error(),
		File:      file,
		Line:      line,
		Timestamp: time.Now(),
	})
}

// Stop signals the worker to finish its current entry, closes the
// queue so Pop unblocks, and waits for the worker to exit. Any entries
// still buffered in the queue at that point are delivered to handlers
// by the worker itself via ordinary channel-close draining; Stop then
// does one more defensive TryPop pass to cover entries pushed in the
// narrow window between the worker's last Pop and the queue closing.
// Once draining is complete, every registered Handler is closed in
// reverse-registration order, flushing-then-releasing its owned sink
// (§3 Lifecycle). Stop is safe to call without a prior Start: handler
// teardown still runs exactly once.
func (p *Processor) Stop() error {
	if atomic.CompareAndSwapInt32(&p.state, stateRunning, stateStopped) {
		p.queue.Close()
		p.wg.Wait()

		for {
			e, ok := p.queue.TryPop()
			if !ok {
				break
			}
			p.dispatch(e)
		}
	} else {
		atomic.CompareAndSwapInt32(&p.state, stateIdle, stateStopped)
	}
	return p.closeHandlers()
}

// closeHandlers closes every registered Handler in reverse-registration
// order exactly once, aggregating teardown failures with multierr
// rather than keeping only the last one (§10).
func (p *Processor) closeHandlers() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		handlers := p.handlers
		p.mu.Unlock()

		var failures []error
		for i := len(handlers) - 1; i >= 0; i-- {
			if err := handlers[i].Close(); err != nil {
				failures = append(failures, err)
			}
		}
		p.closeErr = multierr.Combine(failures...)
	})
	return p.closeErr
}

// Flush injects a sentinel entry; registered Handlers forward it to
// their underlying sink's Flush (§4.E).
func (p *Processor) Flush() {
	e := core.GetEntry()
	e.Message = FlushSentinel
	p.queue.Push(e)
}

// Drain polls the queue until empty or timeout elapses, sleeping 1ms
// between checks (§4.E).
func (p *Processor) Drain(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for p.queue.Len() > 0 {
		if time.Now().After(deadline) {
			return errs.New(errs.KindState, "drain timeout")
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

// Stats returns a snapshot of processed/dropped/queued/handler-error
// counts (§8 supplemented feature, §12).
func (p *Processor) Stats() Snapshot {
	return p.stats.snapshot(p.queue)
}
