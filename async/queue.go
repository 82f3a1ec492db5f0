package async

import (
	"sync"
	"sync/atomic"

	"github.com/nexlog-go/nexlog/core"
	"github.com/nexlog-go/nexlog/errs"
)

// ErrQueueClosed is returned by Pop once a closed queue has been fully
// drained (§4.E).
var ErrQueueClosed = errs.New(errs.KindState, "queue closed")

// Queue is a bounded FIFO of log entries with drop-oldest overflow
// (§4.E). Push never blocks: on a full queue it discards the oldest
// entry to admit the new one. Pop blocks until an entry is available
// or the queue is closed and drained; TryPop never blocks.
type Queue struct {
	ch      chan *core.Entry
	dropped uint64

	// closeMu lets Push observe "not yet closed" and complete its send
	// before Close closes the channel, avoiding a send-on-closed-channel
	// panic under concurrent Push/Close.
	closeMu sync.RWMutex
	closed  bool
}

// NewQueue builds a Queue with the given capacity (§6 default: 10000).
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Queue{ch: make(chan *core.Entry, capacity)}
}

// Push enqueues e. If the queue is full, the oldest entry is dropped
// (and its owning Entry returned to the pool) to make room, and the
// dropped counter is incremented. Push on a closed queue is a no-op;
// the entry is returned to the pool immediately.
func (q *Queue) Push(e *core.Entry) {
	q.closeMu.RLock()
	defer q.closeMu.RUnlock()
	if q.closed {
		core.PutEntry(e)
		return
	}

	select {
	case q.ch <- e:
		return
	default:
	}

	// Full: drop the oldest, then retry once.
	select {
	case old := <-q.ch:
		atomic.AddUint64(&q.dropped, 1)
		core.PutEntry(old)
	default:
	}

	select {
	case q.ch <- e:
	default:
		// Raced with another producer refilling the slot we just
		// freed; drop the entry we were trying to push instead.
		atomic.AddUint64(&q.dropped, 1)
		core.PutEntry(e)
	}
}

// Pop blocks until an entry is available or the queue is closed and
// drained, in which case it returns (nil, ErrQueueClosed).
func (q *Queue) Pop() (*core.Entry, error) {
	e, ok := <-q.ch
	if !ok {
		return nil, ErrQueueClosed
	}
	return e, nil
}

// TryPop is Pop's non-blocking counterpart.
func (q *Queue) TryPop() (*core.Entry, bool) {
	select {
	case e, ok := <-q.ch:
		if !ok {
			return nil, false
		}
		return e, true
	default:
		return nil, false
	}
}

// Close closes the queue. Already-buffered entries remain poppable
// until drained.
func (q *Queue) Close() {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

// Len reports the number of entries currently queued.
func (q *Queue) Len() int { return len(q.ch) }

// DroppedCount reports the total number of entries dropped to
// backpressure so far.
func (q *Queue) DroppedCount() uint64 { return atomic.LoadUint64(&q.dropped) }
