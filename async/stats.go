package async

import "sync/atomic"

// Stats tracks the async pipeline's accounting (§8: accepted_pushes =
// processed + currently_queued + dropped). Grounded on the teacher's
// handler.Stats (handler/policy.go), extended with the buffer-style
// counters §4.A/§8 require.
type Stats struct {
	processed      uint64
	handlerErrors  uint64
}

// Snapshot is a point-in-time copy of Stats plus the live queue
// occupancy and drop count, which the Queue tracks itself.
type Snapshot struct {
	Processed     uint64
	Dropped       uint64
	Queued        int
	HandlerErrors uint64
}

func (s *Stats) incProcessed() { atomic.AddUint64(&s.processed, 1) }
func (s *Stats) addProcessed(n uint64) { atomic.AddUint64(&s.processed, n) }
func (s *Stats) incHandlerError() { atomic.AddUint64(&s.handlerErrors, 1) }

func (s *Stats) snapshot(q *Queue) Snapshot {
	return Snapshot{
		Processed:     atomic.LoadUint64(&s.processed),
		Dropped:       q.DroppedCount(),
		Queued:        q.Len(),
		HandlerErrors: atomic.LoadUint64(&s.handlerErrors),
	}
}
