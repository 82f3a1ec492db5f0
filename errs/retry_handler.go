package errs

import "time"

// RetryHandler wraps another ErrorHandler and re-invokes it up to
// MaxRetries times, waiting RetryDelay between attempts, before giving
// up silently (§7: "may retry up to max_retries with retry_delay_ms").
// Retries only make sense when the wrapped handler can itself fail
// (e.g. a network reporter); HandleError has no return value to signal
// that, so RetryHandler instead re-runs unconditionally up to the
// retry budget — suited to handlers where a later attempt might reach
// a recovering backend even though none reports success explicitly.
type RetryHandler struct {
	Next       ErrorHandler
	MaxRetries int
	RetryDelay time.Duration
}

// NewRetryHandler builds a RetryHandler around next.
func NewRetryHandler(next ErrorHandler, maxRetries int, retryDelay time.Duration) *RetryHandler {
	return &RetryHandler{Next: next, MaxRetries: maxRetries, RetryDelay: retryDelay}
}

func (h *RetryHandler) HandleError(ctx ErrorContext) {
	attempts := h.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		h.Next.HandleError(ctx)
		if i < attempts-1 && h.RetryDelay > 0 {
			time.Sleep(h.RetryDelay)
		}
	}
}
