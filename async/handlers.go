package async

import (
	"github.com/nexlog-go/nexlog/core"
	"github.com/nexlog-go/nexlog/handler"
)

// SinkHandler adapts any handler.Sink to the async Handler interface,
// recognizing FlushSentinel and forwarding it to the sink's Flush
// instead of rendering it (§4.E). It mirrors §4.C's contract on
// already-owned queue messages rather than implementing the file
// rotation / console fast-path logic a second time — the underlying
// Sink (handler.FileSink or handler.ConsoleSink) already does that.
type SinkHandler struct {
	sink handler.Sink
}

// NewSinkHandler wraps sink for use on the async pipeline.
func NewSinkHandler(sink handler.Sink) *SinkHandler {
	return &SinkHandler{sink: sink}
}

func (h *SinkHandler) HandleAsync(e *core.Entry) error {
	if e.Message == FlushSentinel {
		return h.sink.Flush()
	}
	md := e.Metadata
	return h.sink.WriteStructured(e.Level, e.Message, e.Fields, &md)
}

func (h *SinkHandler) Close() error { return h.sink.Close() }

// NewAsyncConsoleHandler wraps a console sink for the async pipeline
// (§4.E: "AsyncConsoleHandler ... writes straight to the OS file
// handle, with optional fast path" — both already true of
// handler.ConsoleSink).
func NewAsyncConsoleHandler(sink *handler.ConsoleSink) *SinkHandler {
	return NewSinkHandler(sink)
}

// NewAsyncFileHandler wraps a file sink for the async pipeline (§4.E:
// "the file variant reuses the circular buffer flush/rotation logic" —
// already true of handler.FileSink).
func NewAsyncFileHandler(sink *handler.FileSink) *SinkHandler {
	return NewSinkHandler(sink)
}
