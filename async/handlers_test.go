package async

import (
	"bytes"
	"testing"

	"github.com/nexlog-go/nexlog/core"
	"github.com/nexlog-go/nexlog/handler"
)

func TestSinkHandlerForwardsFlushSentinel(t *testing.T) {
	var buf bytes.Buffer
	sink, err := handler.NewConsoleSink(handler.ConsoleConfig{Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	h := NewSinkHandler(sink)

	e := core.GetEntry()
	e.Message = FlushSentinel
	if err := h.HandleAsync(e); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected flush sentinel not to be rendered, got %q", buf.String())
	}
}

func TestSinkHandlerWritesRecord(t *testing.T) {
	var buf bytes.Buffer
	sink, err := handler.NewConsoleSink(handler.ConsoleConfig{Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	h := NewSinkHandler(sink)

	e := core.GetEntry()
	e.Level = core.InfoLevel
	e.Message = "async hello"
	if err := h.HandleAsync(e); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected record to be written")
	}
}
