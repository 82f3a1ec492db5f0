package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nexlog-go/nexlog/core"
	"github.com/nexlog-go/nexlog/handler"
)

func TestAsyncLoggerDeliversAfterStop(t *testing.T) {
	var buf bytes.Buffer
	sink, err := handler.NewConsoleSink(handler.ConsoleConfig{Writer: &buf, MinLevel: core.InfoLevel})
	if err != nil {
		t.Fatal(err)
	}

	al := NewAsyncBuilder().WithSink(sink).WithLevel(core.InfoLevel).WithQueueSize(4).Build()
	if err := al.Start(); err != nil {
		t.Fatal(err)
	}

	al.Info("async message")

	if err := al.Stop(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "async message") {
		t.Fatalf("expected delivered message, got %q", buf.String())
	}
}

func TestAsyncLoggerLevelGate(t *testing.T) {
	var buf bytes.Buffer
	sink, err := handler.NewConsoleSink(handler.ConsoleConfig{Writer: &buf, MinLevel: core.InfoLevel})
	if err != nil {
		t.Fatal(err)
	}
	al := NewAsyncBuilder().WithSink(sink).WithLevel(core.WarnLevel).Build()
	if err := al.Start(); err != nil {
		t.Fatal(err)
	}
	al.Info("gated")
	al.Warn("passes")
	if err := al.Stop(); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "gated") {
		t.Fatalf("expected info to be gated before queueing, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "passes") {
		t.Fatalf("expected warn to pass, got %q", buf.String())
	}
}

func TestAsyncLoggerDropsOldestUnderPressure(t *testing.T) {
	var buf bytes.Buffer
	sink, err := handler.NewConsoleSink(handler.ConsoleConfig{Writer: &buf, MinLevel: core.InfoLevel})
	if err != nil {
		t.Fatal(err)
	}
	al := NewAsyncBuilder().WithSink(sink).WithLevel(core.InfoLevel).WithQueueSize(1).Build()
	// Worker not started: every push beyond capacity drops the oldest.
	al.Info("first")
	al.Info("second")
	al.Info("third")

	stats := al.GetStats()
	if stats.Dropped == 0 {
		t.Fatalf("expected drops under pressure, got stats %+v", stats)
	}
}

func TestAsyncLoggerDrainTimesOutWithoutStart(t *testing.T) {
	sink, err := handler.NewConsoleSink(handler.ConsoleConfig{MinLevel: core.InfoLevel})
	if err != nil {
		t.Fatal(err)
	}
	al := NewAsyncBuilder().WithSink(sink).WithLevel(core.InfoLevel).WithQueueSize(4).Build()
	al.Info("never consumed")

	if err := al.Drain(20 * time.Millisecond); err == nil {
		t.Fatal("expected drain to time out with no worker running")
	}
}
