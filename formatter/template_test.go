package formatter

import (
	"testing"
	"time"

	"github.com/nexlog-go/nexlog/core"
)

func mustCompile(t *testing.T, cfg Config) *Template {
	t.Helper()
	tpl, err := Compile(cfg, nil)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	return tpl
}

// TestScenario1 is §8 scenario 1.
func TestScenario1(t *testing.T) {
	tpl := mustCompile(t, Config{Template: "[{timestamp}] [{level}] {message}"})
	md := &core.Metadata{Timestamp: time.Unix(1640995200, 0)}
	out, err := tpl.Render(core.InfoLevel, "hello", md)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(out); got != "[1640995200] [INFO] hello" {
		t.Fatalf("got %q", got)
	}
}

// TestScenario2 is §8 scenario 2.
func TestScenario2(t *testing.T) {
	tpl := mustCompile(t, Config{
		Template:    "[{timestamp}] [{level}] {message}",
		LevelFormat: LevelShortLower,
	})
	md := &core.Metadata{Timestamp: time.Unix(1640995200, 0)}
	out, err := tpl.Render(core.InfoLevel, "hello", md)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(out); got != "[1640995200] [inf] hello" {
		t.Fatalf("got %q", got)
	}
}

func TestUnknownPlaceholderFails(t *testing.T) {
	_, err := Compile(Config{Template: "{nope}"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown placeholder")
	}
}

func TestUnbalancedBraceFails(t *testing.T) {
	_, err := Compile(Config{Template: "{level"}, nil)
	if err == nil {
		t.Fatal("expected error for unbalanced brace")
	}
}

func TestCustomPlaceholderRegistered(t *testing.T) {
	handlers := map[string]CustomHandlerFunc{
		"sys": func(level core.Level, message string, md *core.Metadata) ([]byte, error) {
			return []byte("sysval"), nil
		},
	}
	tpl, err := Compile(Config{Template: "{sys}:{message}"}, handlers)
	if err != nil {
		t.Fatal(err)
	}
	out, err := tpl.Render(core.InfoLevel, "hi", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(out); got != "sysval:hi" {
		t.Fatalf("got %q", got)
	}
}

func TestColorPlaceholdersEmptyWhenDisabled(t *testing.T) {
	tpl := mustCompile(t, Config{Template: "{color}{level}{reset}", UseColor: false})
	out, _ := tpl.Render(core.ErrorLevel, "", nil)
	if got := string(out); got != "ERROR" {
		t.Fatalf("got %q, want ERROR with no ANSI bytes", got)
	}
}

func TestColorPlaceholdersPresentWhenEnabled(t *testing.T) {
	tpl := mustCompile(t, Config{Template: "{color}{level}{reset}", UseColor: true})
	out, _ := tpl.Render(core.ErrorLevel, "", nil)
	want := core.ErrorLevel.ANSIColor() + "ERROR" + ansiReset
	if got := string(out); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestContextFieldsDashWhenAbsent(t *testing.T) {
	tpl := mustCompile(t, Config{Template: "{request_id}"})
	out, _ := tpl.Render(core.InfoLevel, "", nil)
	if string(out) != "-" {
		t.Fatalf("got %q, want -", out)
	}
	out, _ = tpl.Render(core.InfoLevel, "", &core.Metadata{})
	if string(out) != "-" {
		t.Fatalf("got %q, want - (context nil)", out)
	}
}

func TestContextFieldsRendered(t *testing.T) {
	tpl := mustCompile(t, Config{Template: "{request_id}/{trace_id}"})
	md := &core.Metadata{Context: &core.RequestContext{RequestID: "r1", TraceID: "t1"}}
	out, _ := tpl.Render(core.InfoLevel, "", md)
	if got := string(out); got != "r1/t1" {
		t.Fatalf("got %q", got)
	}
}

// TestISO8601 is §8's ISO-8601 correctness property.
func TestISO8601(t *testing.T) {
	cases := map[int64]string{
		0:          "1970-01-01T00:00:00Z",
		946684800:  "2000-01-01T00:00:00Z",
		1577836800: "2020-01-01T00:00:00Z",
	}
	for sec, want := range cases {
		if got := formatISO8601(sec); got != want {
			t.Errorf("formatISO8601(%d) = %q, want %q", sec, got, want)
		}
	}
	if got := formatISO8601(-1); got != "1970-01-01T00:00:00Z" {
		t.Errorf("formatISO8601(-1) = %q, want epoch literal", got)
	}
}

// TestRenderOverflowsToHeap forces a template render to exceed the
// stack-sized scratch buffer and verifies the heap fallback still
// produces correct output.
func TestRenderOverflowsToHeap(t *testing.T) {
	tpl := mustCompile(t, Config{Template: "{message}", StackBufferSize: 8})
	long := make([]byte, 4096)
	for i := range long {
		long[i] = 'x'
	}
	out, err := tpl.Render(core.InfoLevel, string(long), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(long) {
		t.Fatalf("got len %d, want %d", len(out), len(long))
	}
}
