package errs

import (
	"errors"
	"testing"
	"time"
)

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	e := Wrap(KindIO, "flush failed", cause)
	if !errors.Is(e, cause) {
		t.Fatal("expected errors.Is to find wrapped cause")
	}
	if e.Kind != KindIO {
		t.Fatalf("got kind %v, want KindIO", e.Kind)
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(KindIO, "msg", nil) != nil {
		t.Fatal("expected nil for nil cause")
	}
}

func TestKindStrings(t *testing.T) {
	cases := map[Kind]string{
		KindConfig:     "config",
		KindIO:         "io",
		KindBuffer:     "buffer",
		KindState:      "state",
		KindUnexpected: "unexpected",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", k, got, want)
		}
	}
}

func TestErrorHandlerFunc(t *testing.T) {
	var got ErrorContext
	var h ErrorHandler = ErrorHandlerFunc(func(ctx ErrorContext) { got = ctx })
	h.HandleError(ErrorContext{Kind: KindState, Message: "bad"})
	if got.Message != "bad" || got.Kind != KindState {
		t.Fatalf("handler did not receive context: %+v", got)
	}
}

func TestRetryHandlerRetriesUpToBudget(t *testing.T) {
	calls := 0
	inner := ErrorHandlerFunc(func(ctx ErrorContext) { calls++ })
	h := NewRetryHandler(inner, 2, time.Microsecond)
	h.HandleError(ErrorContext{})
	if calls != 3 {
		t.Fatalf("got %d calls, want 3 (1 initial + 2 retries)", calls)
	}
}

func TestRetryHandlerZeroRetriesCallsOnce(t *testing.T) {
	calls := 0
	inner := ErrorHandlerFunc(func(ctx ErrorContext) { calls++ })
	h := NewRetryHandler(inner, 0, 0)
	h.HandleError(ErrorContext{})
	if calls != 1 {
		t.Fatalf("got %d calls, want 1", calls)
	}
}
