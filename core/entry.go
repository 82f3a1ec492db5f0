package core

import (
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"
)

// RequestContext is the optional context sub-record carried on Metadata:
// request/correlation/trace identifiers plus call-stack bookkeeping.
// All fields are borrowed for the duration of the log call.
type RequestContext struct {
	RequestID     string
	CorrelationID string
	TraceID       string
	SpanID        string
	UserID        string
	SessionID     string
	Operation     string
	Function      string
	Depth         int
	ParentFunc    string
}

// Metadata is the fixed-shape value attached to each log call.
type Metadata struct {
	Timestamp time.Time
	Thread    string
	File      string
	Line      int
	Function  string
	Context   *RequestContext
}

// Entry is one log call's tuple of (level, message, metadata, fields).
// Entries are pooled; callers obtain one with GetEntry and release it
// with PutEntry once every handler has finished with it.
type Entry struct {
	Level    Level
	Message  string
	Fields   []Field
	Metadata Metadata
}

var entryPool = sync.Pool{
	New: func() interface{} {
		return &Entry{
			Fields: make([]Field, 0, 8),
		}
	},
}

// GetEntry retrieves an Entry from the pool with Metadata.Timestamp
// stamped to now and Fields truncated to length zero.
func GetEntry() *Entry {
	e := entryPool.Get().(*Entry)
	e.Metadata = Metadata{Timestamp: time.Now()}
	e.Fields = e.Fields[:0]
	e.Message = ""
	return e
}

// PutEntry returns an Entry to the pool. Safe to call with nil.
func PutEntry(e *Entry) {
	if e == nil {
		return
	}
	e.Fields = e.Fields[:0]
	e.Message = ""
	e.Metadata = Metadata{}
	entryPool.Put(e)
}

// GetCaller walks the goroutine's stack skip frames up and returns the
// file, line and function name found there. The returned Metadata
// fields are zero-valued if the stack does not go that deep.
func GetCaller(skip int) (file string, line int, function string) {
	pc, f, l, ok := runtime.Caller(skip)
	if !ok {
		return "", 0, ""
	}
	fn := runtime.FuncForPC(pc)
	name := ""
	if fn != nil {
		name = fn.Name()
	}
	return filepath.Base(f), l, name
}

// ThreadID returns a stable per-goroutine identifier suitable for the
// Metadata.Thread field. Go has no public goroutine-ID API; this parses
// the numeric prefix out of runtime.Stack's header line, the same trick
// goroutine-local-storage shims use when a hard ID is required.
func ThreadID() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	// Expected form: "goroutine 123 [running]:"
	const prefix = "goroutine "
	if len(b) < len(prefix) {
		return ""
	}
	b = b[len(prefix):]
	end := 0
	for end < len(b) && b[end] >= '0' && b[end] <= '9' {
		end++
	}
	if end == 0 {
		return ""
	}
	return string(b[:end])
}

// gid parses the same digits as ThreadID but as an int64, for use as a
// map key by the context package. It never allocates a string.
func gid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	const prefix = "goroutine "
	if len(b) < len(prefix) {
		return 0
	}
	b = b[len(prefix):]
	end := 0
	for end < len(b) && b[end] >= '0' && b[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseInt(string(b[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
