package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nexlog-go/nexlog/core"
)

// ErrInvalidPlaceholder is returned by Compile for an unbalanced brace,
// an unknown placeholder name with no registered custom handler, or a
// malformed format spec.
var ErrInvalidPlaceholder = errors.New("formatter: invalid placeholder")

type placeholderKind uint8

const (
	phTimestamp placeholderKind = iota
	phLevel
	phMessage
	phThread
	phFile
	phLine
	phFunction
	phComponent
	phColor
	phReset
	phRequestID
	phCorrelationID
	phTraceID
	phSpanID
	phUserID
	phSessionID
	phOperation
	phCustom
)

var builtinNames = map[string]placeholderKind{
	"timestamp":      phTimestamp,
	"level":          phLevel,
	"message":        phMessage,
	"thread":         phThread,
	"file":           phFile,
	"line":           phLine,
	"function":       phFunction,
	"component":      phComponent,
	"color":          phColor,
	"reset":          phReset,
	"request_id":     phRequestID,
	"correlation_id": phCorrelationID,
	"trace_id":       phTraceID,
	"span_id":        phSpanID,
	"user_id":        phUserID,
	"session_id":     phSessionID,
	"operation":      phOperation,
}

// segment is either a literal run of text or a parsed placeholder.
type segment struct {
	literal    string
	isLiteral  bool
	kind       placeholderKind
	customName string
	formatSpec string
}

// CustomHandlerFunc renders the {custom} placeholder (or a named custom
// placeholder registered under a different name).
type CustomHandlerFunc func(level core.Level, message string, md *core.Metadata) ([]byte, error)

// Template is a pre-parsed placeholder template (§4.B). Construction
// happens once; Render is called on the hot path.
type Template struct {
	cfg      Config
	segments []segment
	custom   map[string]CustomHandlerFunc

	scratchPool sync.Pool
}

// Compile parses cfg.Template (or DefaultConsoleTemplate if it is
// empty) into a Template. customHandlers may be nil.
func Compile(cfg Config, customHandlers map[string]CustomHandlerFunc) (*Template, error) {
	cfg = cfg.withDefaults()
	segs, err := parseTemplate(cfg.Template, customHandlers)
	if err != nil {
		return nil, err
	}
	t := &Template{cfg: cfg, segments: segs, custom: customHandlers}
	bufSize := cfg.StackBufferSize
	t.scratchPool.New = func() interface{} {
		b := make([]byte, 0, bufSize)
		return &b
	}
	return t, nil
}

func parseTemplate(tpl string, customHandlers map[string]CustomHandlerFunc) ([]segment, error) {
	var segs []segment
	i := 0
	for i < len(tpl) {
		start := i
		for i < len(tpl) && tpl[i] != '{' {
			i++
		}
		if i > start {
			segs = append(segs, segment{literal: tpl[start:i], isLiteral: true})
		}
		if i >= len(tpl) {
			break
		}
		// tpl[i] == '{'
		close := indexByte(tpl, i+1, '}')
		if close < 0 {
			return nil, fmt.Errorf("%w: unbalanced '{' at offset %d", ErrInvalidPlaceholder, i)
		}
		body := tpl[i+1 : close]
		name, spec := body, ""
		if colon := indexByte(body, 0, ':'); colon >= 0 {
			name, spec = body[:colon], body[colon+1:]
			if spec == "" {
				return nil, fmt.Errorf("%w: empty format spec for %q", ErrInvalidPlaceholder, name)
			}
		}
		if name == "custom" {
			segs = append(segs, segment{kind: phCustom, customName: "custom", formatSpec: spec})
		} else if kind, ok := builtinNames[name]; ok {
			segs = append(segs, segment{kind: kind, formatSpec: spec})
		} else if _, ok := customHandlers[name]; ok {
			segs = append(segs, segment{kind: phCustom, customName: name, formatSpec: spec})
		} else {
			return nil, fmt.Errorf("%w: unknown placeholder %q", ErrInvalidPlaceholder, name)
		}
		i = close + 1
	}
	return segs, nil
}

func indexByte(s string, from int, b byte) int {
	for i := from; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// levelText renders the level according to cfg.LevelFormat.
func levelText(l core.Level, f LevelFormat) string {
	switch f {
	case LevelLower:
		return toLower(l.String())
	case LevelShortUpper:
		return l.Short()
	case LevelShortLower:
		return toLower(l.Short())
	default:
		return l.String()
	}
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

const ansiReset = "\x1b[0m"

// Render formats level/message/metadata per the compiled template,
// attempting a stack-sized scratch buffer first and falling back to a
// growable heap buffer on overflow. The returned slice is owned by the
// caller.
func (t *Template) Render(level core.Level, message string, md *core.Metadata) ([]byte, error) {
	scratchPtr := t.scratchPool.Get().(*[]byte)
	scratch := (*scratchPtr)[:0]
	sink := &fixedSink{buf: scratch}
	err := t.renderInto(sink, level, message, md)
	if err == nil && !sink.overflowed {
		out := make([]byte, len(sink.buf))
		copy(out, sink.buf)
		*scratchPtr = sink.buf[:0]
		t.scratchPool.Put(scratchPtr)
		return out, nil
	}
	*scratchPtr = scratch[:0]
	t.scratchPool.Put(scratchPtr)
	if err != nil {
		return nil, err
	}

	var heap bytes.Buffer
	heap.Grow(len(sink.buf) * 2)
	gsink := &growSink{buf: &heap}
	if err := t.renderInto(gsink, level, message, md); err != nil {
		return nil, err
	}
	out := make([]byte, heap.Len())
	copy(out, heap.Bytes())
	return out, nil
}

// sink is the minimal write surface renderInto needs; fixedSink and
// growSink both implement it.
type sink interface {
	writeString(s string)
}

type fixedSink struct {
	buf        []byte
	overflowed bool
}

func (s *fixedSink) writeString(str string) {
	if s.overflowed {
		return
	}
	if len(s.buf)+len(str) > cap(s.buf) {
		s.overflowed = true
		return
	}
	s.buf = append(s.buf, str...)
}

type growSink struct{ buf *bytes.Buffer }

func (s *growSink) writeString(str string) { s.buf.WriteString(str) }

func (t *Template) renderInto(s sink, level core.Level, message string, md *core.Metadata) error {
	for _, seg := range t.segments {
		if seg.isLiteral {
			s.writeString(seg.literal)
			continue
		}
		switch seg.kind {
		case phLevel:
			s.writeString(levelText(level, t.cfg.LevelFormat))
		case phMessage:
			s.writeString(message)
		case phTimestamp:
			s.writeString(t.renderTimestamp(md))
		case phThread:
			s.writeString(metaOr(md, func(m *core.Metadata) string { return m.Thread }))
		case phFile:
			s.writeString(metaOr(md, func(m *core.Metadata) string { return m.File }))
		case phLine:
			s.writeString(metaOr(md, func(m *core.Metadata) string {
				if m.Line == 0 {
					return ""
				}
				return strconv.Itoa(m.Line)
			}))
		case phFunction:
			s.writeString(metaOr(md, func(m *core.Metadata) string { return m.Function }))
		case phComponent:
			s.writeString("") // no Metadata.Component carrier beyond context; reserved for future use
		case phColor:
			if t.cfg.UseColor {
				s.writeString(level.ANSIColor())
			}
		case phReset:
			if t.cfg.UseColor {
				s.writeString(ansiReset)
			}
		case phRequestID:
			s.writeString(ctxField(md, func(c *core.RequestContext) string { return c.RequestID }))
		case phCorrelationID:
			s.writeString(ctxField(md, func(c *core.RequestContext) string { return c.CorrelationID }))
		case phTraceID:
			s.writeString(ctxField(md, func(c *core.RequestContext) string { return c.TraceID }))
		case phSpanID:
			s.writeString(ctxField(md, func(c *core.RequestContext) string { return c.SpanID }))
		case phUserID:
			s.writeString(ctxField(md, func(c *core.RequestContext) string { return c.UserID }))
		case phSessionID:
			s.writeString(ctxField(md, func(c *core.RequestContext) string { return c.SessionID }))
		case phOperation:
			s.writeString(ctxField(md, func(c *core.RequestContext) string { return c.Operation }))
		case phCustom:
			h := t.custom[seg.customName]
			if h == nil {
				continue
			}
			b, err := h(level, message, md)
			if err != nil {
				return err
			}
			s.writeString(string(b))
		}
	}
	return nil
}

func metaOr(md *core.Metadata, get func(*core.Metadata) string) string {
	if md == nil {
		return ""
	}
	return get(md)
}

// ctxField renders a context field, yielding "-" when the context or
// the specific field is absent (§4.B).
func ctxField(md *core.Metadata, get func(*core.RequestContext) string) string {
	if md == nil || md.Context == nil {
		return "-"
	}
	v := get(md.Context)
	if v == "" {
		return "-"
	}
	return v
}

func (t *Template) renderTimestamp(md *core.Metadata) string {
	switch t.cfg.TimestampFormat {
	case TimestampISO8601:
		return formatISO8601(timestampOf(md).Unix())
	case TimestampCustom:
		layout := t.cfg.CustomTimeLayout
		if layout == "" {
			layout = iso8601Layout
		}
		return timestampOf(md).UTC().Format(layout)
	default:
		return strconv.FormatInt(timestampOf(md).Unix(), 10)
	}
}

func timestampOf(md *core.Metadata) time.Time {
	if md == nil || md.Timestamp.IsZero() {
		return time.Now()
	}
	return md.Timestamp
}
