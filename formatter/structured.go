package formatter

import (
	"bytes"
	"strconv"

	"github.com/nexlog-go/nexlog/core"
)

// FormatStructured renders a structured record per §4.B: JSON, logfmt,
// or a custom-delimited key=value dialect, dispatching on
// cfg.StructuredFormat. Field order is timestamp, level, msg (each
// optional per cfg), then fields in input order with each field's
// attributes immediately following it as "name_attrkey" entries.
func FormatStructured(cfg Config, level core.Level, message string, fields []core.Field, md *core.Metadata) ([]byte, error) {
	cfg = cfg.withDefaults()
	var buf bytes.Buffer
	buf.Grow(cfg.StackBufferSize)

	switch cfg.StructuredFormat {
	case StructuredLogfmt:
		writeLogfmt(&buf, cfg, level, message, fields, md, " ", "=", logfmtQuote)
	case StructuredCustom:
		writeLogfmt(&buf, cfg, level, message, fields, md, cfg.CustomFieldSeparator, cfg.CustomKeyValueSeparator, logfmtQuote)
	default:
		writeJSON(&buf, cfg, level, message, fields, md)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func writeJSON(buf *bytes.Buffer, cfg Config, level core.Level, message string, fields []core.Field, md *core.Metadata) {
	buf.WriteByte('{')
	wroteAny := false

	writeComma := func() {
		if wroteAny {
			buf.WriteByte(',')
		}
		wroteAny = true
	}

	if cfg.IncludeTimestamp {
		writeComma()
		buf.WriteString(`"timestamp":"`)
		buf.WriteString(renderTimestampPlain(cfg, md))
		buf.WriteByte('"')
	}
	if cfg.IncludeLevel {
		writeComma()
		buf.WriteString(`"level":"`)
		buf.WriteString(level.String())
		buf.WriteByte('"')
	}
	writeComma()
	buf.WriteString(`"msg":"`)
	// Intentionally unescaped per §4.B / §9 open question (a): interior
	// quotes and backslashes are not escaped here, matching the
	// behavior the spec calls out as a deliberate compatibility choice.
	buf.WriteString(message)
	buf.WriteByte('"')

	for _, f := range fields {
		writeComma()
		buf.WriteByte('"')
		buf.WriteString(f.Name)
		buf.WriteString(`":`)
		writeJSONValue(buf, f.Value)
		for k, v := range f.Attributes {
			buf.WriteByte(',')
			buf.WriteByte('"')
			buf.WriteString(f.Name)
			buf.WriteByte('_')
			buf.WriteString(k)
			buf.WriteString(`":"`)
			buf.WriteString(v)
			buf.WriteByte('"')
		}
	}
	buf.WriteByte('}')
}

func writeJSONValue(buf *bytes.Buffer, v core.Value) {
	switch v.Kind {
	case core.KindString:
		buf.WriteByte('"')
		buf.WriteString(v.Str)
		buf.WriteByte('"')
	case core.KindInt:
		buf.WriteString(strconv.FormatInt(v.Int, 10))
	case core.KindFloat:
		buf.WriteString(strconv.FormatFloat(v.Flt, 'f', -1, 64))
	case core.KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool))
	case core.KindNull:
		buf.WriteString("null")
	case core.KindArray:
		buf.WriteByte('[')
		for i, e := range v.Arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONValue(buf, e)
		}
		buf.WriteByte(']')
	case core.KindObject:
		buf.WriteByte('{')
		for i, kv := range v.Obj {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(kv.Key)
			buf.WriteString(`":`)
			writeJSONValue(buf, kv.Val)
		}
		buf.WriteByte('}')
	default:
		buf.WriteString("null")
	}
}

func writeLogfmt(buf *bytes.Buffer, cfg Config, level core.Level, message string, fields []core.Field, md *core.Metadata, fieldSep, kvSep string, quote func(string) string) {
	wroteAny := false
	writeSep := func() {
		if wroteAny {
			buf.WriteString(fieldSep)
		}
		wroteAny = true
	}

	if cfg.IncludeTimestamp {
		writeSep()
		buf.WriteString("timestamp")
		buf.WriteString(kvSep)
		buf.WriteString(renderTimestampPlain(cfg, md))
	}
	if cfg.IncludeLevel {
		writeSep()
		buf.WriteString("level")
		buf.WriteString(kvSep)
		buf.WriteString(level.String())
	}
	writeSep()
	buf.WriteString("msg")
	buf.WriteString(kvSep)
	buf.WriteString(quote(message))

	for _, f := range fields {
		writeSep()
		buf.WriteString(f.Name)
		buf.WriteString(kvSep)
		buf.WriteString(quote(f.Value.Render()))
		for k, v := range f.Attributes {
			buf.WriteString(fieldSep)
			buf.WriteString(f.Name)
			buf.WriteByte('_')
			buf.WriteString(k)
			buf.WriteString(kvSep)
			buf.WriteString(quote(v))
		}
	}
}

// logfmtQuote quotes a value if it contains a space, quote, equals sign
// or newline, escaping interior quotes and backslashes (§4.B).
func logfmtQuote(s string) string {
	needsQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '"', '=', '\n':
			needsQuote = true
		}
	}
	if !needsQuote {
		return s
	}
	var b bytes.Buffer
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

func renderTimestampPlain(cfg Config, md *core.Metadata) string {
	ts := timestampOf(md)
	switch cfg.TimestampFormat {
	case TimestampISO8601:
		return formatISO8601(ts.Unix())
	case TimestampCustom:
		layout := cfg.CustomTimeLayout
		if layout == "" {
			layout = iso8601Layout
		}
		return ts.UTC().Format(layout)
	default:
		return strconv.FormatInt(ts.Unix(), 10)
	}
}
