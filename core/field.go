package core

import (
	"fmt"
	"strconv"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindArray
	KindObject
)

// Value is a tagged variant over the field-value shapes the formatter
// knows how to render: string, i64, f64, bool, array, object and null.
// Only the member matching Kind is meaningful.
type Value struct {
	Kind ValueKind
	Str  string
	Int  int64
	Flt  float64
	Bool bool
	Arr  []Value
	Obj  []KV // preserves insertion order, unlike a map
}

// KV is a single entry of an object-kind Value.
type KV struct {
	Key string
	Val Value
}

func StringValue(s string) Value       { return Value{Kind: KindString, Str: s} }
func IntValue(i int64) Value           { return Value{Kind: KindInt, Int: i} }
func FloatValue(f float64) Value       { return Value{Kind: KindFloat, Flt: f} }
func BoolValue(b bool) Value           { return Value{Kind: KindBool, Bool: b} }
func ArrayValue(v ...Value) Value      { return Value{Kind: KindArray, Arr: v} }
func NullValue() Value                 { return Value{Kind: KindNull} }
func ObjectValue(kv ...KV) Value       { return Value{Kind: KindObject, Obj: kv} }
func ObjectEntry(k string, v Value) KV { return KV{Key: k, Val: v} }

// Render returns a human-readable representation of the value, used by
// the plain-text and logfmt formatters.
func (v Value) Render() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Flt, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNull:
		return "null"
	case KindArray:
		out := "["
		for i, e := range v.Arr {
			if i > 0 {
				out += ","
			}
			out += e.Render()
		}
		return out + "]"
	case KindObject:
		out := "{"
		for i, kv := range v.Obj {
			if i > 0 {
				out += ","
			}
			out += kv.Key + ":" + kv.Val.Render()
		}
		return out + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Field is a named structured value with optional rendering attributes.
// Attributes render as "name_key" siblings in structured output (§4.B).
type Field struct {
	Name       string
	Value      Value
	Attributes map[string]string
}

func String(name, val string) Field          { return Field{Name: name, Value: StringValue(val)} }
func Int(name string, val int) Field         { return Field{Name: name, Value: IntValue(int64(val))} }
func Int64(name string, val int64) Field     { return Field{Name: name, Value: IntValue(val)} }
func Float64(name string, val float64) Field { return Field{Name: name, Value: FloatValue(val)} }
func Bool(name string, val bool) Field       { return Field{Name: name, Value: BoolValue(val)} }
func Null(name string) Field                 { return Field{Name: name, Value: NullValue()} }
func Array(name string, vals ...Value) Field { return Field{Name: name, Value: ArrayValue(vals...)} }
func Object(name string, kv ...KV) Field     { return Field{Name: name, Value: ObjectValue(kv...)} }

// Err wraps an error as a string-valued field named "error"; a nil error
// renders as an empty string rather than being omitted, matching the
// teacher's Err helper (logger/field.go in the source tree).
func Err(err error) Field {
	if err == nil {
		return Field{Name: "error", Value: StringValue("")}
	}
	return Field{Name: "error", Value: StringValue(err.Error())}
}

// WithAttr attaches a rendering attribute and returns the field for
// chaining, e.g. core.String("user", id).WithAttr("source", "jwt").
func (f Field) WithAttr(key, val string) Field {
	if f.Attributes == nil {
		f.Attributes = make(map[string]string, 1)
	}
	f.Attributes[key] = val
	return f
}
