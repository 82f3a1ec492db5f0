package handler

import (
	"github.com/nexlog-go/nexlog/core"
)

// Kind tags a Sink's polymorphic variant (§4.C). Network is carried as a
// named constant only to document the deprecated gap; nexlog never
// constructs one (§9 Design notes: "do not reimplement").
type Kind uint8

const (
	KindConsole Kind = iota
	KindFile
	KindUser
	KindNetwork // deprecated, unimplemented — see doc.go
)

func (k Kind) String() string {
	switch k {
	case KindConsole:
		return "console"
	case KindFile:
		return "file"
	case KindUser:
		return "user"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Sink is the polymorphic destination contract every handler
// implements (§4.C): structured writes for callers that bypass
// formatter selection, preformatted writes for the logger's own
// fan-out, and the usual flush/close lifecycle.
type Sink interface {
	// WriteStructured renders and writes a record using the sink's own
	// formatter selection.
	WriteStructured(level core.Level, message string, fields []core.Field, md *core.Metadata) error
	// WritePreformatted writes bytes the caller has already rendered.
	WritePreformatted(b []byte) error
	// Flush durably commits any buffered bytes.
	Flush() error
	// Close flushes then releases the sink's resources.
	Close() error
	// Kind reports the sink's variant, used by the logger to select a
	// console-vs-file formatter (§4.D).
	Kind() Kind
	// MinLevel is the sink's independent minimum level (§4.C).
	MinLevel() core.Level
}
