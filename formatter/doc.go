// Package formatter compiles a user-supplied placeholder template once
// (Compile) and renders log records into caller-owned byte slices
// (Template.Render), plus a separate structured-record path
// (FormatStructured) for JSON, logfmt and custom delimited output.
//
// Template construction parses the template into a flat slice of
// segments — literal spans and placeholder descriptors — so rendering
// never re-parses. Render first tries a pooled, fixed-capacity scratch
// buffer; on overflow it retries into a growable bytes.Buffer. Either
// way the returned slice is a fresh copy the caller owns outright.
package formatter
