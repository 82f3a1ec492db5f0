// Package handler implements the Sink contract (§4.C): ConsoleSink,
// FileSink and UserSink. A network sink is deliberately absent — the
// source marks it deprecated and not production-ready (no TLS), and
// §9's design notes say not to reimplement it.
//
// Each sink owns its own minimum level and formatter preference; the
// logger package chooses between a colored console Template and an
// uncolored file Template when calling WritePreformatted, and falls
// back to WriteStructured for callers that bypass that selection
// entirely.
package handler
