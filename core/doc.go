// Package core defines the shared data model used across nexlog: the
// Level type for severity filtering and ordering, the Entry type
// representing a single log event, the Field/Value tagged-variant pair
// for structured key-value pairs, and the Metadata/RequestContext record
// carried alongside each call.
//
// Entry objects are pooled via sync.Pool to keep the hot path
// allocation-free. Callers get an Entry with GetEntry and must return it
// with PutEntry once every handler has consumed it. The pool
// pre-allocates the Fields slice with capacity 8, which covers most log
// calls without triggering a slice growth.
package core
