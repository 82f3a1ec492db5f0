// Package async implements the bounded drop-oldest queue and
// background-worker processor of §4.E: Queue for backpressure
// accounting, Processor for the worker loop and handler fan-out, and
// SinkHandler to adapt a handler.Sink onto it.
package async
