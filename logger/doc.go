// Package logger is the public API: a synchronous Logger fanning out
// to an ordered list of sinks under one mutex, and an AsyncLogger that
// instead pushes onto a bounded drop-oldest queue drained by a single
// background worker.
//
// The package initializes a default synchronous Logger (console sink,
// InfoLevel) in init(). The package-level functions Info, Error, With,
// etc. delegate to this default instance:
//
//	logger.Info("ready", core.Int("port", 8080))
//
// For custom configuration, use Builder (synchronous) or AsyncBuilder:
//
//	log, err := logger.NewBuilder().
//	    WithSink(consoleSink).
//	    WithSink(fileSink).
//	    WithLevel(logger.DebugLevel).
//	    WithCaller(true).
//	    Build()
//
// Child loggers with extra default fields are created via With, which
// returns a new Logger sharing sinks and templates:
//
//	reqLog := log.With(core.String("request_id", id))
//
// Level checks happen before any rendering or allocation, so
// filtered-out messages cost only a single integer comparison.
package logger
