package errs

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultHandler reports ErrorContext values as structured JSON to
// stderr through a *zap.Logger, rather than a bare fmt.Fprintf, so
// library diagnostics compose with whatever the host process already
// scrapes from its own zap output.
type DefaultHandler struct {
	log *zap.Logger
}

// NewDefaultHandler builds the package-default ErrorHandler: a zap
// logger with a JSON encoder writing to stderr at InfoLevel and above.
func NewDefaultHandler() *DefaultHandler {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(zapcore.AddSync(os.Stderr)), zap.InfoLevel)
	return &DefaultHandler{log: zap.New(core)}
}

func (h *DefaultHandler) HandleError(ctx ErrorContext) {
	h.log.Error(ctx.Message,
		zap.String("kind", ctx.Kind.String()),
		zap.String("file", ctx.File),
		zap.Int("line", ctx.Line),
		zap.Time("timestamp", ctx.Timestamp),
	)
}

// Sync flushes the underlying zap logger.
func (h *DefaultHandler) Sync() error {
	return h.log.Sync()
}
