package web2pdf

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// newInstanceID returns a short correlation identifier for one converter
// instance. Every log line the converter and its collaborators emit
// carries it, so interleaved output from pooled converters stays
// attributable.
func newInstanceID() string {
	return uuid.NewString()[:8]
}

// instanceLogger derives the converter's logger from the injected base
// logger. A nil base yields a no-op logger: logging is an explicit
// dependency, never ambient process state.
func instanceLogger(base *zap.Logger, instance string) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return base.Named("web2pdf").With(zap.String("instance", instance))
}
