package operation

import (
	"context"

	"github.com/teryaq/pharmacy-backend/internal/audit"
	"github.com/teryaq/pharmacy-backend/internal/observability"
	"github.com/teryaq/pharmacy-backend/pkg/logger"
)

// Decorators are the cross-cutting wrappers a service applies to its mutating operations.
// Either field may be nil.
type Decorators struct {
	Recorder *audit.Recorder
	Metrics  *observability.Metrics
}

// Run executes op as metrics(logging(audit(op))) under name.
func Run[T any](ctx context.Context, d Decorators, name string, action audit.Action[T], op func(ctx context.Context) (T, error)) (T, error) {
	decorated := observability.WithMetrics(d.Metrics, name,
		logger.WithLogging(name,
			audit.WithAudit(d.Recorder, action, op)))
	return decorated(ctx)
}
