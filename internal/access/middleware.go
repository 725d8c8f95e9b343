package access

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/observability"
	"github.com/teryaq/pharmacy-backend/internal/transport"
)

type Authorizer interface {
	HasPermission(ctx context.Context, permission string) (bool, error)
	IsInRole(ctx context.Context, roleName string) (bool, error)
}

// Guard turns evaluator answers into HTTP responses: evaluation errors keep their own
// status (401 unauthenticated, 500 missing user or invalid principal), false is 403.
type Guard struct {
	*transport.BaseHandler
	authorizer Authorizer
	metrics    *observability.Metrics
}

func NewGuard(authorizer Authorizer, metrics *observability.Metrics, logger *slog.Logger) *Guard {
	return &Guard{
		BaseHandler: transport.NewBaseHandler(logger),
		authorizer:  authorizer,
		metrics:     metrics,
	}
}

func (g *Guard) RequirePermission(permission string) func(http.Handler) http.Handler {
	return g.require("permission", permission, func(ctx context.Context) (bool, error) {
		return g.authorizer.HasPermission(ctx, permission)
	})
}

// RequireAnyPermission passes when at least one of permissions is held.
func (g *Guard) RequireAnyPermission(permissions ...string) func(http.Handler) http.Handler {
	return g.require("permission", "any", func(ctx context.Context) (bool, error) {
		for _, p := range permissions {
			ok, err := g.authorizer.HasPermission(ctx, p)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	})
}

func (g *Guard) RequireRole(roleName string) func(http.Handler) http.Handler {
	return g.require("role", roleName, func(ctx context.Context) (bool, error) {
		return g.authorizer.IsInRole(ctx, roleName)
	})
}

func (g *Guard) require(kind, name string, check func(ctx context.Context) (bool, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := check(r.Context())
			if err != nil {
				g.metrics.ObserveDecision(kind, "error")
				g.WriteAppError(w, r, err)
				return
			}

			if !allowed {
				g.metrics.ObserveDecision(kind, "denied")
				principal, _ := internal.UserPrincipalFromContext(r.Context())
				g.Logger.WarnContext(r.Context(), "access denied",
					"user_id", principal.UserID,
					"required_"+kind, name)
				g.WriteAppError(w, r, internal.ErrAccessDenied)
				return
			}

			g.metrics.ObserveDecision(kind, "granted")
			next.ServeHTTP(w, r)
		})
	}
}
