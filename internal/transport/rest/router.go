package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/access"
	"github.com/teryaq/pharmacy-backend/internal/audit"
	"github.com/teryaq/pharmacy-backend/internal/auth"
	"github.com/teryaq/pharmacy-backend/internal/complaint"
	"github.com/teryaq/pharmacy-backend/internal/observability"
	"github.com/teryaq/pharmacy-backend/internal/role"
	"github.com/teryaq/pharmacy-backend/internal/transport/middleware"
	"github.com/teryaq/pharmacy-backend/internal/transport/swagger"
	"github.com/teryaq/pharmacy-backend/internal/user"
)

// Dependencies are the handlers and infrastructure the router mounts. Nil handlers are skipped.
type Dependencies struct {
	Config           *internal.Config
	DB               *sql.DB
	Redis            Pinger
	Metrics          *observability.Metrics
	Guard            *access.Guard
	AuthHandler      *auth.Handler
	UserHandler      *user.Handler
	RoleHandler      *role.Handler
	ComplaintHandler *complaint.Handler
	AuditHandler     *audit.Handler
	Logger           *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps Dependencies) {
	healthHandler := NewHealthHandler(deps.DB, deps.Redis)

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.CORS(deps.Config.Server.AllowedOrigins))
	router.Use(middleware.SecureHeaders(deps.Config.Env == "production"))
	router.Use(middleware.RecoveryMiddleware)
	router.Use(chiMiddleware.Compress(5, "application/json"))
	router.Use(middleware.LoggingMiddleware)
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware)
		router.Handle(deps.Config.Observability.Metrics.Path, deps.Metrics.Handler())
	}

	// Serve the OpenAPI document at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	guard := deps.Guard

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if deps.AuthHandler == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Group(func(pub chi.Router) {
				pub.Use(middleware.Anonymous)
				pub.Use(middleware.RateLimitByIP(deps.Config.Security.LoginRatePerMinute))
				pub.Post("/login", deps.AuthHandler.Login)
				pub.Post("/refresh", deps.AuthHandler.RefreshToken)
			})
			sr.Post("/logout", deps.AuthHandler.Logout)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(deps.AuthHandler.AuthMiddleware)

			if deps.UserHandler != nil {
				pr.Get("/users/me", deps.UserHandler.GetCurrentUser)
				pr.Route("/users", func(ur chi.Router) {
					ur.With(guard.RequirePermission(access.PermUserCreate)).Post("/", deps.UserHandler.CreateUser)
					ur.With(guard.RequirePermission(access.PermUserRead)).Get("/{id}", deps.UserHandler.GetUser)
					ur.Group(func(mr chi.Router) {
						mr.Use(guard.RequirePermission(access.PermUserUpdate))
						mr.Put("/{id}/role", deps.UserHandler.AssignRole)
						mr.Post("/{id}/permissions", deps.UserHandler.GrantPermission)
						mr.Delete("/{id}/permissions/{permissionID}", deps.UserHandler.RevokePermission)
					})
					ur.With(guard.RequirePermission(access.PermUserDelete)).Delete("/{id}", deps.UserHandler.DeactivateUser)
				})
			}

			if deps.RoleHandler != nil {
				pr.Route("/roles", func(rr chi.Router) {
					rr.With(guard.RequirePermission(access.PermRoleRead)).Get("/", deps.RoleHandler.ListRoles)
					rr.With(guard.RequirePermission(access.PermRoleRead)).Get("/{id}", deps.RoleHandler.GetRole)
					rr.With(guard.RequirePermission(access.PermRoleRead)).Get("/{id}/permissions", deps.RoleHandler.GetRolePermissions)
					rr.With(guard.RequirePermission(access.PermRoleCreate)).Post("/", deps.RoleHandler.CreateRole)
					rr.Group(func(mr chi.Router) {
						mr.Use(guard.RequirePermission(access.PermRoleUpdate))
						mr.Put("/{id}", deps.RoleHandler.UpdateRole)
						mr.Put("/{id}/permissions", deps.RoleHandler.ReplacePermissions)
					})
					rr.With(guard.RequirePermission(access.PermRoleDelete)).Delete("/{id}", deps.RoleHandler.DeleteRole)
				})
				pr.Route("/permissions", func(pmr chi.Router) {
					pmr.With(guard.RequirePermission(access.PermPermissionRead)).Get("/", deps.RoleHandler.ListPermissions)
					pmr.With(guard.RequirePermission(access.PermPermissionCreate)).Post("/", deps.RoleHandler.CreatePermission)
				})
			}

			// Pharmacy scoping and ownership are enforced by the complaint service.
			if deps.ComplaintHandler != nil {
				pr.Route("/complaints", func(cr chi.Router) {
					cr.Post("/", deps.ComplaintHandler.CreateComplaint)
					cr.Get("/", deps.ComplaintHandler.ListComplaints)
					cr.Get("/statistics", deps.ComplaintHandler.GetStatistics)
					cr.Get("/needing-response", deps.ComplaintHandler.GetNeedingResponse)
					cr.Get("/status/{status}", deps.ComplaintHandler.ListComplaints)
					cr.Get("/{id}", deps.ComplaintHandler.GetComplaint)
					cr.Put("/{id}", deps.ComplaintHandler.UpdateComplaint)
					cr.Delete("/{id}", deps.ComplaintHandler.DeleteComplaint)
				})
			}

			if deps.AuditHandler != nil {
				pr.With(guard.RequirePermission(access.PermAuditView)).Get("/audit", deps.AuditHandler.GetTimeline)
			}
		})
	})
}
