package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/access"
	"github.com/teryaq/pharmacy-backend/internal/audit"
	auditPostgres "github.com/teryaq/pharmacy-backend/internal/audit/postgres"
	"github.com/teryaq/pharmacy-backend/internal/auth"
	authPostgres "github.com/teryaq/pharmacy-backend/internal/auth/postgres"
	"github.com/teryaq/pharmacy-backend/internal/complaint"
	complaintPostgres "github.com/teryaq/pharmacy-backend/internal/complaint/postgres"
	"github.com/teryaq/pharmacy-backend/internal/core/events"
	"github.com/teryaq/pharmacy-backend/internal/core/operation"
	"github.com/teryaq/pharmacy-backend/internal/observability"
	"github.com/teryaq/pharmacy-backend/internal/role"
	rolePostgres "github.com/teryaq/pharmacy-backend/internal/role/postgres"
	"github.com/teryaq/pharmacy-backend/internal/transport"
	"github.com/teryaq/pharmacy-backend/internal/transport/rest"
	"github.com/teryaq/pharmacy-backend/internal/user"
	userPostgres "github.com/teryaq/pharmacy-backend/internal/user/postgres"
	"github.com/teryaq/pharmacy-backend/pkg/logger"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *gorm.DB
	Reader *sqlx.DB
	Redis  *redis.Client
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.shutdown(ctx)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

// shutdown flushes pending audit events before the connections they need go away.
func (d *Dependencies) shutdown(ctx context.Context) {
	if err := d.Bus.Close(ctx); err != nil {
		d.Logger.Error("Event bus drain error", "error", err)
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := closeDB(d.DB); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Env, config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	reader, err := initReader(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize read models: %w", err)
	}

	deps := &Dependencies{
		Config: config,
		DB:     db,
		Reader: reader,
		Bus:    events.NewEventBus(lg),
		Router: chi.NewRouter(),
		Logger: lg,
	}

	var (
		tokenStore auth.TokenStore = auth.NoopTokenStore{}
		redisCheck rest.Pinger
	)
	if config.Redis.Enabled {
		rdb, err := initRedis(config.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		deps.Redis = rdb
		store := auth.NewRedisTokenStore(rdb)
		tokenStore, redisCheck = store, store
	} else {
		lg.Warn("redis disabled; logout will not revoke tokens")
	}

	var metrics *observability.Metrics
	if config.Observability.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	setupRoutes(deps, tokenStore, redisCheck, metrics)
	return deps, nil
}

func setupRoutes(deps *Dependencies, tokenStore auth.TokenStore, redisCheck rest.Pinger, metrics *observability.Metrics) {
	lg := deps.Logger
	cfg := deps.Config

	resolver := audit.NewResolver()
	auditService := audit.NewService(auditPostgres.NewAuditRepository(deps.DB, deps.Reader), lg)
	auditService.Subscribe(deps.Bus)
	decorators := operation.Decorators{
		Recorder: audit.NewRecorder(resolver, deps.Bus, lg),
		Metrics:  metrics,
	}

	userRepo := userPostgres.NewUserRepository(deps.DB)
	evaluator := access.NewEvaluator(userRepo, lg)

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.JWTAccessSecret,
		cfg.Security.JWTRefreshSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(deps.DB), tokens, tokenStore, decorators, lg)
	userService := user.NewService(userRepo, evaluator, resolver, decorators, cfg.Security.BCryptCost, lg)
	roleService := role.NewService(rolePostgres.NewRoleRepository(deps.DB), decorators, lg)
	complaintService := complaint.NewService(complaintPostgres.NewComplaintRepository(deps.DB), evaluator, decorators, lg)

	baseHandler := transport.NewBaseHandler(lg)
	sqlDB, err := deps.DB.DB()
	if err != nil {
		lg.Error("database handle unavailable for health checks", "error", err)
	}

	rest.RegisterAllRoutes(deps.Router, rest.Dependencies{
		Config:           cfg,
		DB:               sqlDB,
		Redis:            redisCheck,
		Metrics:          metrics,
		Guard:            access.NewGuard(evaluator, metrics, lg),
		AuthHandler:      auth.NewHandler(baseHandler, authService),
		UserHandler:      user.NewHandler(baseHandler, userService),
		RoleHandler:      role.NewHandler(baseHandler, roleService),
		ComplaintHandler: complaint.NewHandler(baseHandler, complaintService),
		AuditHandler:     audit.NewHandler(baseHandler, auditService),
		Logger:           lg,
	})
}
