package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hihenen/mcp-orch-sub003/internal/config"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/gateway"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/preference"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/project"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/server"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/session"
	"github.com/hihenen/mcp-orch-sub003/internal/httpapi"
	"github.com/hihenen/mcp-orch-sub003/internal/metrics"
	"github.com/hihenen/mcp-orch-sub003/internal/sqlite"
	"github.com/hihenen/mcp-orch-sub003/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	projectRepo := sqlite.NewProjectRepository(db)
	serverRepo := sqlite.NewServerRepository(db)
	prefRepo := sqlite.NewPreferenceRepository(db)
	sessionRepo := sqlite.NewSessionRepository(db)
	apiKeyRepo := sqlite.NewAPIKeyRepository(db)

	projectSvc := project.NewService(projectRepo, logger)
	serverSvc := server.NewService(serverRepo, logger)
	prefSvc := preference.NewService(prefRepo, serverSvc, logger)
	sessionSvc := session.NewService(sessionRepo, cfg.Sessions.IdleTimeout.Std(), logger)

	upstreamClient := upstream.NewClient(cfg.Upstream.CallTimeout.Std(), logger)
	gatewaySvc := gateway.NewService(
		serverRepo,
		upstreamClient,
		prefSvc,
		projectSvc,
		sessionSvc,
		cfg.Upstream.CallTimeout.Std(),
		logger,
	)

	sweeper := startIdleSweep(sessionSvc, cfg.Sessions.SweepInterval.Std(), logger)
	defer sweeper.Stop()

	handler := httpapi.NewHandler(projectSvc, serverSvc, prefSvc, sessionSvc, gatewaySvc, logger)
	router := httpapi.NewRouter(handler, apiKeyRepo, cfg.CORS.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

// startIdleSweep closes sessions whose last activity predates the idle
// timeout. Runs on a fixed interval for the life of the process.
func startIdleSweep(sessions *session.Service, interval time.Duration, logger *slog.Logger) *cron.Cron {
	c := cron.New()
	spec := fmt.Sprintf("@every %s", interval)
	_, err := c.AddFunc(spec, func() {
		closed, err := sessions.SweepIdle(context.Background())
		if err != nil {
			logger.Error("idle sweep failed", "error", err)
			return
		}
		if closed > 0 {
			metrics.SessionsSwept.Add(float64(closed))
			logger.Info("idle sweep closed sessions", "count", closed)
		}
	})
	if err != nil {
		logger.Error("failed to schedule idle sweep", "error", err)
	}
	c.Start()
	return c
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
