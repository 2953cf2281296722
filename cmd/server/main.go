package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gerosd/book-exchange/internal/app"
	"github.com/gerosd/book-exchange/internal/config"
	"github.com/gerosd/book-exchange/internal/database"
	"github.com/gerosd/book-exchange/internal/domain"
	"github.com/gerosd/book-exchange/internal/logging"
	"github.com/gerosd/book-exchange/internal/redis"
	"github.com/gerosd/book-exchange/internal/server"
	"github.com/gerosd/book-exchange/internal/version"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

const (
	loginRateLimitAttempts = 5
	loginRateLimitWindow   = time.Minute
)

func setupConfig() *config.Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *database.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.RunMigrations(ctx); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	build := version.Get()
	slog.Info("Application starting",
		"env", cfg.AppEnv,
		"port", cfg.Port,
		"version", build.Version,
		"commit", build.Commit,
	)

	db := setupDB(cfg)
	defer func() { _ = db.Close() }()

	// Redis is optional. Without it logins are not rate limited.
	var redisClient *goredis.Client
	var limiter domain.LoginRateLimiter
	if cfg.RedisURL != "" {
		redisClient = setupRedis(context.Background(), cfg)
		defer func() { _ = redisClient.Close() }()
		limiter = redis.NewLoginRateLimiter(redisClient, loginRateLimitAttempts, loginRateLimitWindow)
	}

	userRepo := database.NewUserRepo(db)
	applicationRepo := database.NewApplicationRepo(db)

	appSvc := app.NewService(userRepo, applicationRepo, limiter)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := appSvc.SeedAdmin(seedCtx, cfg.AdminPassword); err != nil {
		cancel()
		slog.Error("Failed to seed admin account", "error", err)
		os.Exit(1)
	}
	cancel()

	srv, err := server.NewServer(cfg, appSvc, db, redisClient, clock)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
