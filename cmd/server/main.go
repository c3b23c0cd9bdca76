// Command server starts the taskdesk HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk-api/internal/api"
	"github.com/taskdesk/taskdesk-api/internal/api/handler"
	"github.com/taskdesk/taskdesk-api/internal/api/middleware"
	"github.com/taskdesk/taskdesk-api/internal/auth"
	"github.com/taskdesk/taskdesk-api/internal/core/service"
	mongodb "github.com/taskdesk/taskdesk-api/internal/infrastructure/db/mongo"
	redisdb "github.com/taskdesk/taskdesk-api/internal/infrastructure/db/redis"
	"github.com/taskdesk/taskdesk-api/internal/pkg/config"
	"github.com/taskdesk/taskdesk-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "taskdesk-api",
	})
	log.Info().
		Str("version", version).
		Str("buildDate", buildDate).
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("starting")

	// MongoDB
	pool := mongodb.NewPool(mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.ConnectTimeout,
	}, log)

	userRepo := mongodb.NewUserRepository(pool)
	clientRepo := mongodb.NewClientRepository(pool)
	groupRepo := mongodb.NewGroupRepository(pool)
	taskRepo := mongodb.NewTaskRepository(pool)
	hostingRepo := mongodb.NewHostingRepository(pool)

	pool.OnConnect(userRepo.EnsureIndexes)
	pool.OnConnect(clientRepo.EnsureIndexes)
	pool.OnConnect(groupRepo.EnsureIndexes)
	pool.OnConnect(taskRepo.EnsureIndexes)
	pool.OnConnect(hostingRepo.EnsureIndexes)
	_ = pool.Start(ctx)

	checks := map[string]handler.Check{"mongodb": pool.Ping}

	// Redis (optional login throttling)
	var limiter service.LoginLimiter = service.NoopLimiter{}
	if redisCfg := (redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB}); redisCfg.Enabled() {
		rdb, err := redisdb.Connect(ctx, redisCfg)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, login throttling disabled")
		} else {
			defer func() { _ = rdb.Close() }()
			limiter = redisdb.NewLoginLimiter(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockout)
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
			log.Info().Str("addr", cfg.Redis.Addr).Msg("login throttling enabled")
		}
	}

	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token service")
	}

	// Services
	services := api.Services{
		Auth:    service.NewAuthService(userRepo, tokens, limiter, logger.Component("auth")),
		Users:   service.NewUserService(userRepo, logger.Component("users")),
		Clients: service.NewClientService(clientRepo, logger.Component("clients")),
		Groups:  service.NewGroupService(groupRepo, logger.Component("groups")),
		Tasks:   service.NewTaskService(taskRepo, logger.Component("tasks")),
		Hosting: service.NewHostingService(hostingRepo, logger.Component("hosting")),
	}

	_, throttled := limiter.(*redisdb.LoginLimiter)
	e := api.NewRouter(api.Options{
		Services:      services,
		Authenticator: middleware.NewAuthenticator(tokens, cfg.Auth.CookieName, logger.Component("auth")),
		Health: handler.NewHealthHandler(checks, handler.DebugInfo{
			Env:        cfg.Env,
			Database:   pool.DatabaseName(),
			CookieName: cfg.Auth.CookieName,
			Throttling: throttled,
			Connected:  pool.Connected,
		}, cfg.IsProduction()),
		Logger:        logger.Component("http"),
		Production:    cfg.IsProduction(),
		EnableMetrics: true,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ":"+cfg.Port).Msg("listening")
		errCh <- e.Start(":" + cfg.Port)
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := pool.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect")
	}
	log.Info().Msg("shutdown complete")
}
