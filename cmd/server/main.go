package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gatehouse/identity-service/internal/api"
	"github.com/gatehouse/identity-service/internal/api/middleware"
	"github.com/gatehouse/identity-service/internal/core/ports"
	"github.com/gatehouse/identity-service/internal/core/service"
	"github.com/gatehouse/identity-service/internal/infrastructure/config"
	"github.com/gatehouse/identity-service/internal/infrastructure/crypto"
	memstore "github.com/gatehouse/identity-service/internal/infrastructure/db/memory"
	mongostore "github.com/gatehouse/identity-service/internal/infrastructure/db/mongo"
	redisstore "github.com/gatehouse/identity-service/internal/infrastructure/db/redis"
	"github.com/gatehouse/identity-service/internal/infrastructure/queue"
	"github.com/gatehouse/identity-service/internal/infrastructure/token"
	"github.com/gatehouse/identity-service/pkg/logger"
)

// @title        Identity Service API
// @version      1.0
// @description  Session-based user authentication service.
// @BasePath     /
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:        cfg.LogLevel,
		Pretty:       cfg.Env == "development",
		RedactFields: []string{"email", "password", "session_token", "reset_token"},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := api.Deps{
		SessionCookie: cfg.Auth.SessionCookie,
		Log:           log,
	}

	var repo ports.UserRepository
	var events ports.AuthEventSink

	switch cfg.Store {
	case "memory":
		// Dev mode: no external dependencies, no audit pipeline.
		repo = memstore.NewUserRepository()
		log.Warn().Msg("using in-memory user store; data is lost on restart")
	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connection failed")
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()

		userRepo := mongostore.NewUserRepository(db)
		if err := userRepo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("mongo index creation failed")
		}
		repo = userRepo
		deps.Mongo = db

		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer func() {
			_ = rdb.Close()
		}()
		deps.Redis = rdb

		audit := service.NewAuditService(
			mongostore.NewAuditRepository(db),
			redisstore.NewDedupChecker(rdb),
			log,
		)
		dispatcher := queue.NewDispatcher(cfg.Audit.Workers, audit, log)
		dispatcher.Start(ctx)
		events = dispatcher
	}

	hasher := crypto.NewBcryptHasher(cfg.BcryptCost)
	tokens := token.NewUUIDSource()
	authService := service.NewAuthService(repo, hasher, tokens, events)
	deps.AuthService = authService

	guard, err := middleware.NewGuard(cfg.Auth.Mode, authService, repo, cfg.Auth.SessionCookie, cfg.Auth.ExcludedPaths)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid auth configuration")
	}
	deps.Guard = guard

	e := api.NewRouter(deps)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("http server stopped")
		}
	}()
	log.Info().
		Str("port", cfg.Port).
		Str("store", cfg.Store).
		Str("auth_mode", cfg.Auth.Mode).
		Msg("identity service started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
