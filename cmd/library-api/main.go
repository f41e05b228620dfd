package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bookhaven/library-system/internal/api"
	"github.com/bookhaven/library-system/internal/infrastructure/config"
	mongostore "github.com/bookhaven/library-system/internal/infrastructure/db/mongo"
	redisstore "github.com/bookhaven/library-system/internal/infrastructure/db/redis"
	"github.com/bookhaven/library-system/internal/infrastructure/identity"
	"github.com/bookhaven/library-system/internal/infrastructure/payments"
	"github.com/bookhaven/library-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title           BookHaven Library API
// @version         1.0
// @description     REST API for the BookHaven library: catalog, orders and hosted checkout, with role-gated administration.
// @BasePath        /api
//
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Bearer token issued by the external identity provider.
func main() {
	cfg := config.Load(slog.Default())

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx := context.Background()

	// The user store is the source of truth for every gate decision: do not
	// start serving until it answers.
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}()

	// Fetches the provider's JWKS up front; a misconfigured or unreachable
	// identity provider stops the process here instead of rejecting every
	// request later.
	verifier, err := identity.NewVerifier(identity.Config{
		Issuer:      cfg.Identity.Issuer,
		Audience:    cfg.Identity.Audience,
		JWKSURL:     cfg.Identity.JWKSURL,
		HTTPTimeout: cfg.Identity.HTTPTimeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("identity verifier init failed")
	}
	defer verifier.Close()

	checkout := payments.NewClient(payments.Config{
		BaseURL:    cfg.Payments.BaseURL,
		SecretKey:  cfg.Payments.SecretKey,
		SuccessURL: cfg.Payments.SuccessURL,
		CancelURL:  cfg.Payments.CancelURL,
		Timeout:    cfg.Payments.HTTPTimeout,
	})

	e := api.NewRouter(db, rdb, verifier, checkout, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("server stopped")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

// ensureIndexes creates the collection indexes the repositories rely on,
// most importantly the unique email index that makes registration idempotent
// under concurrent calls.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := mongostore.NewUserRepository(db).EnsureIndexes(indexCtx); err != nil {
		return err
	}
	if err := mongostore.NewBookRepository(db).EnsureIndexes(indexCtx); err != nil {
		return err
	}
	if err := mongostore.NewOrderRepository(db).EnsureIndexes(indexCtx); err != nil {
		return err
	}
	return mongostore.NewPaymentRepository(db).EnsureIndexes(indexCtx)
}
