package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"

	"fintrack/internal/auth"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	policy, err := cfg.Policy()
	if err != nil {
		logger.Error("Invalid ledger policy", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	hasher, err := auth.NewHasher(cfg.PasswordHasher)
	if err != nil {
		logger.Error("Invalid password hasher", applog.FieldError, err)
		os.Exit(1)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = ephemeralSecret()
		logger.Warn("JWT_SECRET not set, using an ephemeral secret; tokens will not survive a restart")
	}
	tokens, err := auth.NewTokenIssuer(secret, cfg.JWTTTL)
	if err != nil {
		logger.Error("Failed to initialize token issuer", applog.FieldError, err)
		os.Exit(1)
	}

	var publisher services.EventPublisher
	if client := backend.NewPublisher(ctx, logger, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue); client != nil {
		publisher = client
		defer client.Close()
	}

	registry := services.NewCategoryRegistry(res.Store, policy, res.Seeds, logger)
	deps := apphttp.Deps{
		Accounts:           services.NewAccountService(res.Store, registry, hasher, logger),
		Categories:         registry,
		Transactions:       services.NewTransactionService(res.Store, registry, policy, publisher, logger),
		Tokens:             tokens,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	}
	if p, ok := res.Store.(store.Pinger); ok {
		deps.Pinger = p
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, deps)
	if err != nil {
		logger.Error("Failed to build HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"variant", policy.Variant,
			"events", publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", applog.FieldError, err)
	}
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}

func ephemeralSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
