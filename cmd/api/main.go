package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/truesight/internal/bootstrap"
	"github.com/bryanwahyu/truesight/internal/config"
	"github.com/bryanwahyu/truesight/internal/infra/httpserver"
	"github.com/bryanwahyu/truesight/internal/logger"
	"github.com/bryanwahyu/truesight/internal/middleware"
	"github.com/bryanwahyu/truesight/internal/version"
)

func main() {
	// load config (CONFIG_PATH atau config.yaml)
	cfg, err := config.Load(config.Path())
	if err != nil {
		logger.New(logger.DefaultConfig()).Fatal().Err(err).Msg("config load error")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{})
	if err != nil {
		logger.New(logger.DefaultConfig()).Fatal().Err(err).Msg("bootstrap error")
	}
	defer app.Close()
	log := app.Log

	opts := httpserver.Options{
		Log:            log,
		Metrics:        app.Metrics,
		APIKeys:        cfg.Auth.APIKeys,
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		Stop:           ctx.Done(),
		Health: middleware.HealthInfo{
			Service:   "truesight",
			Version:   version.Version,
			StartedAt: time.Now(),
		},
		Checks: app.Checks,
	}
	opts.RateLimit.Enabled = cfg.RateLimit.Enabled
	opts.RateLimit.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
	opts.RateLimit.Burst = cfg.RateLimit.Burst
	if len(cfg.Auth.APIKeys) == 0 {
		log.Warn().Msg("auth.api_keys is empty, API is unauthenticated")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpserver.NewRouter(app.Service, opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// run server
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("version", version.Version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	}
	log.Info().Msg("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
