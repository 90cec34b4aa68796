package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hostsnap/internal/config"
	"hostsnap/internal/logger"
	"hostsnap/internal/middleware"
	"hostsnap/internal/routes"
	"hostsnap/internal/services"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("hostsnap stopped")
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		return err
	}

	providers := services.DefaultSensorProviders(cfg.HwmonPath)
	if cfg.Nvidia {
		gpus, err := services.NewNvidiaSensors()
		if err != nil {
			logger.Warn().Err(err).Msg("NVIDIA sensors disabled")
		} else {
			providers = append(providers, gpus)
		}
	}
	defer closeProviders(providers)

	snapshots := services.NewSnapshotService(services.NewHostSource(providers...))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.AccessLogMiddleware(),
		middleware.SecurityHeadersMiddleware(),
		middleware.RateLimitMiddleware(middleware.NewRateLimiter(middleware.DefaultRequestsPerSecond, middleware.DefaultBurst)),
	)
	routes.RegisterInfoRoutes(r, snapshots)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("hostsnap listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func closeProviders(providers []services.SensorProvider) {
	for _, p := range providers {
		closer, ok := p.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			logger.Warn().Err(err).Str("provider", p.Name()).Msg("failed to close sensor provider")
		}
	}
}
