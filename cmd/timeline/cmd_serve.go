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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/warp/timeline-engine/api"
	"github.com/warp/timeline-engine/cache"
	"github.com/warp/timeline-engine/config"
	"github.com/warp/timeline-engine/logging"
	"github.com/warp/timeline-engine/planning"
	"github.com/warp/timeline-engine/store"
	"github.com/warp/timeline-engine/store/memory"
	"github.com/warp/timeline-engine/store/sqlite"
)

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runServe(cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config file (default ./config.yaml)")
	return cmd
}

// openStore opens the configured store. The returned close func is never nil.
func openStore(cfg config.DatabaseConfig) (store.Store, func() error, error) {
	switch cfg.Driver {
	case "memory":
		return memory.New(), func() error { return nil }, nil
	default:
		st, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	}
}

func runServe(cfg *config.Config) error {
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	logger.Info().Str("environment", cfg.Environment).Msg("timeline starting")

	st, closeStore, err := openStore(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine := planning.NewEngineWithOptions(cache.Options{
		Capacity: cfg.Cache.Capacity,
		TTL:      cfg.Cache.TTL,
	}, cache.NewMetrics(reg))

	handler := api.NewHandler(st, engine, api.Options{
		OccurrenceCap:  cfg.Planning.OccurrenceCap,
		DayModePixels:  cfg.Planning.DayModePixels,
		WeekModePixels: cfg.Planning.WeekModePixels,
		Logger:         logger,
	})
	handler.Factory.HoursPerDay = cfg.Planning.DefaultHoursPerDay

	janitor := api.NewCacheJanitor(engine.Caches(), logger)
	if err := janitor.Start(cfg.Cache.PurgeSchedule); err != nil {
		return err
	}
	defer janitor.Stop()

	server := &http.Server{
		Addr: cfg.HTTP.Addr(),
		Handler: api.NewRouter(handler, api.RouterOptions{
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			Gatherer:       reg,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	return shutdown(server, logger)
}

func shutdown(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Msg("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info().Msg("timeline stopped")
	return nil
}
