package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/emberwatch/hotspot-etl-service/internal/adapter/firms"
	httpadapter "github.com/emberwatch/hotspot-etl-service/internal/adapter/http"
	kafkaadapter "github.com/emberwatch/hotspot-etl-service/internal/adapter/kafka"
	"github.com/emberwatch/hotspot-etl-service/internal/adapter/postgres"
	"github.com/emberwatch/hotspot-etl-service/internal/config"
	"github.com/emberwatch/hotspot-etl-service/internal/observability"
	"github.com/emberwatch/hotspot-etl-service/internal/pipeline"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := firms.NewClient(cfg.FIRMSAPIKey, cfg.FIRMSBaseURL, cfg.FetchTimeout, metrics, logger)

	var sinks []pipeline.Sink

	if cfg.SinkKind != config.SinkPostgres {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		sinks = append(sinks, writer)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic)
	}

	if cfg.SinkKind != config.SinkKafka {
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		store, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		sinks = append(sinks, store)
		logger.Info("postgres sink enabled")
	}

	runner := pipeline.New(fetcher, sinks, pipeline.ParamsFromConfig(cfg), logger, metrics)

	if cfg.RunOnStart {
		// Cron-style invocation: run once with defaults and exit.
		if _, err := runner.TriggerRun(ctx, pipeline.Overrides{}); err != nil {
			logger.Error("startup run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, runner, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
