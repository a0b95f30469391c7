package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/quake-risk-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-risk-service/internal/adapter/portfolio"
	"github.com/couchcryptid/quake-risk-service/internal/adapter/terminal"
	"github.com/couchcryptid/quake-risk-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-risk-service/internal/config"
	"github.com/couchcryptid/quake-risk-service/internal/observability"
	"github.com/couchcryptid/quake-risk-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	feed := usgs.NewClient(cfg.FeedURL, cfg.FeedTimeout, metrics, logger)
	assets := portfolio.NewFile(cfg.PortfolioPath)

	// Publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}

	refresher := pipeline.New(feed, assets, publisher, pipeline.Options{
		TopN:            cfg.TopN,
		FeedWindow:      cfg.FeedWindow,
		RecentWindow:    cfg.RecentWindow,
		ExcludedSources: cfg.ExcludedLocationSources,
		Interval:        cfg.RefreshInterval,
		Workers:         cfg.AggregateWorkers,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, refresher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start dashboard and its input line; "q" stops the service like a signal.
	if cfg.DashboardEnabled {
		dashboard := terminal.NewDashboard(os.Stdout, terminal.Options{
			TopN:  cfg.TopN,
			Color: cfg.DashboardColor,
			Clear: cfg.DashboardClear,
		}, logger)
		reports := refresher.Subscribe()

		go func() {
			if err := dashboard.Run(ctx, reports); err != nil {
				logger.Error("dashboard error", "error", err)
			}
		}()
		go func() {
			err := terminal.WatchInput(ctx, os.Stdin, terminal.Commands{
				Quit:    stop,
				Refresh: refresher.Trigger,
			})
			if err != nil {
				logger.Error("dashboard input error", "error", err)
			}
		}()
	}

	// Start refresh loop.
	go func() {
		if err := refresher.Run(ctx); err != nil {
			logger.Error("refresh loop error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
