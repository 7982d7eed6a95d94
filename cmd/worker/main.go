package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/joao-fontenele/minimarket-pos/internal/catalog"
	"github.com/joao-fontenele/minimarket-pos/internal/config"
	"github.com/joao-fontenele/minimarket-pos/internal/messaging"
	"github.com/joao-fontenele/minimarket-pos/internal/telemetry"
	"github.com/joao-fontenele/minimarket-pos/internal/worker"
)

const (
	serviceName    = "pos-stock-worker"
	serviceVersion = "0.1.0"
	consumerGroup  = "stock-alerts"
)

func main() {
	logger := telemetry.NewLogger(os.Stdout, serviceName)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequirePostgres(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	if len(cfg.KafkaBrokers) == 0 {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion, cfg.OTLPEndpoint, cfg.OTelEnabled)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(context.Background()) }()

	db, err := telemetry.OpenDB(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	handler, err := worker.NewStockAlertHandler(catalog.NewRepository(db), cfg.LowStockThreshold, otel.Meter("worker"), logger)
	if err != nil {
		logger.Error("failed to create stock alert handler", "error", err)
		os.Exit(1)
	}

	consumer := messaging.NewConsumer(cfg.KafkaBrokers, cfg.OrdersTopic, consumerGroup, logger)
	defer func() { _ = consumer.Close() }()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", metricsHandler)
		server := &http.Server{Addr: ":" + cfg.Port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()

	logger.Info("starting stock alert worker", "brokers", cfg.KafkaBrokers, "topic", cfg.OrdersTopic, "threshold", cfg.LowStockThreshold)

	if err := consumer.Consume(ctx, handler.Handle); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
