package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/minimarket-pos/internal/catalog"
	"github.com/joao-fontenele/minimarket-pos/internal/config"
	"github.com/joao-fontenele/minimarket-pos/internal/httpapi"
	"github.com/joao-fontenele/minimarket-pos/internal/idempotency"
	"github.com/joao-fontenele/minimarket-pos/internal/imagesearch"
	"github.com/joao-fontenele/minimarket-pos/internal/messaging"
	"github.com/joao-fontenele/minimarket-pos/internal/orders"
	"github.com/joao-fontenele/minimarket-pos/internal/telemetry"
)

const (
	serviceName    = "pos-api"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()
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

	var publisher orders.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.OrdersTopic)
		defer func() { _ = producer.Close() }()
		publisher = producer
		logger.Info("publishing order events", "brokers", cfg.KafkaBrokers, "topic", cfg.OrdersTopic)
	}

	var guard orders.Guard
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, idempotency keys are checked lazily", "error", err)
		}
		guard = idempotency.NewRedisGuard(rdb, idempotency.DefaultTTL)
	}

	catalogRepo := catalog.NewRepository(db)
	engine, err := orders.NewService(orders.NewOrderRepository(db), publisher, logger)
	if err != nil {
		logger.Error("failed to create order engine", "error", err)
		os.Exit(1)
	}

	imageClient := imagesearch.NewClient(cfg.ImageSearchURL, cfg.PlaceholderImageURL, &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})

	router := httpapi.NewRouter(httpapi.Handlers{
		Catalog: catalog.NewHandler(catalogRepo, logger),
		Orders:  orders.NewHandler(engine, guard, logger),
		Images:  imagesearch.NewHandler(imageClient, logger),
		Metrics: metricsHandler,
	}, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting pos api", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
