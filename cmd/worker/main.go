package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storefront/backend/internal/application/integration"
	"github.com/storefront/backend/internal/infrastructure/bootstrap"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 30 * time.Second
	reconnectDelay  = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Role:       "worker",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	if !cfg.AMQP.Enabled {
		log.Fatal("AMQP is disabled, the worker has nothing to consume (set amqp.enabled)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName + "-worker",
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// The worker never touches the database; only the asset layout is ensured
	if _, err := bootstrap.NewSequencer(cfg, bootstrap.WithLogger(log)).RunWorker(ctx); err != nil {
		log.Fatal("Bootstrap failed", zap.Error(err))
	}

	store, err := cache.NewIdempotencyStoreFactoryFromConfig(cfg.Redis, log).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	pipeline, err := integration.NewPipeline(cfg.Automation, store, log)
	if err != nil {
		log.Fatal("Failed to build transition pipeline", zap.Error(err))
	}
	if err := pipeline.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	source := event.NewAMQPTransitionSource(event.AMQPSourceConfig{
		URL:         cfg.AMQP.URL,
		Exchange:    cfg.AMQP.Exchange,
		Queue:       cfg.AMQP.Queue,
		RoutingKeys: cfg.AMQP.RoutingKeys,
		Prefetch:    cfg.AMQP.Prefetch,
	}, pipeline.Bus, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consume(gctx, source, log)
	})

	waitErr := g.Wait()
	log.Info("Shutting down worker...")
	if err := pipeline.Stop(shutdownTimeout); err != nil {
		log.Error("Error stopping transition pipeline", zap.Error(err))
	}
	if waitErr != nil {
		log.Error("Worker stopped with error", zap.Error(waitErr))
		os.Exit(1)
	}
	log.Info("Worker exited gracefully")
}

// consume runs the AMQP source until ctx is done, reconnecting after broker
// failures
func consume(ctx context.Context, source *event.AMQPTransitionSource, log *zap.Logger) error {
	for {
		err := source.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		log.Warn("AMQP consumer stopped, reconnecting",
			zap.Error(err),
			zap.Duration("delay", reconnectDelay),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}
