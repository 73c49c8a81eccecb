package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"laluna/internal/notifier"
	"laluna/pkg/app"
	"laluna/pkg/config"
	"laluna/pkg/kafka"
	kafka_config "laluna/pkg/kafka/config"
	kafka_middleware "laluna/pkg/kafka/middleware"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting La Luna notifier")

	if cfg.TracingEnabled {
		shutdownTracer := app.InitTracer(ServiceName)
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				cfg.Log.Error("Tracer shutdown failed", "error", err)
			}
		}()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	handler := notifier.NewHandler(notifier.NewLogSender(cfg.Log), cfg.Log)
	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.EventsTopic, cfg.EventsDLQTopic, handler.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware(metrics))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Kafka consumer stopped", "error", err)
	}

	cfg.Log.Info("Shutdown signal received, closing consumer")
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped", metrics.Snapshot().LogArgs()...)
}
