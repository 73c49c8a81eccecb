package kafka_middleware

import (
	"context"
	"time"

	"laluna/pkg/kafka"
	"laluna/pkg/logger"
)

// LoggingProducerMiddleware logs message publishing operations
func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		msgLog := log.WithContext(ctx).With(
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
		)

		err := next(ctx, msg)

		if err != nil {
			msgLog.Error("Failed to publish message", "duration_ms", time.Since(start).Milliseconds(), "error", err)
		} else {
			msgLog.Debug("Message published", "duration_ms", time.Since(start).Milliseconds())
		}

		return err
	}
}

// LoggingConsumerMiddleware logs message consumption operations
func LoggingConsumerMiddleware(log *logger.Logger) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		msgLog := log.WithContext(ctx).With(
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"correlation_id", msg.GetCorrelationID(),
		)

		err := next(ctx, msg)

		if err != nil {
			msgLog.Warn("Failed to process message", "duration_ms", time.Since(start).Milliseconds(), "error", err)
		} else {
			msgLog.Info("Message processed", "duration_ms", time.Since(start).Milliseconds())
		}

		return err
	}
}
