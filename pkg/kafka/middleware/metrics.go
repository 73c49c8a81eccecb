package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"laluna/pkg/kafka"
)

// Metrics counts Kafka operations. The zero value is ready to use.
type Metrics struct {
	messagesPublished       atomic.Int64
	messagesPublishedFailed atomic.Int64
	publishDurationTotal    atomic.Int64

	messagesConsumed       atomic.Int64
	messagesConsumedFailed atomic.Int64
	consumeDurationTotal   atomic.Int64
}

type Snapshot struct {
	MessagesPublished       int64         `json:"messages_published"`
	MessagesPublishedFailed int64         `json:"messages_published_failed"`
	AvgPublishDuration      time.Duration `json:"avg_publish_duration"`
	MessagesConsumed        int64         `json:"messages_consumed"`
	MessagesConsumedFailed  int64         `json:"messages_consumed_failed"`
	AvgConsumeDuration      time.Duration `json:"avg_consume_duration"`
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		MessagesPublished:       m.messagesPublished.Load(),
		MessagesPublishedFailed: m.messagesPublishedFailed.Load(),
		MessagesConsumed:        m.messagesConsumed.Load(),
		MessagesConsumedFailed:  m.messagesConsumedFailed.Load(),
	}
	if total := s.MessagesPublished + s.MessagesPublishedFailed; total > 0 {
		s.AvgPublishDuration = time.Duration(m.publishDurationTotal.Load() / total)
	}
	if total := s.MessagesConsumed + s.MessagesConsumedFailed; total > 0 {
		s.AvgConsumeDuration = time.Duration(m.consumeDurationTotal.Load() / total)
	}
	return s
}

// LogArgs flattens the snapshot into slog key/value pairs.
func (s Snapshot) LogArgs() []any {
	return []any{
		"messages_published", s.MessagesPublished,
		"messages_published_failed", s.MessagesPublishedFailed,
		"avg_publish_duration", s.AvgPublishDuration,
		"messages_consumed", s.MessagesConsumed,
		"messages_consumed_failed", s.MessagesConsumedFailed,
		"avg_consume_duration", s.AvgConsumeDuration,
	}
}

func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		m.publishDurationTotal.Add(int64(time.Since(start)))
		if err != nil {
			m.messagesPublishedFailed.Add(1)
		} else {
			m.messagesPublished.Add(1)
		}

		return err
	}
}

func MetricsConsumerMiddleware(m *Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()

		err := next(ctx, msg)

		m.consumeDurationTotal.Add(int64(time.Since(start)))
		if err != nil {
			m.messagesConsumedFailed.Add(1)
		} else {
			m.messagesConsumed.Add(1)
		}

		return err
	}
}
