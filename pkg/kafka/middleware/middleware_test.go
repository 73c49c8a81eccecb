package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"laluna/pkg/kafka"
	"laluna/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddleware(t *testing.T) {
	m := NewMetrics()
	publish := MetricsProducerMiddleware(m)
	consume := MetricsConsumerMiddleware(m)
	msg := kafka.Message{Key: "room", Headers: map[string]string{}}

	_ = publish(context.Background(), msg, func(context.Context, kafka.Message) error { return nil })
	_ = publish(context.Background(), msg, func(context.Context, kafka.Message) error { return errors.New("down") })
	_ = consume(context.Background(), msg, func(context.Context, kafka.Message) error { return nil })

	s := m.Snapshot()
	assert.Equal(t, int64(1), s.MessagesPublished)
	assert.Equal(t, int64(1), s.MessagesPublishedFailed)
	assert.Equal(t, int64(1), s.MessagesConsumed)
	assert.Zero(t, s.MessagesConsumedFailed)
	assert.Len(t, s.LogArgs(), 12)
}

func TestLoggingMiddleware_PassesThroughError(t *testing.T) {
	want := errors.New("boom")
	msg := kafka.Message{Key: "room", Headers: map[string]string{}}

	err := LoggingProducerMiddleware(logger.Discard())(context.Background(), msg,
		func(context.Context, kafka.Message) error { return want })
	assert.Same(t, want, err)

	err = LoggingConsumerMiddleware(logger.Discard())(context.Background(), msg,
		func(context.Context, kafka.Message) error { return want })
	assert.Same(t, want, err)
}
