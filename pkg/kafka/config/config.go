package kafka_config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"laluna/pkg/logger"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all Kafka configuration
type Config struct {
	// Broker configuration
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`

	// Producer configuration
	ProducerMaxAttempts  int           `envconfig:"KAFKA_PRODUCER_MAX_ATTEMPTS" default:"3"`
	ProducerBatchTimeout time.Duration `envconfig:"KAFKA_PRODUCER_BATCH_TIMEOUT" default:"10ms"`
	ProducerRequireAcks  int           `envconfig:"KAFKA_PRODUCER_REQUIRE_ACKS" default:"-1"` // -1 = all, 0 = none, 1 = leader only
	ProducerCompression  string        `envconfig:"KAFKA_PRODUCER_COMPRESSION" default:"snappy"`
	ProducerAsync        bool          `envconfig:"KAFKA_PRODUCER_ASYNC" default:"false"`

	// Consumer configuration
	ConsumerGroupID           string        `envconfig:"KAFKA_CONSUMER_GROUP_ID" default:"laluna-notifier"`
	ConsumerStartOffset       int64         `envconfig:"KAFKA_CONSUMER_START_OFFSET" default:"-1"` // -1 = newest, -2 = oldest
	ConsumerMinBytes          int           `envconfig:"KAFKA_CONSUMER_MIN_BYTES" default:"1"`
	ConsumerMaxBytes          int           `envconfig:"KAFKA_CONSUMER_MAX_BYTES" default:"10485760"`
	ConsumerMaxWait           time.Duration `envconfig:"KAFKA_CONSUMER_MAX_WAIT" default:"500ms"`
	ConsumerCommitInterval    time.Duration `envconfig:"KAFKA_CONSUMER_COMMIT_INTERVAL" default:"1s"`
	ConsumerHeartbeatInterval time.Duration `envconfig:"KAFKA_CONSUMER_HEARTBEAT_INTERVAL" default:"3s"`
	ConsumerSessionTimeout    time.Duration `envconfig:"KAFKA_CONSUMER_SESSION_TIMEOUT" default:"10s"`
	ConsumerRebalanceTimeout  time.Duration `envconfig:"KAFKA_CONSUMER_REBALANCE_TIMEOUT" default:"60s"`
	ConsumerMaxRetries        int           `envconfig:"KAFKA_CONSUMER_MAX_RETRIES" default:"3"`
	ConsumerRetryBackoff      time.Duration `envconfig:"KAFKA_CONSUMER_RETRY_BACKOFF" default:"200ms"`

	// Middleware configuration
	EnableMiddleware bool `envconfig:"KAFKA_ENABLE_MIDDLEWARE" default:"true"`
}

var validCompressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}

// Load creates a Kafka config from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process kafka environment: %w", err)
	}

	for i, broker := range cfg.Brokers {
		cfg.Brokers[i] = strings.TrimSpace(broker)
	}
	cfg.ProducerCompression = strings.ToLower(cfg.ProducerCompression)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the Kafka configuration
func (cfg *Config) Validate() error {
	var errors []string

	if len(cfg.Brokers) == 0 {
		errors = append(errors, "At least one Kafka broker is required")
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			errors = append(errors, fmt.Sprintf("Broker %d cannot be empty", i))
		}
	}

	if cfg.ProducerMaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("ProducerMaxAttempts must be positive, got: %d", cfg.ProducerMaxAttempts))
	}

	if cfg.ProducerBatchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ProducerBatchTimeout must be positive, got: %s", cfg.ProducerBatchTimeout))
	}

	if !slices.Contains(validCompressions, cfg.ProducerCompression) {
		errors = append(errors, fmt.Sprintf("ProducerCompression must be one of %v, got: %s", validCompressions, cfg.ProducerCompression))
	}

	if cfg.ProducerRequireAcks < -1 || cfg.ProducerRequireAcks > 1 {
		errors = append(errors, fmt.Sprintf("ProducerRequireAcks must be -1, 0, or 1, got: %d", cfg.ProducerRequireAcks))
	}

	if cfg.ConsumerGroupID == "" {
		errors = append(errors, "ConsumerGroupID cannot be empty")
	}

	if cfg.ConsumerStartOffset < -2 {
		errors = append(errors, fmt.Sprintf("ConsumerStartOffset must be -1 (newest), -2 (oldest), or >= 0, got: %d", cfg.ConsumerStartOffset))
	}

	if cfg.ConsumerMinBytes <= 0 {
		errors = append(errors, fmt.Sprintf("ConsumerMinBytes must be positive, got: %d", cfg.ConsumerMinBytes))
	}

	if cfg.ConsumerMaxBytes < cfg.ConsumerMinBytes {
		errors = append(errors, fmt.Sprintf("ConsumerMaxBytes must be at least ConsumerMinBytes, got: %d", cfg.ConsumerMaxBytes))
	}

	for name, d := range map[string]time.Duration{
		"ConsumerMaxWait":           cfg.ConsumerMaxWait,
		"ConsumerCommitInterval":    cfg.ConsumerCommitInterval,
		"ConsumerHeartbeatInterval": cfg.ConsumerHeartbeatInterval,
		"ConsumerSessionTimeout":    cfg.ConsumerSessionTimeout,
		"ConsumerRebalanceTimeout":  cfg.ConsumerRebalanceTimeout,
	} {
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.ConsumerMaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("ConsumerMaxRetries cannot be negative, got: %d", cfg.ConsumerMaxRetries))
	}

	if cfg.ConsumerRetryBackoff < 0 {
		errors = append(errors, fmt.Sprintf("ConsumerRetryBackoff cannot be negative, got: %s", cfg.ConsumerRetryBackoff))
	}

	if len(errors) > 0 {
		slices.Sort(errors)
		errMsg := "Kafka configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Kafka configuration loaded successfully",
		"brokers", cfg.Brokers,
		"producer_max_attempts", cfg.ProducerMaxAttempts,
		"producer_batch_timeout", cfg.ProducerBatchTimeout,
		"producer_require_acks", cfg.ProducerRequireAcks,
		"producer_compression", cfg.ProducerCompression,
		"producer_async", cfg.ProducerAsync,
		"consumer_group_id", cfg.ConsumerGroupID,
		"consumer_start_offset", cfg.ConsumerStartOffset,
		"consumer_max_wait", cfg.ConsumerMaxWait,
		"consumer_commit_interval", cfg.ConsumerCommitInterval,
		"consumer_max_retries", cfg.ConsumerMaxRetries,
		"consumer_retry_backoff", cfg.ConsumerRetryBackoff,
		"enable_middleware", cfg.EnableMiddleware,
	)
}
