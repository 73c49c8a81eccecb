package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "laluna"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoTransactions = true

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultLockBackend       = LockBackendLocal
	DefaultLockTTL           = 10 * time.Second
	DefaultLockWaitTimeout   = 3 * time.Second
	DefaultLockRetryInterval = 50 * time.Millisecond

	DefaultPhoneRegion        = "US"
	DefaultCORSAllowedOrigins = "*"

	DefaultEventsEnabled  = false
	DefaultEventsTopic    = "booking-events"
	DefaultEventsDLQTopic = "dlq-booking-events"

	DefaultTracingEnabled = false
)

const (
	LockBackendLocal = "local"
	LockBackendMongo = "mongo"
)
