package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "aula"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultTimezone = "Local"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Advisory lock tuning for the per-(classroom, date) critical section.
	DefaultLockTTL            = 10 * time.Second
	DefaultLockRetryInterval  = 50 * time.Millisecond
	DefaultLockAcquireTimeout = 2 * time.Second

	DefaultSweepInterval = 1 * time.Minute

	DefaultPaginationLimit = 100
)
