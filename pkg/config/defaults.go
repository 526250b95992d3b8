package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "hopper"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultAllowlistCacheTTL = 5 * time.Minute

	// Advisory locks auto-expire so a crashed writer cannot wedge a resource.
	DefaultBookingLockTTL = 10 * time.Second

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPersistenceMaxAttempts = 3
	DefaultPersistenceBackoff     = 100 * time.Millisecond

	DefaultPaginationLimit = 100
)
