package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "gigstage"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 20
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// A user below this trust score may not apply to or book roles.
	DefaultMinTrustScore      = 30
	DefaultTrustScoreCacheTTL = 5 * time.Minute
	DefaultSlotLockTTL        = 10 * time.Second

	DefaultOCRServiceURL    = ""
	DefaultOCRMinConfidence = 70
	DefaultIdentityURL      = "http://localhost:8081"

	DefaultGigEventsTopic    = "gig-events"
	DefaultGigEventsDLQTopic = "dlq-gigs"

	DefaultPaginationLimit = 100
)
