package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvMinTrustScore      = "MIN_TRUST_SCORE"
	EnvTrustScoreCacheTTL = "TRUST_SCORE_CACHE_TTL"
	EnvSlotLockTTL        = "SLOT_LOCK_TTL"

	EnvOCRServiceURL      = "OCR_SERVICE_URL"
	EnvOCRMinConfidence   = "OCR_MIN_CONFIDENCE"
	EnvIdentityServiceURL = "IDENTITY_SERVICE_URL"

	EnvGigEventsTopic    = "GIG_EVENTS_TOPIC"
	EnvGigEventsDLQTopic = "GIG_EVENTS_DLQ_TOPIC"
)
