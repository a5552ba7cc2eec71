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

	EnvClinicTimezone         = "CLINIC_TIMEZONE"
	EnvSlotDurationMin        = "SLOT_DURATION_MIN"
	EnvReconcileHorizonMonths = "RECONCILE_HORIZON_MONTHS"
	EnvReconcileDeleteBatch   = "RECONCILE_DELETE_BATCH"
	EnvReconcileInsertBatch   = "RECONCILE_INSERT_BATCH"

	EnvSlotLockTTL = "SLOT_LOCK_TTL"
)
