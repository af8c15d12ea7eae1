package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 30 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Ping timeouts for startup and health checks
const (
	DBPingTimeout    = 5 * time.Second
	RedisPingTimeout = 3 * time.Second
)

// Interval of the background pairing session reaper. Expiry is enforced on
// every store access; the reaper only bounds memory between accesses.
const PairingReapInterval = 5 * time.Minute

// Rate limit windows
const (
	ReadRateLimitWindow = time.Minute
	APIRateLimitWindow  = time.Minute
)
