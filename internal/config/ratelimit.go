package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig controls the token-bucket limiter applied to the auth
// endpoints.  Auth requests are keyed by client IP because callers are not
// authenticated yet.  When Enabled is false or no Redis client is available
// the limiter becomes a pass-through.
type RateLimitConfig struct {
	Enabled     bool
	Capacity    int           // bucket size, i.e. allowed burst
	RefillEvery time.Duration // one token is returned per interval
	TTL         time.Duration // idle expiry of bucket state in Redis
	Prefix      string        // Redis key namespace
}

// LoadRateLimitConfig reads RATE_LIMIT_* environment variables, applying
// defaults suitable for login brute-force protection.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:     envBool("RATE_LIMIT_ENABLED", true),
		Capacity:    envInt("RATE_LIMIT_CAPACITY", 20),
		RefillEvery: envDur("RATE_LIMIT_REFILL_EVERY", time.Second),
		TTL:         envDur("RATE_LIMIT_TTL", 10*time.Minute),
		Prefix:      envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillEvery <= 0 {
		cfg.RefillEvery = time.Second
	}
	if min := 5 * cfg.RefillEvery; cfg.TTL < min {
		cfg.TTL = min
	}
	return cfg
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
