// Package config assembles the relay's runtime configuration from
// environment variables.
package config

import (
	"localsphere-backend/pkg/env"
)

// Config holds every runtime knob of the relay process
type Config struct {
	Env  string
	Port string

	// RedisAddr enables the Redis presence mirror when non-empty. The
	// relay itself is a single broadcast domain and runs fine without it.
	RedisAddr     string
	RedisPassword string

	// EnforceSingleActiveCall rejects call initiation while either peer
	// already has a pending or accepted call. Historically off.
	EnforceSingleActiveCall bool

	// SeedDemoData loads the demo roster and messages at startup
	SeedDemoData bool

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, falling back to
// development defaults.
func Load() *Config {
	return &Config{
		Env:                     env.GetString("ENV", "development"),
		Port:                    env.GetString("PORT", "8080"),
		RedisAddr:               env.GetString("REDIS_ADDR", ""),
		RedisPassword:           env.GetStringFromFile("REDIS_PASSWORD", ""),
		EnforceSingleActiveCall: env.GetBool("ENFORCE_SINGLE_ACTIVE_CALL", false),
		SeedDemoData:            env.GetBool("SEED_DEMO_DATA", true),
		LogLevel:                env.GetString("LOG_LEVEL", "info"),
		LogFormat:               env.GetString("LOG_FORMAT", "json"),
	}
}
