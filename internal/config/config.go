package config

import (
	"fmt"
	"strings"
	"time"

	"gamerchat-backend/pkg/constants"
	"gamerchat-backend/pkg/env"
)

// Config holds all runtime configuration for the server.
// Values come from environment variables; secrets additionally support
// the <NAME>_FILE convention for Docker secrets.
type Config struct {
	Env  string
	Port string

	// CockroachDB
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Cassandra
	CassandraHosts    []string
	CassandraKeyspace string
	CassandraUser     string
	CassandraPassword string

	// Redis
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// Auth
	JWTSecret   string
	TokenExpiry time.Duration

	// WebSocket lifecycle
	WSAuthGracePeriod  time.Duration
	WSHeartbeatTimeout time.Duration

	// Calls
	CallRingTimeout time.Duration

	// CORS
	AllowedOrigins []string
}

// Load reads configuration from the environment, applying defaults
// suitable for local development.
func Load() (*Config, error) {
	cfg := &Config{
		Env:  env.GetString("ENV", "development"),
		Port: env.GetString("PORT", "8080"),

		DBHost:     env.GetString("DB_HOST", "localhost"),
		DBPort:     env.GetInt("DB_PORT", 26257),
		DBUser:     env.GetString("DB_USER", "root"),
		DBPassword: env.GetStringFromFile("DB_PASSWORD", ""),
		DBName:     env.GetString("DB_NAME", "gamerchat"),
		DBSSLMode:  env.GetString("DB_SSLMODE", "disable"),

		CassandraHosts:    strings.Split(env.GetString("CASSANDRA_HOSTS", "localhost"), ","),
		CassandraKeyspace: env.GetString("CASSANDRA_KEYSPACE", "gamerchat"),
		CassandraUser:     env.GetString("CASSANDRA_USER", ""),
		CassandraPassword: env.GetStringFromFile("CASSANDRA_PASSWORD", ""),

		RedisHost:     env.GetString("REDIS_HOST", "localhost"),
		RedisPort:     env.GetInt("REDIS_PORT", 6379),
		RedisPassword: env.GetStringFromFile("REDIS_PASSWORD", ""),
		RedisDB:       env.GetInt("REDIS_DB", 0),

		JWTSecret:   env.GetStringFromFile("JWT_SECRET", ""),
		TokenExpiry: env.GetDuration("TOKEN_EXPIRY", constants.AccessTokenExpiry),

		WSAuthGracePeriod:  env.GetDuration("WS_AUTH_GRACE_PERIOD", constants.WebSocketAuthGracePeriod),
		WSHeartbeatTimeout: env.GetDuration("WS_HEARTBEAT_TIMEOUT", constants.WebSocketHeartbeatTimeout),

		CallRingTimeout: env.GetDuration("CALL_RING_TIMEOUT", constants.CallRingTimeout),

		AllowedOrigins: strings.Split(env.GetString("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"), ","),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if cfg.IsProduction() && len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}

	return cfg, nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
