package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ClickHouseConfig locates the ADP market-data warehouse
type ClickHouseConfig struct {
	Addr     string
	Database string
	User     string
	Password string
}

// LeagueFeedConfig locates the external league whose picks are reconciled into the active session
type LeagueFeedConfig struct {
	URL          string
	LeagueID     string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Interval     time.Duration
	// RequestsPerSecond caps calls to the feed
	RequestsPerSecond float64
}

// AuthentikConfig holds the OAuth2 client used for web login
type AuthentikConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Config holds all process configuration read from the environment
type Config struct {
	Port        string
	GRPCPort    string
	Environment string

	DBDriver    string
	SQLiteFile  string
	DatabaseURL string
	AutoMigrate bool
	PlayersFile string

	NATSURL     string
	NATSSubject string

	RedisURL     string
	RiskCacheTTL time.Duration

	ClickHouse      ClickHouseConfig
	ADPSyncInterval time.Duration

	LeagueFeed LeagueFeedConfig
	Authentik  AuthentikConfig

	CORSOrigins []string
	TuningFile  string
	// PredictorSeed fixes the simulation RNG; 0 seeds from the clock
	PredictorSeed int64
}

// Load reads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "3000"),
		GRPCPort:    getEnv("GRPC_PORT", "50051"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DBDriver:    getEnv("DB_DRIVER", "memory"),
		SQLiteFile:  getEnv("SQLITE_FILE", "dev.sqlite"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),
		PlayersFile: getEnv("PLAYERS_FILE", ""),

		NATSURL:     getEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: getEnv("NATS_SUBJECT", "draft.events"),

		RedisURL:     getEnv("REDIS_URL", ""),
		RiskCacheTTL: getEnvDuration("RISK_CACHE_TTL", 300*time.Second),

		ClickHouse: ClickHouseConfig{
			Addr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
			Database: getEnv("CLICKHOUSE_DB", "default"),
			User:     getEnv("CLICKHOUSE_USER", "default"),
			Password: getEnv("CLICKHOUSE_PASSWORD", ""),
		},
		ADPSyncInterval: getEnvDuration("ADP_SYNC_INTERVAL", 15*time.Minute),

		LeagueFeed: LeagueFeedConfig{
			URL:               getEnv("LEAGUE_FEED_URL", ""),
			LeagueID:          getEnv("LEAGUE_FEED_LEAGUE", ""),
			ClientID:          getEnv("LEAGUE_FEED_CLIENT_ID", ""),
			ClientSecret:      getEnv("LEAGUE_FEED_CLIENT_SECRET", ""),
			TokenURL:          getEnv("LEAGUE_FEED_TOKEN_URL", ""),
			Interval:          getEnvDuration("RECONCILE_INTERVAL", 30*time.Second),
			RequestsPerSecond: getEnvFloat("LEAGUE_FEED_RPS", 1),
		},

		Authentik: AuthentikConfig{
			BaseURL:      getEnv("AUTHENTIK_BASE_URL", ""),
			ClientID:     getEnv("AUTHENTIK_CLIENT_ID", ""),
			ClientSecret: getEnv("AUTHENTIK_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("AUTHENTIK_REDIRECT_URL", "http://localhost:3000/auth/callback"),
		},

		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		TuningFile:    getEnv("TUNING_FILE", ""),
		PredictorSeed: int64(getEnvInt("PREDICTOR_SEED", 0)),
	}
}

// IsDevelopment reports whether local stand-ins (embedded NATS, mock auth, mock ADP) should be used
func (c *Config) IsDevelopment() bool {
	return c.Environment == "" || c.Environment == "development"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("30s") or plain seconds ("300")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
