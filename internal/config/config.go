package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Simrs    SimrsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// SimrsConfig defines how the external ticket system is reached and how the
// orchestrator paces its calls against it.
type SimrsConfig struct {
	// BaseURL is the default endpoint; an admin-scoped webmin record may
	// override it per user.
	BaseURL               string
	RequestTimeoutSeconds int
	// ConsistencyDelayMillis is the wait between creation success and the
	// follow-up assignment call. SIMRS is eventually consistent after a
	// create; this is a heuristic window, not a guarantee.
	ConsistencyDelayMillis int
	// BulkThrottleMillis is the pause between bulk escalation items.
	BulkThrottleMillis int
	// SummaryPollSeconds is the refresh interval of the bucket summary poller.
	SummaryPollSeconds int
	// SummaryCacheTTLSeconds bounds staleness of cached summary counts.
	SummaryCacheTTLSeconds int
	// ServiceUser/ServicePass is the webmin account the background summary
	// poller uses. The poller is disabled when unset.
	ServiceUser string
	ServicePass string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "eservicedesk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 480),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Simrs: SimrsConfig{
			BaseURL:                getEnv("SIMRS_BASE_URL", "http://192.168.1.1/webmin"),
			RequestTimeoutSeconds:  getEnvAsInt("SIMRS_REQUEST_TIMEOUT_SECONDS", 30),
			ConsistencyDelayMillis: getEnvAsInt("SIMRS_CONSISTENCY_DELAY_MILLIS", 1000),
			BulkThrottleMillis:     getEnvAsInt("SIMRS_BULK_THROTTLE_MILLIS", 500),
			SummaryPollSeconds:     getEnvAsInt("SIMRS_SUMMARY_POLL_SECONDS", 5),
			SummaryCacheTTLSeconds: getEnvAsInt("SIMRS_SUMMARY_CACHE_TTL_SECONDS", 15),
			ServiceUser:            os.Getenv("SIMRS_SERVICE_USER"),
			ServicePass:            os.Getenv("SIMRS_SERVICE_PASS"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RequestTimeout returns the outbound call timeout.
func (s SimrsConfig) RequestTimeout() time.Duration {
	if s.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// ConsistencyDelay returns the post-create wait before delegation.
func (s SimrsConfig) ConsistencyDelay() time.Duration {
	return time.Duration(s.ConsistencyDelayMillis) * time.Millisecond
}

// BulkThrottle returns the pause between bulk items.
func (s SimrsConfig) BulkThrottle() time.Duration {
	return time.Duration(s.BulkThrottleMillis) * time.Millisecond
}

// SummaryPollInterval returns the summary refresh period.
func (s SimrsConfig) SummaryPollInterval() time.Duration {
	if s.SummaryPollSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.SummaryPollSeconds) * time.Second
}

// SummaryCacheTTL returns the cache expiry for summary counts.
func (s SimrsConfig) SummaryCacheTTL() time.Duration {
	if s.SummaryCacheTTLSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.SummaryCacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
