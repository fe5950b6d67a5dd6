package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yungbote/roadmap-backend/internal/data/db"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

const devJWTSecret = "defaultsecret"

type Config struct {
	Port    string `mapstructure:"PORT"`
	LogMode string `mapstructure:"LOG_MODE"`
	AppEnv  string `mapstructure:"APP_ENV"`
	Version string `mapstructure:"APP_VERSION"`

	DBDriver         string        `mapstructure:"DB_DRIVER"`
	PostgresHost     string        `mapstructure:"POSTGRES_HOST"`
	PostgresPort     string        `mapstructure:"POSTGRES_PORT"`
	PostgresUser     string        `mapstructure:"POSTGRES_USER"`
	PostgresPassword string        `mapstructure:"POSTGRES_PASSWORD"`
	PostgresName     string        `mapstructure:"POSTGRES_NAME"`
	PostgresSSLMode  string        `mapstructure:"POSTGRES_SSLMODE"`
	SQLitePath       string        `mapstructure:"SQLITE_PATH"`
	DBSlowThreshold  time.Duration `mapstructure:"DB_SLOW_THRESHOLD"`
	DBMaxOpenConns   int           `mapstructure:"DB_MAX_OPEN_CONNS"`

	JWTSecretKey   string        `mapstructure:"JWT_SECRET_KEY"`
	AccessTokenTTL time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisChannel  string `mapstructure:"REDIS_CHANNEL"`

	LockTTL          time.Duration `mapstructure:"LOCK_TTL"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownGrace    time.Duration `mapstructure:"SHUTDOWN_GRACE"`
	WeeklyGoal       int           `mapstructure:"WEEKLY_GOAL_DEFAULT"`
	CORSOrigins      string        `mapstructure:"CORS_ORIGINS"`
	ToggleRateLimit  int           `mapstructure:"TOGGLE_RATE_LIMIT"`
	ToggleRateWindow time.Duration `mapstructure:"TOGGLE_RATE_WINDOW"`
	SeedOnStart      bool          `mapstructure:"SEED_ACHIEVEMENTS_ON_START"`
	MetricsEnabled   bool          `mapstructure:"METRICS_ENABLED"`

	OtelEnabled     bool    `mapstructure:"OTEL_ENABLED"`
	OtelServiceName string  `mapstructure:"OTEL_SERVICE_NAME"`
	OtelEndpoint    string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `mapstructure:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	OtelSampleRatio float64 `mapstructure:"OTEL_TRACES_SAMPLER_ARG"`
}

var defaults = map[string]any{
	"PORT":        "8080",
	"LOG_MODE":    "development",
	"APP_ENV":     "development",
	"APP_VERSION": "dev",

	"DB_DRIVER":         db.DriverPostgres,
	"POSTGRES_HOST":     "localhost",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_USER":     "postgres",
	"POSTGRES_PASSWORD": "postgres",
	"POSTGRES_NAME":     "roadmap",
	"POSTGRES_SSLMODE":  "disable",
	"SQLITE_PATH":       "roadmap.db",
	"DB_SLOW_THRESHOLD": "1s",
	"DB_MAX_OPEN_CONNS": 20,

	"JWT_SECRET_KEY":   devJWTSecret,
	"ACCESS_TOKEN_TTL": "1h",

	"REDIS_ADDR":     "",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,
	"REDIS_CHANNEL":  "roadmap:sse",

	"LOCK_TTL":                   "30s",
	"REQUEST_TIMEOUT":            "15s",
	"SHUTDOWN_GRACE":             "10s",
	"WEEKLY_GOAL_DEFAULT":        10,
	"CORS_ORIGINS":               "",
	"TOGGLE_RATE_LIMIT":          120,
	"TOGGLE_RATE_WINDOW":         "1m",
	"SEED_ACHIEVEMENTS_ON_START": true,
	"METRICS_ENABLED":            true,

	"OTEL_ENABLED":                false,
	"OTEL_SERVICE_NAME":           "roadmap-backend",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
	"OTEL_EXPORTER_OTLP_HEADERS":  "",
	"OTEL_EXPORTER_OTLP_INSECURE": false,
	"OTEL_TRACES_SAMPLER_ARG":     1.0,
}

// LoadConfig reads an optional .env, then an optional app.env under configPath, then the
// process environment, which wins.
func LoadConfig(log *logger.Logger, configPath string) (Config, error) {
	if err := godotenv.Load(); err != nil && log != nil {
		log.Debug("No .env file loaded, using environment variables")
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	if configPath != "" {
		v.AddConfigPath(configPath)
		v.SetConfigName("app")
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecretKey == devJWTSecret && log != nil {
		log.Warn("JWT_SECRET_KEY is the development default")
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DBDriver)) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return errors.New("JWT_SECRET_KEY must not be empty")
	}
	if c.WeeklyGoal < 0 {
		return fmt.Errorf("WEEKLY_GOAL_DEFAULT must be >= 0, got %d", c.WeeklyGoal)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("LOCK_TTL must be positive, got %s", c.LockTTL)
	}
	// A lock that expires mid-request lets a second writer in.
	if c.RequestTimeout > 0 && c.LockTTL <= c.RequestTimeout {
		return fmt.Errorf("LOCK_TTL (%s) must exceed REQUEST_TIMEOUT (%s)", c.LockTTL, c.RequestTimeout)
	}
	return nil
}

func (c Config) DBConfig() db.Config {
	return db.Config{
		Driver:        c.DBDriver,
		PostgresDSN:   db.PostgresDSN(c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresName, c.PostgresSSLMode),
		SQLitePath:    c.SQLitePath,
		SlowThreshold: c.DBSlowThreshold,
		MaxOpenConns:  c.DBMaxOpenConns,
	}
}

func (c Config) OtelConfig() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: c.OtelServiceName,
		Environment: c.AppEnv,
		Version:     c.Version,
		Endpoint:    c.OtelEndpoint,
		Headers:     observability.ParseHeaders(c.OtelHeaders),
		Insecure:    c.OtelInsecure,
		SampleRatio: c.OtelSampleRatio,
	}
}

func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
