package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Matching     MatchingConfig
	Recalc       RecalcConfig
	Availability AvailabilityConfig
	Taxonomy     TaxonomyConfig
	Reports      ReportsConfig
	Calendar     CalendarConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MatchingConfig tunes match query behaviour and stats caching.
type MatchingConfig struct {
	DefaultTopLimit int
	MaxPageSize     int
	StatsCacheTTL   time.Duration
}

// RecalcConfig bounds bulk score recomputation.
type RecalcConfig struct {
	Concurrency int
	QueueSize   int
}

// AvailabilityConfig sets default lookahead windows for the calendar logic.
type AvailabilityConfig struct {
	BlockedWindowDays  int
	SuggestWindowDays  int
	BlockingEventsDays int
}

// TaxonomyConfig controls the cached major/industry map.
type TaxonomyConfig struct {
	CacheTTL time.Duration
}

// ReportsConfig configures asynchronous match report generation.
type ReportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// CalendarConfig gates the academic calendar admin API.
type CalendarConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Matching = MatchingConfig{
		DefaultTopLimit: v.GetInt("MATCHING_DEFAULT_TOP_LIMIT"),
		MaxPageSize:     v.GetInt("MATCHING_MAX_PAGE_SIZE"),
		StatsCacheTTL:   parseDuration(v.GetString("MATCHING_STATS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Recalc = RecalcConfig{
		Concurrency: v.GetInt("RECALC_CONCURRENCY"),
		QueueSize:   v.GetInt("RECALC_QUEUE_SIZE"),
	}

	cfg.Availability = AvailabilityConfig{
		BlockedWindowDays:  v.GetInt("AVAILABILITY_BLOCKED_WINDOW_DAYS"),
		SuggestWindowDays:  v.GetInt("AVAILABILITY_SUGGEST_WINDOW_DAYS"),
		BlockingEventsDays: v.GetInt("AVAILABILITY_BLOCKING_EVENTS_DAYS"),
	}

	cfg.Taxonomy = TaxonomyConfig{
		CacheTTL: parseDuration(v.GetString("TAXONOMY_CACHE_TTL"), 30*time.Minute),
	}

	cfg.Reports = ReportsConfig{
		Enabled:           v.GetBool("ENABLE_REPORTS"),
		StorageDir:        v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("REPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("REPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("REPORTS_WORKER_RETRIES"),
	}

	cfg.Calendar = CalendarConfig{
		Enabled: v.GetBool("ENABLE_CALENDAR_ADMIN"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gradeup")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MATCHING_DEFAULT_TOP_LIMIT", 10)
	v.SetDefault("MATCHING_MAX_PAGE_SIZE", 100)
	v.SetDefault("MATCHING_STATS_CACHE_TTL", "5m")

	v.SetDefault("RECALC_CONCURRENCY", 4)
	v.SetDefault("RECALC_QUEUE_SIZE", 64)

	v.SetDefault("AVAILABILITY_BLOCKED_WINDOW_DAYS", 180)
	v.SetDefault("AVAILABILITY_SUGGEST_WINDOW_DAYS", 30)
	v.SetDefault("AVAILABILITY_BLOCKING_EVENTS_DAYS", 90)

	v.SetDefault("TAXONOMY_CACHE_TTL", "30m")

	v.SetDefault("ENABLE_REPORTS", false)
	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("REPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("REPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("REPORTS_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_CALENDAR_ADMIN", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
