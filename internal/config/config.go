package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port                 string
	Origin               string
	Environment          string
	JWTSecret            string
	JWTExpirationMinutes int
	StorageBackend       string
	RateLimitPerMinute   int
	Database             DatabaseConfig
	Redis                RedisConfig
	CalendarSync         CalendarSyncConfig
	Scheduling           SchedulingConfig
	ClinicCache          ClinicCacheConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// RedisConfig points at the Redis instance backing the task queue
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CalendarSyncConfig controls the external calendar side-integration
type CalendarSyncConfig struct {
	Enabled     bool
	WebhookURL  string
	Queue       string
	MaxRetry    int
	Concurrency int
	RunWorker   bool
}

// SchedulingConfig holds defaults for clinics without their own settings
type SchedulingConfig struct {
	DefaultTimezone    string
	WorkdayStart       string
	WorkdayEnd         string
	DefaultSlotMinutes int
	ReassignPolicy     string
}

// ClinicCacheConfig sizes the clinic settings cache
type ClinicCacheConfig struct {
	Size int
	TTL  time.Duration
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "clinic"),
	}

	// Instants are stored in UTC; clinic timezones are applied in the engine.
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	jwtExpMinutes, err := getEnvInt("JWT_EXPIRATION_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	rateLimit, err := getEnvInt("RATE_LIMIT_PER_MINUTE", 120)
	if err != nil {
		return nil, err
	}
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	syncEnabled, err := getEnvBool("CALENDAR_SYNC_ENABLED", false)
	if err != nil {
		return nil, err
	}
	syncWorker, err := getEnvBool("CALENDAR_SYNC_RUN_WORKER", true)
	if err != nil {
		return nil, err
	}
	syncRetry, err := getEnvInt("CALENDAR_SYNC_MAX_RETRY", 5)
	if err != nil {
		return nil, err
	}
	syncConcurrency, err := getEnvInt("CALENDAR_SYNC_CONCURRENCY", 5)
	if err != nil {
		return nil, err
	}

	slotMinutes, err := getEnvInt("DEFAULT_SLOT_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	cacheSize, err := getEnvInt("CLINIC_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvInt("CLINIC_CACHE_TTL_SECONDS", 300)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                 getEnv("PORT", "3001"),
		Origin:               getEnv("ORIGIN", "http://localhost:4200"),
		Environment:          getEnv("APP_ENV", "development"),
		JWTSecret:            getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTExpirationMinutes: jwtExpMinutes,
		StorageBackend:       strings.ToLower(getEnv("STORAGE_BACKEND", "mysql")),
		RateLimitPerMinute:   rateLimit,
		Database:             dbConfig,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		CalendarSync: CalendarSyncConfig{
			Enabled:     syncEnabled,
			WebhookURL:  getEnv("CALENDAR_SYNC_WEBHOOK_URL", ""),
			Queue:       getEnv("CALENDAR_SYNC_QUEUE", "calendar"),
			MaxRetry:    syncRetry,
			Concurrency: syncConcurrency,
			RunWorker:   syncWorker,
		},
		Scheduling: SchedulingConfig{
			DefaultTimezone:    getEnv("DEFAULT_TIMEZONE", "UTC"),
			WorkdayStart:       getEnv("DEFAULT_WORKDAY_START", "08:00"),
			WorkdayEnd:         getEnv("DEFAULT_WORKDAY_END", "18:00"),
			DefaultSlotMinutes: slotMinutes,
			ReassignPolicy:     getEnv("REASSIGN_TARGET_POLICY", "first_active"),
		},
		ClinicCache: ClinicCacheConfig{
			Size: cacheSize,
			TTL:  time.Duration(cacheTTL) * time.Second,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := time.LoadLocation(c.Scheduling.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid DEFAULT_TIMEZONE: %w", err)
	}
	for key, v := range map[string]string{
		"DEFAULT_WORKDAY_START": c.Scheduling.WorkdayStart,
		"DEFAULT_WORKDAY_END":   c.Scheduling.WorkdayEnd,
	} {
		if _, err := time.Parse("15:04", v); err != nil {
			return fmt.Errorf("invalid %s %q: expected HH:MM", key, v)
		}
	}
	switch c.Scheduling.ReassignPolicy {
	case "first_active", "explicit":
	default:
		return fmt.Errorf("invalid REASSIGN_TARGET_POLICY %q: expected first_active or explicit", c.Scheduling.ReassignPolicy)
	}
	switch c.StorageBackend {
	case "mysql", "memory":
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: expected mysql or memory", c.StorageBackend)
	}
	if c.CalendarSync.Enabled && c.CalendarSync.WebhookURL == "" {
		return fmt.Errorf("CALENDAR_SYNC_WEBHOOK_URL is required when CALENDAR_SYNC_ENABLED is true")
	}
	if c.ClinicCache.Size <= 0 {
		return fmt.Errorf("invalid CLINIC_CACHE_SIZE: must be positive")
	}
	return nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
