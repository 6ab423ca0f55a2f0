package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Mongo     MongoConfig
	Backup    BackupConfig
	Report    ReportConfig
	Sync      SyncConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string // empty means debug in development, info in production
	AllowedOrigins []string
}

type StorageConfig struct {
	Driver         string
	DataDir        string
	ConnectTries   int
	ConnectTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port for the redis client
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type BackupConfig struct {
	Dir      string // empty disables automatic backups
	Schedule string
}

type ReportConfig struct {
	Timezone string
}

type SyncConfig struct {
	IndicatorDelay time.Duration
	SaveTimeout    time.Duration
}

type RateLimitConfig struct {
	Requests int // per window, 0 disables
	Window   time.Duration
}

// Load reads an optional .env file and the environment
func Load() *Config {
	// a missing .env is fine, the environment alone can configure the app
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("STORAGE_DRIVER", DriverFile)
	v.SetDefault("STORAGE_DATA_DIR", "./data")
	v.SetDefault("STORAGE_CONNECT_TRIES", 5)
	v.SetDefault("STORAGE_CONNECT_TIMEOUT", "2s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "financas")
	v.SetDefault("MONGO_COLLECTION", "app_state")
	v.SetDefault("BACKUP_DIR", "")
	v.SetDefault("BACKUP_SCHEDULE", "0 23 * * *")
	v.SetDefault("REPORT_TIMEZONE", "Local")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("SYNC_INDICATOR_DELAY", "500ms")
	v.SetDefault("SYNC_SAVE_TIMEOUT", "5s")
	v.SetDefault("RATE_LIMIT_REQUESTS", 0)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")

	return v
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Storage: StorageConfig{
			Driver:         strings.ToLower(v.GetString("STORAGE_DRIVER")),
			DataDir:        v.GetString("STORAGE_DATA_DIR"),
			ConnectTries:   v.GetInt("STORAGE_CONNECT_TRIES"),
			ConnectTimeout: v.GetDuration("STORAGE_CONNECT_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_DATABASE"),
			Schema:   v.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Mongo: MongoConfig{
			URI:        v.GetString("MONGO_URI"),
			Database:   v.GetString("MONGO_DATABASE"),
			Collection: v.GetString("MONGO_COLLECTION"),
		},
		Backup: BackupConfig{
			Dir:      v.GetString("BACKUP_DIR"),
			Schedule: v.GetString("BACKUP_SCHEDULE"),
		},
		Report: ReportConfig{
			Timezone: v.GetString("REPORT_TIMEZONE"),
		},
		Sync: SyncConfig{
			IndicatorDelay: v.GetDuration("SYNC_INDICATOR_DELAY"),
			SaveTimeout:    v.GetDuration("SYNC_SAVE_TIMEOUT"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
	}
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// IsDevelopment reports whether the app runs outside production
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

// Location returns the time zone used to group sales by calendar month
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Report.Timezone, err)
	}
	return loc, nil
}

// Validate checks the settings that would otherwise fail late and silently
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile, DriverPostgres, DriverRedis, DriverMongo:
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Storage.ConnectTries < 1 {
		return fmt.Errorf("%w: STORAGE_CONNECT_TRIES must be at least 1", ErrInvalidConfig)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.Backup.Dir != "" {
		if _, err := cron.ParseStandard(c.Backup.Schedule); err != nil {
			return fmt.Errorf("%w: invalid backup schedule %q: %v", ErrInvalidConfig, c.Backup.Schedule, err)
		}
	}

	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("%w: RATE_LIMIT_REQUESTS cannot be negative", ErrInvalidConfig)
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("%w: RATE_LIMIT_WINDOW must be positive", ErrInvalidConfig)
	}

	return nil
}
