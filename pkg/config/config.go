package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
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

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Compile  CompileConfig
	Layout   LayoutConfig
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

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig governs the document detail cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// StorageConfig locates uploaded files and compiled results on disk.
type StorageConfig struct {
	AttachmentsDir   string
	ResultsDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
}

// CompileConfig configures the asynchronous compile queue.
type CompileConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
	QueueSize         int
	CleanupInterval   time.Duration
	ResultTTL         time.Duration
}

// LayoutConfig points at the regional wording and seal used on generated pages.
type LayoutConfig struct {
	ProfilePath string
	SealPath    string
	Region      string
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultSignedURLSecret must be overridden outside development.
const defaultSignedURLSecret = "dev_compile_secret"

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.Env == EnvProduction && (c.Storage.SignedURLSecret == "" || c.Storage.SignedURLSecret == defaultSignedURLSecret) {
		problems = append(problems, "STORAGE_SIGNED_URL_SECRET must be set in production")
	}
	if c.Storage.AttachmentsDir == "" || c.Storage.ResultsDir == "" {
		problems = append(problems, "storage directories must not be empty")
	} else if filepath.Clean(c.Storage.AttachmentsDir) == filepath.Clean(c.Storage.ResultsDir) {
		// result cleanup would delete uploaded attachments
		problems = append(problems, "STORAGE_RESULTS_DIR must differ from STORAGE_ATTACHMENTS_DIR")
	}
	if c.Compile.WorkerConcurrency < 1 {
		problems = append(problems, "COMPILE_WORKER_CONCURRENCY must be at least 1")
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		problems = append(problems, "API_PREFIX must start with /")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func fromViper(v *viper.Viper) *Config {
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

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	maxFileSize := v.GetInt64("STORAGE_MAX_FILE_SIZE")
	if maxFileSize <= 0 {
		maxFileSize = 50 * 1024 * 1024
	}
	cfg.Storage = StorageConfig{
		AttachmentsDir:   v.GetString("STORAGE_ATTACHMENTS_DIR"),
		ResultsDir:       v.GetString("STORAGE_RESULTS_DIR"),
		SignedURLSecret:  v.GetString("STORAGE_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("STORAGE_SIGNED_URL_TTL"), 24*time.Hour),
		MaxFileSizeBytes: maxFileSize,
	}

	cfg.Compile = CompileConfig{
		WorkerConcurrency: v.GetInt("COMPILE_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("COMPILE_WORKER_RETRIES"),
		QueueSize:         v.GetInt("COMPILE_QUEUE_SIZE"),
		CleanupInterval:   parseDuration(v.GetString("COMPILE_CLEANUP_INTERVAL"), time.Hour),
		ResultTTL:         parseDuration(v.GetString("COMPILE_RESULT_TTL"), 24*time.Hour),
	}

	cfg.Layout = LayoutConfig{
		ProfilePath: v.GetString("LAYOUT_PROFILE_PATH"),
		SealPath:    v.GetString("LAYOUT_SEAL_PATH"),
		Region:      v.GetString("LAYOUT_REGION"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "perda_lpj")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("STORAGE_ATTACHMENTS_DIR", "./storage/lampiran")
	v.SetDefault("STORAGE_RESULTS_DIR", "./storage/hasil")
	v.SetDefault("STORAGE_SIGNED_URL_SECRET", defaultSignedURLSecret)
	v.SetDefault("STORAGE_SIGNED_URL_TTL", "24h")
	v.SetDefault("STORAGE_MAX_FILE_SIZE", 50*1024*1024)

	v.SetDefault("COMPILE_WORKER_CONCURRENCY", 1)
	v.SetDefault("COMPILE_WORKER_RETRIES", 3)
	v.SetDefault("COMPILE_QUEUE_SIZE", 32)
	v.SetDefault("COMPILE_CLEANUP_INTERVAL", "1h")
	v.SetDefault("COMPILE_RESULT_TTL", "24h")

	v.SetDefault("LAYOUT_PROFILE_PATH", "")
	v.SetDefault("LAYOUT_SEAL_PATH", "./assets/logo.png")
	v.SetDefault("LAYOUT_REGION", "")
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
