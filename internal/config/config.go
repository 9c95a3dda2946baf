// Package config loads the forgeheat settings from the environment.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"cdr.dev/slog/v3"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/xerrors"
)

// 缓存后端
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Redis 连接配置
type Redis struct {
	Addr     string `envconfig:"ADDR" default:"localhost:6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

// Config 应用配置
type Config struct {
	Port     string `envconfig:"PORT" default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	CacheBackend     string        `envconfig:"CACHE_BACKEND" default:"redis"`
	CacheTTL         time.Duration `envconfig:"CACHE_TTL" default:"1h"`
	MemoryCacheBytes int64         `envconfig:"MEMORY_CACHE_BYTES" default:"67108864"` // 64MB
	Redis            Redis
	DBPath           string `envconfig:"DB_PATH" default:"./data/forgeheat.db"`

	ProviderTimeout        time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"30s"`
	MaxConcurrentProviders int           `envconfig:"MAX_CONCURRENT_PROVIDERS" default:"8"`
	GitLabMaxPages         int           `envconfig:"GITLAB_MAX_PAGES" default:"100"`
	GitHubAPIURL           string        `envconfig:"GITHUB_API_URL" default:"https://api.github.com/"`

	JWTSecret  string        `envconfig:"JWT_SECRET"` // 为空时不校验
	RateLimit  int           `envconfig:"RATE_LIMIT" default:"60"`
	RateWindow time.Duration `envconfig:"RATE_WINDOW" default:"1m"`

	Timezone string `envconfig:"TIMEZONE" default:"Local"`
}

// Load 加载配置. Variables already set in the environment win over the
// .env files, and missing files are ignored
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, xerrors.Errorf("load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, xerrors.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values envconfig cannot
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case BackendRedis, BackendSQLite, BackendMemory, BackendNone:
	default:
		return xerrors.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.CacheTTL <= 0 {
		return xerrors.New("CACHE_TTL must be positive")
	}
	if c.ProviderTimeout <= 0 {
		return xerrors.New("PROVIDER_TIMEOUT must be positive")
	}
	if c.MaxConcurrentProviders <= 0 {
		return xerrors.New("MAX_CONCURRENT_PROVIDERS must be positive")
	}
	if c.GitLabMaxPages <= 0 {
		return xerrors.New("GITLAB_MAX_PAGES must be positive")
	}
	if c.RateWindow <= 0 {
		return xerrors.New("RATE_WINDOW must be positive")
	}
	return nil
}

// Level parses LogLevel
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, xerrors.Errorf("unknown LOG_LEVEL %q", c.LogLevel)
	}
}

// Location resolves Timezone, where "Local" is the host zone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, xerrors.Errorf("load TIMEZONE: %w", err)
	}
	return loc, nil
}
