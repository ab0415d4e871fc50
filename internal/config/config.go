package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Image cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Neynar     NeynarConfig     `yaml:"neynar"`
	Cache      CacheConfig      `yaml:"cache"`
	Render     RenderConfig     `yaml:"render"`
	ImageFetch ImageFetchConfig `yaml:"image_fetch"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"PORT" default:"3000"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	// BaseURL is the public origin used for composite image URLs.
	BaseURL string `yaml:"base_url" envconfig:"BASE_URL" default:"https://farlinker.xyz"`
	// CanonicalHost is where human visitors are redirected.
	CanonicalHost string `yaml:"canonical_host" envconfig:"CANONICAL_HOST" default:"https://farcaster.xyz"`
}

// NeynarConfig holds content API configuration.
type NeynarConfig struct {
	APIKey  string        `yaml:"api_key" envconfig:"NEYNAR_API_KEY"`
	BaseURL string        `yaml:"base_url" envconfig:"NEYNAR_BASE_URL" default:"https://api.neynar.com"`
	Timeout time.Duration `yaml:"timeout" envconfig:"NEYNAR_TIMEOUT" default:"5s"`
}

// CacheConfig holds cast lookup and rendered image cache configuration.
type CacheConfig struct {
	CastTTL       time.Duration `yaml:"cast_ttl" envconfig:"CAST_CACHE_TTL" default:"5m"`
	CastCapacity  int           `yaml:"cast_capacity" envconfig:"CAST_CACHE_CAPACITY" default:"1000"`
	ImageBackend  string        `yaml:"image_backend" envconfig:"IMAGE_CACHE_BACKEND" default:"memory"`
	ImageTTL      time.Duration `yaml:"image_ttl" envconfig:"IMAGE_CACHE_TTL" default:"1h"`
	ImageCapacity int           `yaml:"image_capacity" envconfig:"IMAGE_CACHE_CAPACITY" default:"256"`
	RedisURL      string        `yaml:"redis_url" envconfig:"REDIS_URL"`
}

// RenderConfig holds the post composite geometry.
type RenderConfig struct {
	Width                   int     `yaml:"width" envconfig:"RENDER_WIDTH" default:"600"`
	Padding                 int     `yaml:"padding" envconfig:"RENDER_PADDING" default:"40"`
	BodyFontSize            float64 `yaml:"body_font_size" envconfig:"RENDER_BODY_FONT_SIZE" default:"32"`
	LineHeight              int     `yaml:"line_height" envconfig:"RENDER_LINE_HEIGHT" default:"42"`
	AvgCharWidth            float64 `yaml:"avg_char_width" envconfig:"RENDER_AVG_CHAR_WIDTH" default:"16"`
	HeaderHeight            int     `yaml:"header_height" envconfig:"RENDER_HEADER_HEIGHT" default:"84"`
	MinHeight               int     `yaml:"min_height" envconfig:"RENDER_MIN_HEIGHT" default:"200"`
	MaxHeight               int     `yaml:"max_height" envconfig:"RENDER_MAX_HEIGHT" default:"1200"`
	MessagingMaxHeight      int     `yaml:"messaging_max_height" envconfig:"RENDER_MESSAGING_MAX_HEIGHT" default:"800"`
	ImageMaxHeight          int     `yaml:"image_max_height" envconfig:"RENDER_IMAGE_MAX_HEIGHT" default:"800"`
	MessagingImageMaxHeight int     `yaml:"messaging_image_max_height" envconfig:"RENDER_MESSAGING_IMAGE_MAX_HEIGHT" default:"400"`
	SafetyLines             float64 `yaml:"safety_lines" envconfig:"RENDER_SAFETY_LINES" default:"0.5"`
}

// ImageFetchConfig holds remote image download configuration.
type ImageFetchConfig struct {
	Timeout       time.Duration `yaml:"timeout" envconfig:"IMAGE_FETCH_TIMEOUT" default:"5s"`
	MaxBytes      int64         `yaml:"max_bytes" envconfig:"IMAGE_FETCH_MAX_BYTES" default:"10485760"` // 10MiB
	UserAgent     string        `yaml:"user_agent" envconfig:"IMAGE_FETCH_USER_AGENT" default:"farlinker/1.0 (+https://farlinker.xyz)"`
	RetryAttempts int           `yaml:"retry_attempts" envconfig:"IMAGE_FETCH_RETRY_ATTEMPTS" default:"2"`
	RetryDelay    time.Duration `yaml:"retry_delay" envconfig:"IMAGE_FETCH_RETRY_DELAY" default:"100ms"`
	// MaxPixels bounds the declared width*height of a remote image before it is decoded.
	MaxPixels int64 `yaml:"max_pixels" envconfig:"IMAGE_FETCH_MAX_PIXELS" default:"16777216"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `yaml:"level" envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from file and environment variables.
// A .env file in the working directory is loaded first when present;
// environment variables override file values.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Neynar.APIKey == "" {
		return fmt.Errorf("NEYNAR_API_KEY is required")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}
	if c.Cache.CastCapacity <= 0 {
		return fmt.Errorf("CAST_CACHE_CAPACITY must be positive")
	}
	if c.Cache.ImageCapacity <= 0 {
		return fmt.Errorf("IMAGE_CACHE_CAPACITY must be positive")
	}
	switch c.Cache.ImageBackend {
	case BackendMemory:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when IMAGE_CACHE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("unknown IMAGE_CACHE_BACKEND %q", c.Cache.ImageBackend)
	}
	if err := c.Render.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks that the composite geometry is usable.
func (c *RenderConfig) Validate() error {
	if c.Width <= 2*c.Padding {
		return fmt.Errorf("RENDER_WIDTH must exceed twice RENDER_PADDING")
	}
	if c.LineHeight <= 0 || c.AvgCharWidth <= 0 || c.BodyFontSize <= 0 {
		return fmt.Errorf("render line metrics must be positive")
	}
	if c.MinHeight <= 0 || c.MinHeight > c.MessagingMaxHeight || c.MessagingMaxHeight > c.MaxHeight {
		return fmt.Errorf("render heights must satisfy 0 < min <= messaging max <= max")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SlogLevel maps the configured level name to a slog level.
func (c *LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
