package config

import (
	"fmt"
	"time"

	"github.com/spcgrid/spcgrid/internal/spc"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Events  EventsConfig  `mapstructure:"events"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort     int           `mapstructure:"http_port"` // HTTP server port
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"` // Max request body size in bytes
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// EngineConfig carries the chart engine defaults applied when a request
// leaves them unspecified
type EngineConfig struct {
	SubgroupSize  int     `mapstructure:"subgroup_size"`  // Default subgroup size
	PartialPolicy string  `mapstructure:"partial_policy"` // drop, keep, error
	CUSUMK        float64 `mapstructure:"cusum_k"`        // Reference slack in sigma units
	CUSUMH        float64 `mapstructure:"cusum_h"`        // Decision interval in sigma units
}

// CacheConfig represents chart result cache configuration
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Backend  string        `mapstructure:"backend"` // redis (default), memory
	RedisURL string        `mapstructure:"redis_url"`
	RedisDB  int           `mapstructure:"redis_db"`
	TTL      time.Duration `mapstructure:"ttl"`
	MaxItems int           `mapstructure:"max_items"` // Memory backend capacity
}

// EventsConfig represents the violation event publisher configuration
type EventsConfig struct {
	Type     string `mapstructure:"type"`    // nats (default), redis, memory
	URL      string `mapstructure:"url"`     // Broker URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Subject  string `mapstructure:"subject"` // Subject / stream name for violation events
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// Redis-specific options
	RedisDB     int    `mapstructure:"redis_db"`
	RedisStream string `mapstructure:"redis_stream"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	return nil
}

// Validate validates engine defaults
func (c *EngineConfig) Validate() error {
	if c.SubgroupSize < spc.MinSubgroupSize || c.SubgroupSize > spc.MaxSubgroupSize {
		return fmt.Errorf("engine.subgroup_size must be between %d and %d", spc.MinSubgroupSize, spc.MaxSubgroupSize)
	}

	if !spc.IsValidPartialPolicy(c.PartialPolicy) {
		return fmt.Errorf("engine.partial_policy must be one of: drop, keep, error")
	}

	if c.CUSUMK < 0 {
		return fmt.Errorf("engine.cusum_k cannot be negative")
	}

	if c.CUSUMH <= 0 {
		return fmt.Errorf("engine.cusum_h must be positive")
	}

	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Backend != "redis" && c.Backend != "memory" {
		return fmt.Errorf("cache.backend must be 'redis' or 'memory'")
	}

	if c.Backend == "redis" && c.RedisURL == "" {
		return fmt.Errorf("cache.redis_url is required for the redis backend")
	}

	if c.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}

	return nil
}

// Validate validates events configuration
func (c *EventsConfig) Validate() error {
	switch c.Type {
	case "nats", "redis", "memory":
	default:
		return fmt.Errorf("events.type must be one of: nats, redis, memory")
	}

	if c.Type != "memory" && c.URL == "" {
		return fmt.Errorf("events.url is required for the %s publisher", c.Type)
	}

	if c.Subject == "" {
		return fmt.Errorf("events.subject is required")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}

// ListenAddress returns the HTTP server bind address
func (c *ServerConfig) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}
