package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/spcgrid/spcgrid/internal/spc"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")            // Current directory
		v.AddConfigPath("./configs")    // Project configs directory
		v.AddConfigPath("/etc/spcgrid") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix("SPCGRID")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 5600)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.body_limit", 4*1024*1024)

	// Engine defaults
	v.SetDefault("engine.subgroup_size", spc.DefaultSubgroupSize)
	v.SetDefault("engine.partial_policy", string(spc.PartialDrop))
	v.SetDefault("engine.cusum_k", spc.DefaultCUSUMK)
	v.SetDefault("engine.cusum_h", spc.DefaultCUSUMH)

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.backend", "redis")
	v.SetDefault("cache.redis_url", "redis://localhost:6379")
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.max_items", 1024)

	// Events defaults
	v.SetDefault("events.type", "memory")
	v.SetDefault("events.url", "nats://localhost:4222")
	v.SetDefault("events.subject", "spcgrid.violations")
	v.SetDefault("events.redis_stream", "spcgrid")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			HTTPPort:     5600,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			BodyLimit:    4 * 1024 * 1024,
		},
		Engine: EngineConfig{
			SubgroupSize:  spc.DefaultSubgroupSize,
			PartialPolicy: string(spc.PartialDrop),
			CUSUMK:        spc.DefaultCUSUMK,
			CUSUMH:        spc.DefaultCUSUMH,
		},
		Cache: CacheConfig{
			Enabled:  false,
			Backend:  "redis",
			RedisURL: "redis://localhost:6379",
			TTL:      10 * time.Minute,
			MaxItems: 1024,
		},
		Events: EventsConfig{
			Type:        "memory",
			URL:         "nats://localhost:4222",
			Subject:     "spcgrid.violations",
			RedisStream: "spcgrid",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
