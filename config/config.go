package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Feed holds the pagination and resolution settings of the readables feed
type Feed struct {
	DefaultLimit        int `toml:"default_limit"`
	MaxLimit            int `toml:"max_limit"`
	RelationConcurrency int `toml:"relation_concurrency"`
}

// Server holds the HTTP settings
type Server struct {
	Port        int    `toml:"port"`
	CorsOrigins string `toml:"cors_origins"`
}

// Config represents the top-level configuration
type Config struct {
	Feed   Feed   `toml:"feed"`
	Server Server `toml:"server"`
}

func Default() *Config {
	return &Config{
		Feed: Feed{
			DefaultLimit:        15,
			MaxLimit:            100,
			RelationConcurrency: 8,
		},
		Server: Server{
			Port:        3000,
			CorsOrigins: "*",
		},
	}
}

// LoadConfig reads a TOML file over the defaults. Keys missing from the
// file keep their default value.
func LoadConfig(path string) (*Config, error) {
	config := Default()
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Feed.DefaultLimit < 1 {
		return fmt.Errorf("feed.default_limit must be positive, got %d", c.Feed.DefaultLimit)
	}
	if c.Feed.MaxLimit != 0 && c.Feed.MaxLimit < c.Feed.DefaultLimit {
		return fmt.Errorf("feed.max_limit %d is below feed.default_limit %d", c.Feed.MaxLimit, c.Feed.DefaultLimit)
	}
	if c.Feed.RelationConcurrency < 1 {
		return fmt.Errorf("feed.relation_concurrency must be positive, got %d", c.Feed.RelationConcurrency)
	}
	return nil
}
