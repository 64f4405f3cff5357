package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the cmsauth CLI.
type Config struct {
	ServerURL      string        `env:"CMS_SERVER"`
	Token          string        `env:"CMS_TOKEN"`
	RequestTimeout time.Duration `env:"CMS_TIMEOUT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig applies defaults, the environment and then the flags found at
// the start of args. It returns the arguments left after the flags, i.e.
// the sub-command and its operands.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := env.Parse(cfg); err != nil {
		return nil, nil, fmt.Errorf("parse environment: %w", err)
	}
	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}
