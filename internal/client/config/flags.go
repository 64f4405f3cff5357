package config

import (
	"flag"
	"fmt"
	"io"
	"time"
)

// parseFlags overlays the global flags and returns the remaining arguments.
func parseFlags(cfg *Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet("cmsauth-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the API")
	fs.StringVar(&cfg.Token, "token", cfg.Token, "bearer token")
	timeout := fs.Int("timeout", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "timeout" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return fs.Args(), nil
}
