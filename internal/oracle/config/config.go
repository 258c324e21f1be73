package config

import (
	"github.com/kiosk404/oracle/internal/oracle/options"
)

// Config is the running configuration structure of the oracle service.
type Config struct {
	*options.Options
}

// CreateConfigFromOptions creates a running configuration instance based
// on a given oracle command line or configuration file option.
func CreateConfigFromOptions(opts *options.Options) (*Config, error) {
	return &Config{opts}, nil
}
