package options

import (
	"github.com/spf13/pflag"

	"github.com/kiosk404/oracle/internal/oracle/handler/middleware"
)

// AuthOptions configures Bearer token authentication of the HTTP API.
type AuthOptions struct {
	Enabled    bool   `json:"enabled"     mapstructure:"enabled"`
	Token      string `json:"-"           mapstructure:"token"`
	AllowLocal bool   `json:"allow-local" mapstructure:"allow-local"`
}

func NewAuthOptions() *AuthOptions {
	return &AuthOptions{AllowLocal: true}
}

func (o *AuthOptions) Validate() []error {
	return nil
}

// ApplyTo copies the options into a middleware config.
func (o *AuthOptions) ApplyTo(c *middleware.AuthConfig) {
	c.Enabled = o.Enabled
	c.Token = o.Token
	c.AllowLocal = o.AllowLocal
}

func (o *AuthOptions) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enabled, "auth.enabled", o.Enabled, "Require a Bearer token on the HTTP API.")
	fs.StringVar(&o.Token, "auth.token", o.Token, "Expected Bearer token. Falls back to "+middleware.TokenEnv+".")
	fs.BoolVar(&o.AllowLocal, "auth.allow-local", o.AllowLocal, "Skip authentication for loopback clients.")
}
