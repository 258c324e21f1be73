package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// MCPOptions holds options for the MCP (Model Context Protocol) subsystem.
// MCP uses a standalone configuration file.
type MCPOptions struct {
	// ConfigFile is the path to the MCP configuration file. A missing file configures no servers.
	ConfigFile     string        `json:"config-file"     mapstructure:"config-file"`
	ConnectTimeout time.Duration `json:"connect-timeout" mapstructure:"connect-timeout"`
}

// NewMCPOptions creates a default MCPOptions instance.
func NewMCPOptions() *MCPOptions {
	return &MCPOptions{
		ConfigFile:     "conf/mcp.json",
		ConnectTimeout: 30 * time.Second,
	}
}

// Validate checks the MCPOptions for correctness.
func (o *MCPOptions) Validate() []error {
	if o.ConnectTimeout <= 0 {
		return []error{fmt.Errorf("--mcp.connect-timeout must be positive, got %s", o.ConnectTimeout)}
	}
	return nil
}

// AddFlags adds the MCPOptions flags to the given flag set.
func (o *MCPOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ConfigFile, "mcp.config-file", o.ConfigFile, "Path to the MCP configuration file.")
	fs.DurationVar(&o.ConnectTimeout, "mcp.connect-timeout", o.ConnectTimeout, "Time allowed for connecting to all MCP servers at startup.")
}
