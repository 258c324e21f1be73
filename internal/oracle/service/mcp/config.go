package mcp

import (
	"fmt"
	"os"
	"sort"

	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/helper"
	"github.com/kiosk404/oracle/pkg/utils/json"
)

const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// MCPConfig holds the top-level MCP configuration.
// Compatible with the Claude Desktop / VS Code MCP config format.
//
// File format (mcp.json):
//
//	{
//	  "mcpServers": {
//	    "files": {
//	      "transport": "stdio",
//	      "command": "npx",
//	      "args": ["-y", "@modelcontextprotocol/server-filesystem", "/tmp"]
//	    }
//	  }
//	}
type MCPConfig struct {
	MCPServers map[string]*ServerConfig `json:"mcpServers"`
}

// ServerConfig defines the configuration for a single MCP server.
type ServerConfig struct {
	// Transport is "stdio" (subprocess, default) or "sse".
	Transport string `json:"transport,omitempty"`

	// stdio
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
	// Env entries are KEY=VALUE; values may be ${ENV} references.
	Env []string `json:"env,omitempty"`

	// sse
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`

	// ToolFilter limits the exposed tools. Empty exposes all of them.
	ToolFilter []string `json:"toolFilter,omitempty"`
}

// LoadMCPConfig loads the MCP configuration from a JSON file.
// An empty path or a missing file yields an empty config.
func LoadMCPConfig(path string) (*MCPConfig, error) {
	if path == "" {
		return NewMCPConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewMCPConfig(), nil
		}
		return nil, fmt.Errorf("failed to read MCP config file %q: %w", path, err)
	}

	cfg := &MCPConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse MCP config file %q: %w", path, err)
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]*ServerConfig)
	}
	return cfg, nil
}

// NewMCPConfig creates an empty MCP configuration.
func NewMCPConfig() *MCPConfig {
	return &MCPConfig{
		MCPServers: make(map[string]*ServerConfig),
	}
}

// Validate fills the default transport and checks each server entry.
func (c *MCPConfig) Validate() []error {
	var errs []error
	for _, name := range c.ServerNames() {
		srv := c.MCPServers[name]
		if srv == nil {
			errs = append(errs, fmt.Errorf("mcpServers.%s: empty configuration", name))
			continue
		}
		if srv.Transport == "" {
			srv.Transport = TransportStdio
		}
		switch srv.Transport {
		case TransportStdio:
			if srv.Command == "" {
				errs = append(errs, fmt.Errorf("mcpServers.%s: command is required for stdio transport", name))
			}
		case TransportSSE:
			if srv.URL == "" {
				errs = append(errs, fmt.Errorf("mcpServers.%s: url is required for sse transport", name))
			}
		default:
			errs = append(errs, fmt.Errorf("mcpServers.%s: unsupported transport %q (must be 'stdio' or 'sse')", name, srv.Transport))
		}
	}
	return errs
}

// ServerNames returns the configured server names, sorted.
func (c *MCPConfig) ServerNames() []string {
	names := make([]string, 0, len(c.MCPServers))
	for name := range c.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *ServerConfig) resolvedEnv() []string {
	out := make([]string, 0, len(s.Env))
	for _, kv := range s.Env {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				kv = kv[:i+1] + helper.ResolveEnvValue(kv[i+1:])
				break
			}
		}
		out = append(out, kv)
	}
	return out
}

func (s *ServerConfig) resolvedHeaders() map[string]string {
	out := make(map[string]string, len(s.Headers))
	for k, v := range s.Headers {
		out[k] = helper.ResolveEnvValue(v)
	}
	return out
}
