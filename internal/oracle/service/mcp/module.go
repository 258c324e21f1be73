package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/tool"

	"github.com/kiosk404/oracle/internal/oracle/service/tools"
	"github.com/kiosk404/oracle/pkg/logger"
)

const defaultConnectTimeout = 30 * time.Second

type Config struct {
	MCPConfig      *MCPConfig
	ConnectTimeout time.Duration
}

// CompletedConfig is the completed configuration for MCP.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.MCPConfig == nil {
		c.MCPConfig = NewMCPConfig()
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	for _, srv := range c.MCPConfig.MCPServers {
		if srv != nil && srv.Transport == "" {
			srv.Transport = TransportStdio
		}
	}
	return CompletedConfig{c}
}

// Module is the top-level MCP module.
type Module struct {
	Manager Manager
}

// New connects to the configured servers. Servers that fail to connect contribute no tools.
func (c CompletedConfig) New(ctx context.Context) (*Module, error) {
	if errs := c.MCPConfig.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid MCP config: %v", errs)
	}

	mgr := newManager(c.MCPConfig)

	connectCtx, cancel := context.WithTimeout(ctx, c.ConnectTimeout)
	defer cancel()
	if err := mgr.Initialize(connectCtx); err != nil {
		logger.Warn("[MCP] initialization had error: %v", err)
	}
	logger.Info("[MCP] module initialized (%d servers configured)", len(c.MCPConfig.MCPServers))
	return &Module{Manager: mgr}, nil
}

// ToolSpecs converts every discovered tool into a ToolSpec for the tool registry.
func (m *Module) ToolSpecs(ctx context.Context) ([]*tools.ToolSpec, error) {
	return toolSpecs(ctx, m.Manager.GetAllTools())
}

func toolSpecs(ctx context.Context, discovered []tool.BaseTool) ([]*tools.ToolSpec, error) {
	specs := make([]*tools.ToolSpec, 0, len(discovered))
	for _, t := range discovered {
		inv, ok := t.(tool.InvokableTool)
		if !ok {
			info, _ := t.Info(ctx)
			logger.Warn("[MCP] skipping non-invokable tool %v", info)
			continue
		}
		spec, err := tools.FromInvokableTool(ctx, inv)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Close releases all resources held by the MCP module.
func (m *Module) Close() error {
	if m.Manager != nil {
		return m.Manager.Close()
	}
	return nil
}
