package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/components/tool"

	"github.com/kiosk404/oracle/pkg/logger"
)

// Manager manages the MCP server connections made at startup.
type Manager interface {
	// Initialize connects to all configured MCP servers.
	Initialize(ctx context.Context) error
	// GetAllTools returns the tools of every connected server in server name order.
	GetAllTools() []tool.BaseTool
	// ServerNames returns all configured server names.
	ServerNames() []string
	// ServerStatus returns the current status of a server.
	ServerStatus(serverName string) ServerStatus
	// Close closes all MCP server connections.
	Close() error
}

type managerImpl struct {
	mu      sync.RWMutex
	servers map[string]*MCPServer
	order   []string
}

var _ Manager = (*managerImpl)(nil)

func newManager(cfg *MCPConfig) *managerImpl {
	m := &managerImpl{
		servers: make(map[string]*MCPServer, len(cfg.MCPServers)),
		order:   cfg.ServerNames(),
	}
	for _, name := range m.order {
		m.servers[name] = NewMCPServer(name, cfg.MCPServers[name])
	}
	return m
}

// Initialize connects to all configured MCP servers concurrently.
// Individual server failures are logged but don't prevent other servers from connecting.
func (m *managerImpl) Initialize(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.servers) == 0 {
		logger.Info("[MCP] no MCP servers configured, skipping initialization")
		return nil
	}

	logger.Info("[MCP] initializing %d MCP servers...", len(m.servers))

	var wg sync.WaitGroup
	for _, srv := range m.servers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Connect(ctx); err != nil {
				logger.Warn("[MCP] server %q failed to connect: %v", srv.Name(), err)
			}
		}()
	}
	wg.Wait()

	connected := 0
	for _, srv := range m.servers {
		if srv.Status() == ServerStatusConnected {
			connected++
		}
	}
	logger.Info("[MCP] initialization complete: %d/%d servers connected", connected, len(m.servers))

	if connected == 0 {
		return fmt.Errorf("[MCP] all %d servers failed to connect", len(m.servers))
	}
	return nil
}

func (m *managerImpl) GetAllTools() []tool.BaseTool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []tool.BaseTool
	for _, name := range m.order {
		srv := m.servers[name]
		if srv.Status() == ServerStatusConnected {
			all = append(all, srv.Tools()...)
		}
	}
	return all
}

func (m *managerImpl) ServerNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, len(m.order))
	copy(result, m.order)
	return result
}

func (m *managerImpl) ServerStatus(serverName string) ServerStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	srv, ok := m.servers[serverName]
	if !ok {
		return ServerStatusDisconnected
	}
	return srv.Status()
}

func (m *managerImpl) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, srv := range m.servers {
		srv.Close()
	}
	if len(m.servers) > 0 {
		logger.Info("[MCP] all servers closed")
	}
	return nil
}
