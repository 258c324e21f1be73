package mcp

import (
	"context"
	"fmt"
	"sync"

	mcpTool "github.com/cloudwego/eino-ext/components/tool/mcp"
	"github.com/cloudwego/eino/components/tool"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kiosk404/oracle/pkg/logger"
	"github.com/kiosk404/oracle/pkg/version"
)

// ServerStatus represents the connection state of an MCP server.
type ServerStatus int

const (
	ServerStatusDisconnected ServerStatus = iota
	ServerStatusConnecting
	ServerStatusConnected
	ServerStatusError
)

func (s ServerStatus) String() string {
	switch s {
	case ServerStatusDisconnected:
		return "Disconnected"
	case ServerStatusConnecting:
		return "Connecting"
	case ServerStatusConnected:
		return "Connected"
	case ServerStatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// MCPServer is one configured MCP server connection.
type MCPServer struct {
	name   string
	config *ServerConfig

	mu     sync.RWMutex
	client client.MCPClient
	tools  []tool.BaseTool
	status ServerStatus
	err    error
}

// NewMCPServer creates a disconnected server.
func NewMCPServer(name string, cfg *ServerConfig) *MCPServer {
	return &MCPServer{
		name:   name,
		status: ServerStatusDisconnected,
		config: cfg,
	}
}

func (s *MCPServer) Name() string {
	return s.name
}

// Status returns the current connection status.
func (s *MCPServer) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the last connection error, if any.
func (s *MCPServer) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Tools returns the discovered tools (empty if not connected).
func (s *MCPServer) Tools() []tool.BaseTool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]tool.BaseTool, len(s.tools))
	copy(result, s.tools)
	return result
}

// Connect establishes a connection to the MCP server and discovers tools.
func (s *MCPServer) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = ServerStatusConnecting
	s.err = nil

	cli, err := s.createClient(ctx)
	if err != nil {
		return s.fail(fmt.Errorf("[MCP] server %q: failed to create client: %w", s.name, err))
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "oracle",
		Version: version.Get().GitVersion,
	}

	if _, err := cli.Initialize(ctx, initReq); err != nil {
		_ = cli.Close()
		return s.fail(fmt.Errorf("[MCP] server %q: failed to initialize: %w", s.name, err))
	}

	tools, err := mcpTool.GetTools(ctx, &mcpTool.Config{
		Cli:          cli,
		ToolNameList: s.config.ToolFilter,
	})
	if err != nil {
		_ = cli.Close()
		return s.fail(fmt.Errorf("[MCP] server %q: failed to get tools: %w", s.name, err))
	}

	s.client = cli
	s.tools = tools
	s.status = ServerStatusConnected
	logger.Info("[MCP] server %q connected, %d tools discovered", s.name, len(tools))
	return nil
}

// fail records err. Must be called with s.mu held.
func (s *MCPServer) fail(err error) error {
	s.status = ServerStatusError
	s.err = err
	return err
}

// Close closes the current connection and releases resources.
func (s *MCPServer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		if err := s.client.Close(); err != nil {
			logger.Warn("[MCP] server %q: failed to close client: %v", s.name, err)
		}
		s.client = nil
	}

	s.tools = nil
	s.status = ServerStatusDisconnected
	s.err = nil
}

// createClient creates a transport-specific MCP client. Must be called with s.mu held.
func (s *MCPServer) createClient(ctx context.Context) (client.MCPClient, error) {
	switch s.config.Transport {
	case TransportStdio, "":
		return client.NewStdioMCPClient(s.config.Command, s.config.resolvedEnv(), s.config.Args...)
	case TransportSSE:
		cli, err := client.NewSSEMCPClient(s.config.URL, transport.WithHeaders(s.config.resolvedHeaders()))
		if err != nil {
			return nil, err
		}
		if err := cli.Start(ctx); err != nil {
			return nil, err
		}
		return cli, nil
	default:
		return nil, fmt.Errorf("unknown transport: %s", s.config.Transport)
	}
}
