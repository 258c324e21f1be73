package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMCPConfig(t *testing.T) {
	cfg, err := LoadMCPConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.MCPServers)

	cfg, err = LoadMCPConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, cfg.MCPServers)

	path := filepath.Join(t.TempDir(), "mcp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"mcpServers": {
			"files": {"command": "npx", "args": ["-y", "server-filesystem"], "env": ["TOKEN=${ORACLE_MCP_TOKEN}"]},
			"remote": {"transport": "sse", "url": "http://localhost:8080/sse"}
		}
	}`), 0o600))

	cfg, err = LoadMCPConfig(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Validate())
	assert.Equal(t, []string{"files", "remote"}, cfg.ServerNames())
	assert.Equal(t, TransportStdio, cfg.MCPServers["files"].Transport)

	t.Setenv("ORACLE_MCP_TOKEN", "abc")
	assert.Equal(t, []string{"TOKEN=abc"}, cfg.MCPServers["files"].resolvedEnv())

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))
	_, err = LoadMCPConfig(path)
	assert.Error(t, err)
}

func TestMCPConfig_Validate(t *testing.T) {
	cfg := &MCPConfig{MCPServers: map[string]*ServerConfig{
		"a": {Transport: "stdio"},
		"b": {Transport: "sse"},
		"c": {Transport: "websocket"},
		"d": nil,
	}}
	assert.Len(t, cfg.Validate(), 4)
}

func TestNew_NoServers(t *testing.T) {
	m, err := (&Config{}).Complete().New(context.Background())
	require.NoError(t, err)
	specs, err := m.ToolSpecs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, specs)
	assert.NoError(t, m.Close())
}

type fakeBaseTool struct{ name string }

func (f fakeBaseTool) Info(context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{Name: f.name}, nil
}

type fakeInvokableTool struct{ fakeBaseTool }

func (f fakeInvokableTool) InvokableRun(context.Context, string, ...tool.Option) (string, error) {
	return "ok", nil
}

func TestToolSpecs(t *testing.T) {
	specs, err := toolSpecs(context.Background(), []tool.BaseTool{
		fakeInvokableTool{fakeBaseTool{name: "read_file"}},
		fakeBaseTool{name: "stream_only"},
		fakeInvokableTool{fakeBaseTool{name: "list_dir"}},
	})
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "read_file", specs[0].Name)
	assert.Equal(t, "list_dir", specs[1].Name)
}
