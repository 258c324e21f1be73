package chat

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/service"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/service/runtime/runtimetest"
	"github.com/kiosk404/oracle/internal/oracle/service/mcp"
)

type namedTool string

func (n namedTool) Info(context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{Name: string(n), Desc: "mcp tool"}, nil
}

func (n namedTool) InvokableRun(context.Context, string, ...tool.Option) (string, error) {
	return "ok", nil
}

type fakeManager struct {
	tools []tool.BaseTool
}

func (f *fakeManager) Initialize(context.Context) error { return nil }
func (f *fakeManager) GetAllTools() []tool.BaseTool { return f.tools }
func (f *fakeManager) ServerNames() []string { return []string{"fake"} }
func (f *fakeManager) ServerStatus(string) mcp.ServerStatus { return mcp.ServerStatusConnected }
func (f *fakeManager) Close() error { return nil }

func TestNew_Stores(t *testing.T) {
	dir := t.TempDir()
	for _, storeType := range []string{StoreInMemory, StoreBoltDB, StoreSQLite} {
		t.Run(storeType, func(t *testing.T) {
			cfg := &Config{
				StoreType:  storeType,
				BoltDBPath: filepath.Join(dir, "oracle.db"),
				SQLitePath: filepath.Join(dir, "oracle.sqlite"),
			}
			m, err := cfg.Complete().New(context.Background(), Dependencies{
				Model: runtimetest.NewScriptedModel().Reply("hello"),
			})
			require.NoError(t, err)
			defer m.Close()

			entries, err := m.Service.ProcessTurn(context.Background(), &service.TurnRequest{Text: "hi"})
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "hello", entries[0].Content)

			history, err := m.Store.History(context.Background(), service.DefaultThreadID)
			require.NoError(t, err)
			assert.Len(t, history, 2)
		})
	}
}

func TestNew_Tools(t *testing.T) {
	mcpModule := &mcp.Module{Manager: &fakeManager{tools: []tool.BaseTool{
		namedTool("read_file"),
		namedTool("weather_tool"),
	}}}

	cfg := &Config{EnabledTools: []string{"weather_tool", "news_tool"}}
	m, err := cfg.Complete().New(context.Background(), Dependencies{
		Model: runtimetest.NewScriptedModel(),
		MCP:   mcpModule,
	})
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, []string{"weather_tool", "news_tool", "read_file"}, m.Tools.Names())
}

func TestNew_Errors(t *testing.T) {
	_, err := (&Config{}).Complete().New(context.Background(), Dependencies{})
	assert.Error(t, err)

	_, err = (&Config{StoreType: "postgres"}).Complete().New(context.Background(), Dependencies{
		Model: runtimetest.NewScriptedModel(),
	})
	assert.ErrorContains(t, err, "unknown store type")

	_, err = (&Config{EnabledTools: []string{"stock_tool"}}).Complete().New(context.Background(), Dependencies{
		Model: runtimetest.NewScriptedModel(),
	})
	assert.ErrorContains(t, err, "stock_tool")
}
