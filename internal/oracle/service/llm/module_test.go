package llm

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/helper"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/spi"
	"github.com/kiosk404/oracle/internal/pkg/options"
)

type plainModel struct{}

func (plainModel) Generate(context.Context, []*schema.Message, ...model.Option) (*schema.Message, error) {
	return schema.AssistantMessage("ok", nil), nil
}

func (plainModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage("ok", nil)}), nil
}

type toolModel struct {
	plainModel
}

func (m toolModel) WithTools([]*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

type fakePlugin struct {
	helper.BasePlugin
	toolCapable bool

	gotConn   *entity.Connection
	gotParams *entity.LLMParams
}

func (p *fakePlugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: "http://fake.local",
		APIKey:  "${ORACLE_FAKE_KEY}",
		Models: []options.ModelDefinition{
			{ID: "fake-large", Name: "Fake Large"},
			{ID: "fake-small"},
		},
	}
}

func (p *fakePlugin) BuildChatModel(_ context.Context, conn *entity.Connection, params *entity.LLMParams) (model.BaseChatModel, error) {
	p.gotConn = conn
	p.gotParams = params
	if p.toolCapable {
		return toolModel{}, nil
	}
	return plainModel{}, nil
}

func newFakeRegistry(p *fakePlugin) *provider.Registry {
	r := provider.NewRegistry()
	r.MustRegister(p.PluginName, func() spi.ProviderPlugin { return p })
	return r
}

func TestNew(t *testing.T) {
	t.Setenv("ORACLE_FAKE_KEY", "k")
	p := &fakePlugin{BasePlugin: helper.BasePlugin{PluginName: "fake"}, toolCapable: true}

	opts := options.NewModelOptions()
	opts.Provider = "fake"
	opts.Temperature = 0.2
	opts.MaxTokens = 512

	m, err := (&Config{ModelOptions: opts, OutOfTreeRegistry: newFakeRegistry(p)}).Complete().New(context.Background())
	require.NoError(t, err)
	require.NotNil(t, m.ChatModel)

	assert.Equal(t, "fake-large", m.Connection.Model)
	assert.Equal(t, "k", p.gotConn.APIKey)
	assert.Equal(t, "http://fake.local", p.gotConn.BaseURL)
	assert.Equal(t, 512, p.gotParams.MaxTokens)
	require.NotNil(t, p.gotParams.Temperature)
	assert.InDelta(t, 0.2, *p.gotParams.Temperature, 1e-6)

	models := m.Models()
	require.Len(t, models, 2)
	assert.True(t, models[0].Active)
	assert.Equal(t, "Fake Large", models[0].Name)
	assert.Equal(t, "fake-small", models[1].Name)
}

func TestNew_ProviderOverride(t *testing.T) {
	p := &fakePlugin{BasePlugin: helper.BasePlugin{PluginName: "fake"}, toolCapable: true}

	opts := options.NewModelOptions()
	opts.Provider = "fake"
	opts.Model = "pinned"
	opts.Providers["fake"] = &options.ProviderConfig{BaseURL: "http://override.local", APIKey: "literal"}

	m, err := (&Config{ModelOptions: opts, OutOfTreeRegistry: newFakeRegistry(p)}).Complete().New(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pinned", p.gotConn.Model)
	assert.Equal(t, "http://override.local", p.gotConn.BaseURL)
	assert.Equal(t, "literal", p.gotConn.APIKey)
	assert.Nil(t, p.gotParams.Temperature)

	models := m.Models()
	require.Len(t, models, 3)
	assert.Equal(t, "pinned", models[2].ID)
	assert.True(t, models[2].Active)
}

func TestNew_Errors(t *testing.T) {
	opts := options.NewModelOptions()
	opts.Provider = "nope"
	_, err := (&Config{ModelOptions: opts}).Complete().New(context.Background())
	assert.ErrorIs(t, err, errno.ErrModelClient)

	p := &fakePlugin{BasePlugin: helper.BasePlugin{PluginName: "fake"}}
	opts = options.NewModelOptions()
	opts.Provider = "fake"
	_, err = (&Config{ModelOptions: opts, OutOfTreeRegistry: newFakeRegistry(p)}).Complete().New(context.Background())
	assert.ErrorIs(t, err, errno.ErrModelNotToolCapable)
}
