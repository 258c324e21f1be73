package openai

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/oracle/internal/oracle/service/llm/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/helper"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/spi"
	"github.com/kiosk404/oracle/internal/pkg/options"
)

const Name = "openai"

var _ spi.ProviderPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ProviderPlugin {
	return &Plugin{
		BasePlugin: helper.BasePlugin{PluginName: Name},
	}
}

func (p *Plugin) BuildChatModel(ctx context.Context, conn *entity.Connection, params *entity.LLMParams) (model.BaseChatModel, error) {
	return helper.NewOpenAICompatibleChatModel(ctx, conn, false, params)
}

func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: "https://api.openai.com/v1",
		APIKey:  "${OPENAI_API_KEY}",
		Models: []options.ModelDefinition{
			{ID: "gpt-4o", Name: "GPT-4o", ContextWindow: 131072, MaxTokens: 8192},
			{ID: "gpt-4o-mini", Name: "GPT-4o Mini", ContextWindow: 131072, MaxTokens: 8192},
			{ID: "o4-mini", Name: "o4-mini", ContextWindow: 200000, MaxTokens: 100000},
		},
	}
}
