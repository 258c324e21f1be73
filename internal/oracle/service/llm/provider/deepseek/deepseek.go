package deepseek

import (
	"context"
	"fmt"

	einoDeepseek "github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/oracle/internal/oracle/service/llm/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/helper"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/spi"
	"github.com/kiosk404/oracle/internal/pkg/options"
)

const Name = "deepseek"

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
	if conn.Model == "" {
		return nil, fmt.Errorf("provider %s: no model configured", conn.Provider)
	}

	conf := &einoDeepseek.ChatModelConfig{
		APIKey:             conn.APIKey,
		Model:              conn.Model,
		Temperature:        0.7,
		BaseURL:            conn.BaseURL,
		ResponseFormatType: einoDeepseek.ResponseFormatTypeText,
	}

	applyParamsToDeepseekConfig(conf, params)

	return einoDeepseek.NewChatModel(ctx, conf)
}

// applyParamsToDeepseekConfig maps LLMParams to Deepseek ChatModelConfig.
func applyParamsToDeepseekConfig(conf *einoDeepseek.ChatModelConfig, params *entity.LLMParams) {
	if params == nil {
		return
	}

	if params.Temperature != nil {
		conf.Temperature = *params.Temperature
	}
	if params.MaxTokens != 0 {
		conf.MaxTokens = params.MaxTokens
	}
}

func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: "https://api.deepseek.com/v1",
		APIKey:  "${DEEPSEEK_API_KEY}",
		Models: []options.ModelDefinition{
			{ID: "deepseek-chat", Name: "Deepseek V3", ContextWindow: 131072, MaxTokens: 8192},
		},
	}
}
