package qwen

import (
	"context"
	"fmt"

	"github.com/bytedance/gg/gptr"
	einoOpenAI "github.com/cloudwego/eino-ext/components/model/openai"
	einoQwen "github.com/cloudwego/eino-ext/components/model/qwen"
	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/oracle/internal/oracle/service/llm/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/helper"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/spi"
	"github.com/kiosk404/oracle/internal/pkg/options"
)

const Name = "qwen"

var _ spi.ProviderPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ProviderPlugin {
	return &Plugin{
		BasePlugin: helper.BasePlugin{PluginName: Name},
	}
}

// BuildChatModel uses the dedicated DashScope client.
func (p *Plugin) BuildChatModel(ctx context.Context, conn *entity.Connection, params *entity.LLMParams) (model.BaseChatModel, error) {
	if conn.Model == "" {
		return nil, fmt.Errorf("provider %s: no model configured", conn.Provider)
	}

	conf := &einoQwen.ChatModelConfig{
		APIKey:      conn.APIKey,
		Model:       conn.Model,
		BaseURL:     conn.BaseURL,
		Temperature: gptr.Of(float32(0.7)),
		ResponseFormat: &einoOpenAI.ChatCompletionResponseFormat{
			Type: "text",
		},
		HTTPClient: helper.HTTPClient(conn.Headers),
	}

	applyParamsToQwenConfig(conf, params)

	return einoQwen.NewChatModel(ctx, conf)
}

// applyParamsToQwenConfig maps LLMParams to Qwen ChatModelConfig.
func applyParamsToQwenConfig(conf *einoQwen.ChatModelConfig, params *entity.LLMParams) {
	if params == nil {
		return
	}

	conf.TopP = params.TopP

	if params.Temperature != nil {
		conf.Temperature = gptr.Of(*params.Temperature)
	}
	if params.MaxTokens != 0 {
		conf.MaxTokens = gptr.Of(params.MaxTokens)
	}
}

func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1",
		APIKey:  "${DASHSCOPE_API_KEY}",
		Models: []options.ModelDefinition{
			{ID: "qwen-plus", Name: "Qwen Plus", ContextWindow: 131072, MaxTokens: 8192},
			{ID: "qwen-turbo", Name: "Qwen Turbo", ContextWindow: 131072, MaxTokens: 8192},
			{ID: "qwen-max", Name: "Qwen Max", ContextWindow: 131072, MaxTokens: 8192},
		},
	}
}
