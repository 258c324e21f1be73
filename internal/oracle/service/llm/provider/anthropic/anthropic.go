package anthropic

import (
	"context"
	"fmt"

	einoClaude "github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/oracle/internal/oracle/service/llm/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/helper"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/spi"
	"github.com/kiosk404/oracle/internal/pkg/options"
)

const (
	Name = "anthropic"

	defaultMaxTokens = 4096
)

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

	cfg := &einoClaude.Config{
		APIKey:    conn.APIKey,
		Model:     conn.Model,
		MaxTokens: defaultMaxTokens,
	}

	if conn.BaseURL != "" {
		baseURL := conn.BaseURL
		cfg.BaseURL = &baseURL
	}

	// apply runtime LLM params
	applyParamsToClaudeConfig(cfg, params)

	return einoClaude.NewChatModel(ctx, cfg)
}

func applyParamsToClaudeConfig(conf *einoClaude.Config, params *entity.LLMParams) {
	if params == nil {
		return
	}

	if params.Temperature != nil {
		conf.Temperature = params.Temperature
	}
	if params.MaxTokens != 0 {
		conf.MaxTokens = params.MaxTokens
	}
	if params.TopP != nil {
		conf.TopP = params.TopP
	}
}

func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: "https://api.anthropic.com",
		APIKey:  "${ANTHROPIC_API_KEY}",
		Models: []options.ModelDefinition{
			{ID: "claude-sonnet-4-5", Name: "Claude Sonnet 4.5", ContextWindow: 200000, MaxTokens: 64000},
			{ID: "claude-haiku-4-5", Name: "Claude Haiku 4.5", ContextWindow: 200000, MaxTokens: 64000},
		},
	}
}
