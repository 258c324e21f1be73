package gemini

import (
	"context"
	"fmt"

	einoGemini "github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/kiosk404/oracle/internal/oracle/service/llm/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/helper"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/spi"
	"github.com/kiosk404/oracle/internal/pkg/options"
)

const Name = "gemini"

var _ spi.ProviderPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ProviderPlugin {
	return &Plugin{
		BasePlugin: helper.BasePlugin{PluginName: Name},
	}
}

// BuildChatModel uses Google's generative AI client rather than the OpenAI-compatible path.
func (p *Plugin) BuildChatModel(ctx context.Context, conn *entity.Connection, params *entity.LLMParams) (model.BaseChatModel, error) {
	if conn.Model == "" {
		return nil, fmt.Errorf("provider %s: no model configured", conn.Provider)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  conn.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: "https://generativelanguage.googleapis.com/",
		},
	}
	if conn.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = conn.BaseURL
	}
	if client := helper.HTTPClient(conn.Headers); client != nil {
		clientCfg.HTTPClient = client
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client for %s: %w", conn.Model, err)
	}

	cfg := &einoGemini.Config{
		Client: client,
		Model:  conn.Model,
	}

	applyParamsToGeminiConfig(cfg, params)

	return einoGemini.NewChatModel(ctx, cfg)
}

func applyParamsToGeminiConfig(conf *einoGemini.Config, params *entity.LLMParams) {
	if params == nil {
		return
	}

	conf.TopK = params.TopK
	conf.TopP = params.TopP

	if params.Temperature != nil {
		t := *params.Temperature
		conf.Temperature = &t
	}
	if params.MaxTokens != 0 {
		mt := params.MaxTokens
		conf.MaxTokens = &mt
	}
}

func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: "https://generativelanguage.googleapis.com/",
		APIKey:  "${GOOGLE_API_KEY}",
		Models: []options.ModelDefinition{
			{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", ContextWindow: 1048576, MaxTokens: 65536},
			{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro", ContextWindow: 1048576, MaxTokens: 65536},
		},
	}
}
