package ollama

import (
	"context"
	"fmt"

	einoOllama "github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/oracle/internal/oracle/service/llm/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/helper"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/spi"
	"github.com/kiosk404/oracle/internal/pkg/options"
)

const (
	Name = "ollama"

	defaultBaseURL = "http://127.0.0.1:11434"
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

	conf := &einoOllama.ChatModelConfig{
		BaseURL: defaultBaseURL,
		Model:   conn.Model,
		Options: &einoOllama.Options{},
	}
	if conn.BaseURL != "" {
		conf.BaseURL = conn.BaseURL
	}
	if client := helper.HTTPClient(conn.Headers); client != nil {
		conf.HTTPClient = client
	}

	applyParamsToOllamaConfig(conf, params)

	return einoOllama.NewChatModel(ctx, conf)
}

// applyParamsToOllamaConfig applies runtime LLM params to the Ollama config.
func applyParamsToOllamaConfig(conf *einoOllama.ChatModelConfig, params *entity.LLMParams) {
	if params == nil {
		return
	}

	if params.Temperature != nil {
		conf.Options.Temperature = *params.Temperature
	}
	if params.TopP != nil {
		conf.Options.TopP = *params.TopP
	}
	if params.TopK != nil {
		conf.Options.TopK = int(*params.TopK)
	}
	if params.MaxTokens != 0 {
		conf.Options.NumPredict = params.MaxTokens
	}
}

// DefaultConfig lists no models: local installations differ, so model.model or
// model.providers.ollama.models must name one.
func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: defaultBaseURL,
		APIKey:  "${OLLAMA_API_KEY}",
		Models:  []options.ModelDefinition{},
	}
}
