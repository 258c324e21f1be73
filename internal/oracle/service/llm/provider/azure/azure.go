// Package azure serves Azure OpenAI deployments through the OpenAI-compatible client.
package azure

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/oracle/internal/oracle/service/llm/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/helper"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/spi"
	"github.com/kiosk404/oracle/internal/pkg/options"
)

const (
	Name = "azure"

	DefaultAPIVersion = "2024-12-01-preview"
	DefaultDeployment = "GPTO4_training"
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

// BuildChatModel treats conn.Model as the deployment name.
func (p *Plugin) BuildChatModel(ctx context.Context, conn *entity.Connection, params *entity.LLMParams) (model.BaseChatModel, error) {
	if conn.BaseURL == "" {
		return nil, fmt.Errorf("azure: endpoint is empty, set AZURE_OPENAI_ENDPOINT or model.providers.azure.base-url")
	}
	if conn.APIVersion == "" {
		c := *conn
		c.APIVersion = DefaultAPIVersion
		conn = &c
	}
	return helper.NewOpenAICompatibleChatModel(ctx, conn, true, params)
}

func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL:    "${AZURE_OPENAI_ENDPOINT}",
		APIKey:     "${AZURE_OPENAI_API_KEY}",
		APIVersion: DefaultAPIVersion,
		Models: []options.ModelDefinition{
			{ID: DefaultDeployment, Name: "o4-mini (Azure deployment)", ContextWindow: 200000, MaxTokens: 100000},
		},
	}
}
