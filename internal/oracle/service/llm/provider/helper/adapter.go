package helper

import (
	"context"
	"fmt"

	"github.com/bytedance/gg/gptr"
	einoOpenAI "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/oracle/internal/oracle/service/llm/domain/entity"
)

// NewOpenAICompatibleChatModel creates an Eino ChatModel using the OpenAI-compatible API.
// This is the common path for providers that expose an OpenAI-compatible endpoint
// (OpenAI, Azure OpenAI, and self-hosted gateways).
func NewOpenAICompatibleChatModel(ctx context.Context, conn *entity.Connection, byAzure bool, params *entity.LLMParams) (model.BaseChatModel, error) {
	if conn.Model == "" {
		return nil, fmt.Errorf("provider %s: no model configured", conn.Provider)
	}

	cfg := &einoOpenAI.ChatModelConfig{
		Model:      conn.Model,
		APIKey:     conn.APIKey,
		MaxTokens:  gptr.Of(4096),
		BaseURL:    conn.BaseURL,
		ByAzure:    byAzure,
		APIVersion: conn.APIVersion,
		HTTPClient: HTTPClient(conn.Headers),
	}

	applyParamsToOpenAIChatModelConfig(cfg, params)

	return einoOpenAI.NewChatModel(ctx, cfg)
}

func applyParamsToOpenAIChatModelConfig(cfg *einoOpenAI.ChatModelConfig, params *entity.LLMParams) {
	if params == nil {
		return
	}

	if params.Temperature != nil {
		cfg.Temperature = params.Temperature
	}
	if params.MaxTokens != 0 {
		cfg.MaxTokens = gptr.Of(params.MaxTokens)
	}
	cfg.TopP = params.TopP
}
