package spi

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/oracle/internal/oracle/service/llm/domain/entity"
	"github.com/kiosk404/oracle/internal/pkg/options"
)

// ProviderPlugin is the interface for provider plugins.
type ProviderPlugin interface {
	// Name returns the name of the provider plugin.
	Name() string
	// DefaultConfig returns the default endpoint, credential reference and model list.
	DefaultConfig() *options.ProviderConfig
	// BuildChatModel builds an Eino chat model for the resolved connection.
	// params may be nil, in which case provider defaults are used.
	BuildChatModel(ctx context.Context, conn *entity.Connection, params *entity.LLMParams) (model.BaseChatModel, error)
}

// PluginFactory is a function that creates a ProviderPlugin instance.
type PluginFactory func() ProviderPlugin
