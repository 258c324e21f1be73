package llm

import (
	"context"
	"fmt"

	"github.com/bytedance/gg/gptr"
	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/helper"
	"github.com/kiosk404/oracle/internal/pkg/options"
	"github.com/kiosk404/oracle/pkg/logger"
)

// Config holds the configuration for the LLM module.
type Config struct {
	ModelOptions *options.ModelOptions

	// OutOfTreeRegistry allows registering additional provider plugins
	// beyond the built-in ones. If nil, only in-tree providers are available.
	OutOfTreeRegistry *provider.Registry
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.ModelOptions == nil {
		c.ModelOptions = options.NewModelOptions()
	}
	return CompletedConfig{c}
}

// Module is the top-level LLM module. It owns the tool-calling chat model used by
// every turn.
type Module struct {
	Registry   *provider.Registry
	ChatModel  model.ToolCallingChatModel
	Connection *entity.Connection

	models []options.ModelDefinition
}

// New creates and initializes the LLM module from a completed config.
//
// Initialization flow:
// 1. Build the in-tree provider Registry and merge out-of-tree providers
// 2. Resolve the selected provider's connection (defaults + user config + env)
// 3. Build the chat model and require tool-calling support
func (c CompletedConfig) New(ctx context.Context) (*Module, error) {
	logger.Info("[LLM] creating LLM module...")

	registry := provider.NewInTreeRegistry()
	if c.OutOfTreeRegistry != nil {
		if err := registry.Merge(c.OutOfTreeRegistry); err != nil {
			return nil, fmt.Errorf("failed to merge out-of-tree providers: %w", err)
		}
	}
	logger.Info("[LLM] provider registry initialized with %d plugins", registry.Len())

	opts := c.ModelOptions
	factory, err := registry.Get(opts.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errno.ErrModelClient, err)
	}
	plugin := factory()

	merged := helper.MergeProviderConfig(plugin.DefaultConfig(), opts.Providers[opts.Provider])
	conn := helper.ResolveConnection(opts.Provider, merged, nil, opts.Model)
	if conn.APIKey == "" {
		logger.Warn("[LLM] provider %s has no API key configured", conn.Provider)
	}

	base, err := plugin.BuildChatModel(ctx, conn, c.params())
	if err != nil {
		return nil, fmt.Errorf("%w: build %s/%s: %v", errno.ErrModelClient, conn.Provider, conn.Model, err)
	}
	chatModel, ok := base.(model.ToolCallingChatModel)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", errno.ErrModelNotToolCapable, conn.Provider, conn.Model)
	}

	logger.Info("[LLM] using model %s/%s", conn.Provider, conn.Model)

	return &Module{
		Registry:   registry,
		ChatModel:  chatModel,
		Connection: conn,
		models:     merged.Models,
	}, nil
}

func (c CompletedConfig) params() *entity.LLMParams {
	params := &entity.LLMParams{MaxTokens: c.ModelOptions.MaxTokens}
	if c.ModelOptions.Temperature > 0 {
		params.Temperature = gptr.Of(c.ModelOptions.Temperature)
	}
	return params
}

// Models lists the configured provider's models. The active model is always included.
func (m *Module) Models() []*entity.ModelInfo {
	out := make([]*entity.ModelInfo, 0, len(m.models)+1)
	seen := false
	for _, def := range m.models {
		name := def.Name
		if name == "" {
			name = def.ID
		}
		active := def.ID == m.Connection.Model
		seen = seen || active
		out = append(out, &entity.ModelInfo{
			ID:            def.ID,
			Name:          name,
			Provider:      m.Connection.Provider,
			ContextWindow: def.ContextWindow,
			MaxTokens:     def.MaxTokens,
			Active:        active,
		})
	}
	if !seen {
		out = append(out, &entity.ModelInfo{
			ID:       m.Connection.Model,
			Name:     m.Connection.Model,
			Provider: m.Connection.Provider,
			Active:   true,
		})
	}
	return out
}
