package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// ModelOptions selects the chat model backing the turn loop.
type ModelOptions struct {
	Provider    string                     `json:"provider"    mapstructure:"provider"`
	Model       string                     `json:"model"       mapstructure:"model"`
	Timeout     time.Duration              `json:"timeout"     mapstructure:"timeout"`
	MaxTokens   int                        `json:"max-tokens"  mapstructure:"max-tokens"`
	Temperature float32                    `json:"temperature" mapstructure:"temperature"`
	Providers   map[string]*ProviderConfig `json:"providers"   mapstructure:"providers"`
}

// ProviderConfig overrides a provider plugin's defaults. Secrets may use ${ENV} references.
type ProviderConfig struct {
	BaseURL    string            `json:"base-url"    mapstructure:"base-url"`
	APIKey     string            `json:"-"           mapstructure:"api-key"`
	APIVersion string            `json:"api-version" mapstructure:"api-version"`
	Headers    map[string]string `json:"headers"     mapstructure:"headers"`
	Models     []ModelDefinition `json:"models"      mapstructure:"models"`
}

type ModelDefinition struct {
	ID            string `json:"id"             mapstructure:"id"`
	Name          string `json:"name"           mapstructure:"name"`
	ContextWindow int    `json:"context-window" mapstructure:"context-window"`
	MaxTokens     int    `json:"max-tokens"     mapstructure:"max-tokens"`
}

func NewModelOptions() *ModelOptions {
	return &ModelOptions{
		Provider:  "azure",
		Timeout:   60 * time.Second,
		Providers: make(map[string]*ProviderConfig),
	}
}

func (o *ModelOptions) Validate() []error {
	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("--model.provider is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("--model.timeout must be positive, got %s", o.Timeout))
	}
	if o.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("--model.max-tokens must not be negative, got %d", o.MaxTokens))
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		errs = append(errs, fmt.Errorf("--model.temperature must be within [0, 2], got %v", o.Temperature))
	}
	for id, p := range o.Providers {
		if p == nil {
			errs = append(errs, fmt.Errorf("provider %q: empty configuration", id))
			continue
		}
		for _, m := range p.Models {
			if m.ID == "" {
				errs = append(errs, fmt.Errorf("provider %q: model id is required", id))
			}
		}
	}
	return errs
}

func (o *ModelOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Provider, "model.provider", o.Provider,
		"Chat model provider: openai, azure, anthropic, deepseek, gemini, ollama or qwen.")
	fs.StringVar(&o.Model, "model.model", o.Model, "Model ID (or Azure deployment). Empty selects the provider default.")
	fs.DurationVar(&o.Timeout, "model.timeout", o.Timeout, "Timeout applied to every model call.")
	fs.IntVar(&o.MaxTokens, "model.max-tokens", o.MaxTokens, "Maximum completion tokens, 0 keeps the provider default.")
	fs.Float32Var(&o.Temperature, "model.temperature", o.Temperature, "Sampling temperature, 0 keeps the provider default.")
}
