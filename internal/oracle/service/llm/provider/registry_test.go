package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/openai"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/spi"
)

func TestNewInTreeRegistry(t *testing.T) {
	r := NewInTreeRegistry()
	assert.Equal(t, []string{"anthropic", "azure", "deepseek", "gemini", "ollama", "openai", "qwen"}, r.List())

	for _, name := range r.List() {
		factory, err := r.Get(name)
		require.NoError(t, err)
		plugin := factory()
		assert.Equal(t, name, plugin.Name())
		assert.NotNil(t, plugin.DefaultConfig())
	}

	_, err := r.Get("mistral")
	assert.Error(t, err)
}

func TestRegistry_Merge(t *testing.T) {
	r := NewInTreeRegistry()

	other := NewRegistry()
	other.MustRegister("custom", func() spi.ProviderPlugin { return openai.New() })
	require.NoError(t, r.Merge(other))
	assert.Equal(t, 8, r.Len())

	clash := NewRegistry()
	clash.MustRegister("extra", func() spi.ProviderPlugin { return openai.New() })
	clash.MustRegister("openai", func() spi.ProviderPlugin { return openai.New() })
	assert.Error(t, r.Merge(clash))
	_, err := r.Get("extra")
	assert.Error(t, err, "a failed merge registers nothing")

	assert.NoError(t, r.Merge(r))
	assert.Panics(t, func() { r.MustRegister("custom", func() spi.ProviderPlugin { return openai.New() }) })
}
