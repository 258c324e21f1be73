package helper

import (
	"net/http"
	"os"
	"strings"

	"github.com/kiosk404/oracle/internal/oracle/service/llm/domain/entity"
	"github.com/kiosk404/oracle/internal/pkg/options"
)

type BasePlugin struct {
	PluginName string
}

func (b *BasePlugin) Name() string {
	return b.PluginName
}

// DefaultConfig returns the default configuration for the provider.
func (b *BasePlugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{}
}

// ResolveEnvValue resolves "${ENV_VAR}" references in a string.
func ResolveEnvValue(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envKey := s[2 : len(s)-1]
		return os.Getenv(envKey)
	}
	return s
}

// ResolveConnection merges the user override onto the plugin defaults. modelID wins over
// both model lists; otherwise the first configured model is used.
func ResolveConnection(provider string, defaults, override *options.ProviderConfig, modelID string) *entity.Connection {
	merged := MergeProviderConfig(defaults, override)

	if modelID == "" && len(merged.Models) > 0 {
		modelID = merged.Models[0].ID
	}

	headers := make(map[string]string, len(merged.Headers))
	for k, v := range merged.Headers {
		headers[k] = ResolveEnvValue(v)
	}

	return &entity.Connection{
		Provider:   provider,
		BaseURL:    ResolveEnvValue(merged.BaseURL),
		APIKey:     ResolveEnvValue(merged.APIKey),
		APIVersion: merged.APIVersion,
		Model:      modelID,
		Headers:    headers,
	}
}

// MergeProviderConfig overlays non-empty override fields on defaults. A non-empty override
// model list replaces the default list.
func MergeProviderConfig(defaults, override *options.ProviderConfig) *options.ProviderConfig {
	out := &options.ProviderConfig{}
	if defaults != nil {
		*out = *defaults
	}
	if override == nil {
		return out
	}
	if override.BaseURL != "" {
		out.BaseURL = override.BaseURL
	}
	if override.APIKey != "" {
		out.APIKey = override.APIKey
	}
	if override.APIVersion != "" {
		out.APIVersion = override.APIVersion
	}
	if len(override.Headers) > 0 {
		headers := make(map[string]string, len(out.Headers)+len(override.Headers))
		for k, v := range out.Headers {
			headers[k] = v
		}
		for k, v := range override.Headers {
			headers[k] = v
		}
		out.Headers = headers
	}
	if len(override.Models) > 0 {
		out.Models = override.Models
	}
	return out
}

// HTTPClient returns a client that adds headers to every request, or nil when there are none.
func HTTPClient(headers map[string]string) *http.Client {
	if len(headers) == 0 {
		return nil
	}
	return &http.Client{Transport: &headerTransport{base: http.DefaultTransport, headers: headers}}
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
