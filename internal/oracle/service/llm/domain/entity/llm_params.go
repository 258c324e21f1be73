package entity

// LLMParams are the sampling parameters applied when a chat model is built.
// Zero values keep the provider defaults.
type LLMParams struct {
	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	TopP        *float32 `json:"top_p,omitempty"`
	TopK        *int32   `json:"top_k,omitempty"`
}

// Connection is the resolved endpoint of one model: plugin defaults merged with user
// configuration, with ${ENV} references expanded.
type Connection struct {
	Provider   string            `json:"provider"`
	BaseURL    string            `json:"base_url"`
	APIKey     string            `json:"-"`
	APIVersion string            `json:"api_version,omitempty"`
	Model      string            `json:"model"`
	Headers    map[string]string `json:"headers,omitempty"`
}
