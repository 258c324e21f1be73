// Package builtin provides the read-only lookup tools: weather, dictionary and news.
package builtin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/kiosk404/oracle/internal/oracle/service/tools"
	"github.com/kiosk404/oracle/pkg/utils/json"
)

const (
	DefaultWeatherBaseURL    = "http://api.openweathermap.org"
	DefaultDictionaryBaseURL = "https://api.dictionaryapi.dev"
	DefaultNewsBaseURL       = "https://newsapi.org"

	maxBodyBytes = 1 << 20
)

// Config holds the upstream endpoints and credentials of the builtin tools.
type Config struct {
	HTTPClient *http.Client

	WeatherBaseURL string
	WeatherAPIKey  string

	DictionaryBaseURL string

	NewsBaseURL string
	NewsAPIKey  string
}

func (c *Config) complete() *Config {
	out := *c
	if out.HTTPClient == nil {
		out.HTTPClient = http.DefaultClient
	}
	if out.WeatherBaseURL == "" {
		out.WeatherBaseURL = DefaultWeatherBaseURL
	}
	if out.DictionaryBaseURL == "" {
		out.DictionaryBaseURL = DefaultDictionaryBaseURL
	}
	if out.NewsBaseURL == "" {
		out.NewsBaseURL = DefaultNewsBaseURL
	}
	return &out
}

// Specs returns the builtin tool specs in their advertised order. Names selects a subset;
// an empty list selects every tool.
func Specs(cfg *Config, names ...string) ([]*tools.ToolSpec, error) {
	c := cfg.complete()
	all := []*tools.ToolSpec{
		weatherSpec(c),
		dictionarySpec(c),
		newsSpec(c),
	}
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]*tools.ToolSpec, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}
	selected := make([]*tools.ToolSpec, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown builtin tool %q", name)
		}
		selected = append(selected, s)
	}
	return selected, nil
}

// fetch issues a GET and returns the status code and the (size-limited) body.
func fetch(ctx context.Context, client *http.Client, rawURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "oracle/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed upstream response: %w", err)
	}
	return nil
}

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

func joinURL(base, path string, query url.Values) string {
	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
