package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kiosk404/oracle/internal/oracle/service/tools/builtin"
)

// ToolsOptions configures the builtin tools and the tool executor.
type ToolsOptions struct {
	Timeout  time.Duration `json:"timeout"  mapstructure:"timeout"`
	Parallel bool          `json:"parallel" mapstructure:"parallel"`
	// Enabled selects builtin tools by name; empty enables all of them.
	Enabled []string `json:"enabled" mapstructure:"enabled"`

	WeatherBaseURL    string `json:"weather-base-url"    mapstructure:"weather-base-url"`
	WeatherAPIKey     string `json:"-"                   mapstructure:"weather-api-key"`
	DictionaryBaseURL string `json:"dictionary-base-url" mapstructure:"dictionary-base-url"`
	NewsBaseURL       string `json:"news-base-url"       mapstructure:"news-base-url"`
	NewsAPIKey        string `json:"-"                   mapstructure:"news-api-key"`
}

func NewToolsOptions() *ToolsOptions {
	return &ToolsOptions{
		Timeout:           10 * time.Second,
		WeatherBaseURL:    builtin.DefaultWeatherBaseURL,
		WeatherAPIKey:     "${OPENWEATHER_API_KEY}",
		DictionaryBaseURL: builtin.DefaultDictionaryBaseURL,
		NewsBaseURL:       builtin.DefaultNewsBaseURL,
		NewsAPIKey:        "${NEWSAPI_API_KEY}",
	}
}

func (o *ToolsOptions) Validate() []error {
	var errs []error
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("--tools.timeout must be positive, got %s", o.Timeout))
	}
	known := map[string]bool{"weather_tool": true, "dictionary_tool": true, "news_tool": true}
	for _, name := range o.Enabled {
		if !known[name] {
			errs = append(errs, fmt.Errorf("--tools.enabled: unknown tool %q", name))
		}
	}
	return errs
}

func (o *ToolsOptions) AddFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&o.Timeout, "tools.timeout", o.Timeout, "Timeout applied to every tool call.")
	fs.BoolVar(&o.Parallel, "tools.parallel", o.Parallel, ""+
		"Run the tool calls of one model reply concurrently. Results keep the call order.")
	fs.StringSliceVar(&o.Enabled, "tools.enabled", o.Enabled, "Builtin tools to enable, comma separated. Empty enables all.")
	fs.StringVar(&o.WeatherBaseURL, "tools.weather-base-url", o.WeatherBaseURL, "OpenWeatherMap API base URL.")
	fs.StringVar(&o.WeatherAPIKey, "tools.weather-api-key", o.WeatherAPIKey, "OpenWeatherMap API key, ${ENV} references are resolved.")
	fs.StringVar(&o.DictionaryBaseURL, "tools.dictionary-base-url", o.DictionaryBaseURL, "Dictionary API base URL.")
	fs.StringVar(&o.NewsBaseURL, "tools.news-base-url", o.NewsBaseURL, "NewsAPI base URL.")
	fs.StringVar(&o.NewsAPIKey, "tools.news-api-key", o.NewsAPIKey, "NewsAPI key, ${ENV} references are resolved.")
}
