package builtin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kiosk404/oracle/internal/oracle/service/tools"
	"github.com/kiosk404/oracle/pkg/utils/json"
)

const WeatherToolName = "weather_tool"

type weatherResponse struct {
	// Cod is a number on success and a string on most errors.
	Cod     json.RawMessage `json:"cod"`
	Message string          `json:"message"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
}

func weatherSpec(c *Config) *tools.ToolSpec {
	return &tools.ToolSpec{
		Name: WeatherToolName,
		Description: "STRICT WEATHER TOOL - Only for current weather conditions. " +
			"Requires exact location format 'City,CountryCode' (for example 'Paris,FR'). " +
			"Do not use it for forecasts, climate or historical weather.",
		Parameters: []tools.ParameterDef{
			{
				Name:        "location",
				Type:        tools.TypeString,
				Description: "City and ISO 3166 country code, formatted 'City,CountryCode'.",
				Required:    true,
				Pattern:     `^[^,]+,\s*[A-Za-z]{2}$`,
			},
		},
		ErrorMarker: "WEATHER_ERROR",
		Action: func(ctx context.Context, args map[string]any) (string, error) {
			return lookupWeather(ctx, c, stringArg(args, "location"))
		},
	}
}

func lookupWeather(ctx context.Context, c *Config, location string) (string, error) {
	query := url.Values{}
	query.Set("q", location)
	query.Set("appid", c.WeatherAPIKey)
	query.Set("units", "metric")

	_, body, err := fetch(ctx, c.HTTPClient, joinURL(c.WeatherBaseURL, "/data/2.5/weather", query))
	if err != nil {
		return "", err
	}
	var resp weatherResponse
	if err := decode(body, &resp); err != nil {
		return "", err
	}
	if strings.Trim(string(resp.Cod), `"`) != "200" {
		msg := resp.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return "", errors.New(msg)
	}
	if len(resp.Weather) == 0 {
		return "", errors.New("malformed upstream response: no weather conditions")
	}

	return fmt.Sprintf("Weather in %s: %s, %v°C, Humidity: %v%%",
		location, capitalize(resp.Weather[0].Description), resp.Main.Temp, resp.Main.Humidity), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
