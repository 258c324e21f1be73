package builtin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/tools"
)

func newExecutor(t *testing.T, cfg *Config) *tools.Executor {
	t.Helper()
	specs, err := Specs(cfg)
	require.NoError(t, err)
	r, err := tools.NewRegistry(specs...)
	require.NoError(t, err)
	return tools.NewExecutor(r, 2*time.Second)
}

func call(e *tools.Executor, name, args string) *entity.ToolResult {
	return e.Execute(context.Background(), &entity.ToolCall{ID: "call_1", Name: name, Arguments: args})
}

func TestSpecs(t *testing.T) {
	all, err := Specs(&Config{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, WeatherToolName, all[0].Name)
	assert.Equal(t, DictionaryToolName, all[1].Name)
	assert.Equal(t, NewsToolName, all[2].Name)

	some, err := Specs(&Config{}, NewsToolName)
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, NewsToolName, some[0].Name)

	_, err = Specs(&Config{}, "stock_tool")
	assert.Error(t, err)
}

func TestWeatherTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "k", r.URL.Query().Get("appid"))
		switch r.URL.Query().Get("q") {
		case "Paris,FR":
			_, _ = w.Write([]byte(`{"cod":200,"weather":[{"description":"clear sky"}],"main":{"temp":18.5,"humidity":40}}`))
		case "Atlantis,XX":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
		default:
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer srv.Close()

	e := newExecutor(t, &Config{WeatherBaseURL: srv.URL, WeatherAPIKey: "k"})

	res := call(e, WeatherToolName, `{"location":"Paris,FR"}`)
	require.False(t, res.Failed(), res.Content)
	assert.Equal(t, "Weather in Paris,FR: Clear sky, 18.5°C, Humidity: 40%", res.Content)

	res = call(e, WeatherToolName, `{"location":"Atlantis,XX"}`)
	require.True(t, res.Failed())
	assert.Equal(t, "WEATHER_ERROR: city not found", res.Content)
	assert.Equal(t, entity.ToolErrorExecution, res.Error.Kind)

	res = call(e, WeatherToolName, `{"location":"Oslo,NO"}`)
	require.True(t, res.Failed())
	assert.Contains(t, res.Content, "malformed upstream response")

	res = call(e, WeatherToolName, `{"location":"Paris"}`)
	require.True(t, res.Failed())
	assert.Equal(t, entity.ToolErrorInvalidArguments, res.Error.Kind)
	assert.Contains(t, res.Content, "WEATHER_ERROR:")
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "", capitalize(""))
	assert.Equal(t, "Clear sky", capitalize("clear SKY"))
	assert.Equal(t, "Éclaircies", capitalize("éclaircies"))
	assert.Equal(t, "Ясно", capitalize("ясно"))
}

func TestDictionaryTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/entries/en/serendipity":
			_, _ = w.Write([]byte(`[{"meanings":[{"definitions":[{"definition":"A happy accident."}]}]}]`))
		case "/api/v2/entries/en/busy":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"title":"No Definitions Found"}`))
		}
	}))
	defer srv.Close()

	e := newExecutor(t, &Config{DictionaryBaseURL: srv.URL})

	res := call(e, DictionaryToolName, `{"word":"serendipity"}`)
	require.False(t, res.Failed())
	assert.Equal(t, "Definition of serendipity: A happy accident.", res.Content)

	res = call(e, DictionaryToolName, `{"word":"qwzx"}`)
	require.False(t, res.Failed())
	assert.Equal(t, "No definition found.", res.Content)

	res = call(e, DictionaryToolName, `{"word":"busy"}`)
	require.True(t, res.Failed())
	assert.Equal(t, "DICTIONARY_ERROR: dictionary service returned status 503", res.Content)
	assert.Equal(t, entity.ToolErrorExecution, res.Error.Kind)

	res = call(e, DictionaryToolName, `{"word":"two words"}`)
	require.True(t, res.Failed())
	assert.Equal(t, entity.ToolErrorInvalidArguments, res.Error.Kind)
}

func TestNewsTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/top-headlines", r.URL.Path)
		switch r.URL.Query().Get("category") {
		case "technology":
			_, _ = w.Write([]byte(`{"status":"ok","articles":[{"title":"A"},{"title":"B"},{"title":"C"},{"title":"D"}]}`))
		case "general":
			_, _ = w.Write([]byte(`{"status":"ok","articles":[{"title":"Only"}]}`))
		case "health":
			_, _ = w.Write([]byte(`{"status":"ok","articles":[]}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","message":"Your API key is invalid."}`))
		}
	}))
	defer srv.Close()

	e := newExecutor(t, &Config{NewsBaseURL: srv.URL, NewsAPIKey: "k"})

	res := call(e, NewsToolName, `{"topic":"technology"}`)
	require.False(t, res.Failed())
	assert.Equal(t, "Latest technology news:\n• A\n• B\n• C", res.Content)

	res = call(e, NewsToolName, `{}`)
	require.False(t, res.Failed())
	assert.Equal(t, "Latest general news:\n• Only", res.Content)

	res = call(e, NewsToolName, `{"topic":"health"}`)
	require.True(t, res.Failed())
	assert.Equal(t, "NEWS_ERROR: No articles found", res.Content)

	res = call(e, NewsToolName, `{"topic":"business"}`)
	require.True(t, res.Failed())
	assert.Equal(t, "NEWS_ERROR: Your API key is invalid.", res.Content)

	res = call(e, NewsToolName, `{"topic":"Technology"}`)
	require.False(t, res.Failed(), res.Content)
	assert.Equal(t, "Latest technology news:\n• A\n• B\n• C", res.Content)

	res = call(e, NewsToolName, `{"topic":"sports"}`)
	require.False(t, res.Failed(), res.Content)
	assert.Equal(t, "Latest general news:\n• Only", res.Content)

	res = call(e, NewsToolName, `{"topic":42}`)
	require.True(t, res.Failed())
	assert.Equal(t, entity.ToolErrorInvalidArguments, res.Error.Kind)
}
