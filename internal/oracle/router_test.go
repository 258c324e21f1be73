package oracle

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/oracle/internal/oracle/handler/middleware"
	"github.com/kiosk404/oracle/internal/oracle/service/chat"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/service/runtime"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/service/runtime/runtimetest"
	llmEntity "github.com/kiosk404/oracle/internal/oracle/service/llm/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/tools/builtin"
	"github.com/kiosk404/oracle/pkg/utils/json"
)

type staticModels []*llmEntity.ModelInfo

func (s staticModels) Models() []*llmEntity.ModelInfo { return s }

func newTestEngine(t *testing.T, model runtime.ModelClient, auth *middleware.AuthConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// Unreachable upstreams make every builtin tool call fail fast.
	cfg := &chat.Config{
		Builtin: builtin.Config{
			WeatherBaseURL: "http://127.0.0.1:1",
			NewsBaseURL:    "http://127.0.0.1:1",
		},
		EnabledTools: []string{"weather_tool", "news_tool"},
	}
	m, err := cfg.Complete().New(context.Background(), chat.Dependencies{Model: model})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	g := gin.New()
	initRouter(g, &routerDeps{
		chatService:     m.Service,
		tools:           m.Tools,
		models:          staticModels{{ID: "GPTO4_training", Provider: "azure", Active: true}},
		authConfig:      auth,
		defaultThreadID: "demo-thread",
		defaultModel:    "GPTO4_training",
	})
	return g
}

func do(g *gin.Engine, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestTurns(t *testing.T) {
	model := runtimetest.NewScriptedModel().Reply("Hello there.")
	g := newTestEngine(t, model, nil)

	w := do(g, http.MethodPost, "/v1/turns", `{"message":"hi","thread_id":"t1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ThreadID string              `json:"thread_id"`
		Messages []*entity.ChatEntry `json:"messages"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "t1", resp.ThreadID)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "Hello there.", resp.Messages[0].Content)

	w = do(g, http.MethodGet, "/v1/threads/t1/messages", "")
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Data []map[string]any `json:"data"`
	}
	decode(t, w, &history)
	assert.Len(t, history.Data, 2)
}

func TestTurns_Errors(t *testing.T) {
	g := newTestEngine(t, runtimetest.NewScriptedModel().Fail(errors.New("503 upstream")), nil)

	w := do(g, http.MethodPost, "/v1/turns", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(g, http.MethodPost, "/v1/turns", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(g, http.MethodPost, "/v1/turns", `{"message":"hi"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "503 upstream")

	g = newTestEngine(t, runtimetest.LoopingModel("weather_tool"), nil)
	w = do(g, http.MethodPost, "/v1/turns", `{"message":"loop","max_round_trips":2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestTurnsStream(t *testing.T) {
	model := runtimetest.NewScriptedModel().
		Call(&entity.ToolCall{ID: "call_1", Name: "weather_tool", Arguments: `{"location":"Paris,FR"}`}).
		Reply("Sunny.")
	g := newTestEngine(t, model, nil)

	w := do(g, http.MethodPost, "/v1/turns/stream", `{"message":"weather?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")

	var events []string
	sc := bufio.NewScanner(strings.NewReader(w.Body.String()))
	for sc.Scan() {
		if name, ok := strings.CutPrefix(sc.Text(), "event:"); ok {
			events = append(events, strings.TrimSpace(name))
		}
	}
	assert.Equal(t, []string{"tool_call_start", "tool_call_end", "message", "done"}, events)
	assert.Contains(t, w.Body.String(), "Sunny.")
}

func TestThreads(t *testing.T) {
	g := newTestEngine(t, runtimetest.NewScriptedModel().Reply("a").Reply("b"), nil)
	do(g, http.MethodPost, "/v1/turns", `{"message":"1","thread_id":"x"}`)
	do(g, http.MethodPost, "/v1/turns", `{"message":"2"}`)

	w := do(g, http.MethodGet, "/v1/threads", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []struct {
			ThreadID     string `json:"thread_id"`
			MessageCount int    `json:"message_count"`
		} `json:"data"`
	}
	decode(t, w, &list)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "demo-thread", list.Data[0].ThreadID)
	assert.Equal(t, 2, list.Data[0].MessageCount)

	assert.Equal(t, http.StatusOK, do(g, http.MethodDelete, "/v1/threads/x", "").Code)
	assert.Equal(t, http.StatusNotFound, do(g, http.MethodDelete, "/v1/threads/x", "").Code)
}

func TestTools(t *testing.T) {
	g := newTestEngine(t, runtimetest.NewScriptedModel(), nil)

	w := do(g, http.MethodGet, "/v1/tools", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []struct {
			Name       string `json:"name"`
			Marker     string `json:"error_marker"`
			Parameters []struct {
				Name string   `json:"name"`
				Enum []string `json:"enum"`
			} `json:"parameters"`
		} `json:"data"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "weather_tool", resp.Data[0].Name)
	assert.Equal(t, "WEATHER_ERROR", resp.Data[0].Marker)
	assert.Equal(t, "news_tool", resp.Data[1].Name)
	require.Len(t, resp.Data[1].Parameters, 1)
	assert.Contains(t, resp.Data[1].Parameters[0].Enum, "technology")
}

func TestChatCompletions(t *testing.T) {
	model := runtimetest.NewScriptedModel().Reply("Your name is Ada.")
	g := newTestEngine(t, model, nil)

	body := `{"model":"oracle","messages":[
		{"role":"system","content":"be brief"},
		{"role":"user","content":"I am Ada."},
		{"role":"assistant","content":"Hi Ada."},
		{"role":"user","content":"Who am I?"}]}`
	w := do(g, http.MethodPost, "/v1/chat/completions", body, "X-Session-Key", "ada")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ada", w.Header().Get("X-Session-Key"))

	var resp struct {
		Object  string `json:"object"`
		Choices []struct {
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "chat.completion", resp.Object)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "assistant", resp.Choices[0].Message.Role)
	assert.Equal(t, "Your name is Ada.", resp.Choices[0].Message.Content)

	// seeded history plus the new user message reached the model
	require.Len(t, model.Calls(), 1)
	assert.Len(t, model.Calls()[0], 3)

	w = do(g, http.MethodPost, "/v1/chat/completions", `{"messages":[{"role":"system","content":"x"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestModels(t *testing.T) {
	g := newTestEngine(t, runtimetest.NewScriptedModel(), nil)

	w := do(g, http.MethodGet, "/v1/models", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"GPTO4_training"`)
	assert.Contains(t, w.Body.String(), `"owned_by":"azure"`)
}

func TestAuth(t *testing.T) {
	g := newTestEngine(t, runtimetest.NewScriptedModel(), &middleware.AuthConfig{Enabled: true, Token: "s3cret"})

	assert.Equal(t, http.StatusUnauthorized, do(g, http.MethodGet, "/v1/threads", "").Code)
	assert.Equal(t, http.StatusOK, do(g, http.MethodGet, "/v1/threads", "", "Authorization", "Bearer s3cret").Code)
}
