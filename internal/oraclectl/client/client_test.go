package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, "secret", srv.Client())
}

func TestNew_DefaultsScheme(t *testing.T) {
	c := New("127.0.0.1:11788/", "", nil)
	assert.Equal(t, "http://127.0.0.1:11788", c.BaseURL)
	assert.NotNil(t, c.HTTPClient)
}

func TestTurn(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/turns", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"message":"hi","thread_id":"t1"}`, string(body))
		_, _ = io.WriteString(w, `{"thread_id":"t1","messages":[{"role":"assistant","content":"hello"}]}`)
	})

	resp, err := c.Turn(context.Background(), &TurnRequest{Message: "hi", ThreadID: "t1"})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "hello", resp.Messages[0].Content)
}

func TestTurn_APIError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"code":100102,"message":"thread busy: t1"}`)
	})

	_, err := c.Turn(context.Background(), &TurnRequest{Message: "hi"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, 100102, apiErr.Code)
	assert.Contains(t, err.Error(), "thread busy")
}

func TestStreamTurn(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/turns/stream", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, ev := range []string{
			`{"type":"tool_call_start","tool_call":{"id":"c1","name":"weather_tool","arguments":"{}"}}`,
			`{"type":"tool_call_end","tool_result":{"tool_call_id":"c1","name":"weather_tool","content":"sunny"}}`,
			`{"type":"message","delta":"It is sunny."}`,
			`{"type":"done","round_trips":2}`,
		} {
			_, _ = fmt.Fprintf(w, "event:x\ndata:%s\n\n", ev)
		}
	})

	var events []*Event
	err := c.StreamTurn(context.Background(), &TurnRequest{Message: "weather?"}, func(ev *Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, "weather_tool", events[0].ToolCall.Name)
	assert.Equal(t, "sunny", events[1].ToolResult.Content)
	assert.Equal(t, "It is sunny.", events[2].Delta)
	assert.Equal(t, 2, events[3].RoundTrips)
}

func TestStreamTurn_Truncated(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "event:message\ndata:{\"type\":\"message\",\"delta\":\"partial\"}\n\n")
	})

	err := c.StreamTurn(context.Background(), &TurnRequest{Message: "hi"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before done")
}

func TestThreads(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/threads":
			_, _ = io.WriteString(w, `{"data":[{"thread_id":"demo-thread","message_count":4}]}`)
		case r.Method == http.MethodGet && r.URL.Path == "/v1/threads/demo-thread/messages":
			_, _ = io.WriteString(w, `{"thread_id":"demo-thread","data":[{"role":"user","content":"hi"}]}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/threads/demo-thread":
			_, _ = io.WriteString(w, `{"thread_id":"demo-thread","deleted":true}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	threads, err := c.Threads(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, 4, threads[0].MessageCount)

	msgs, err := c.Messages(ctx, "demo-thread")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)

	require.NoError(t, c.DeleteThread(ctx, "demo-thread"))

	err = c.DeleteThread(ctx, "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestTools(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"name":"weather_tool","description":"d","error_marker":"[weather_tool] error","source":"builtin","parameters":[{"name":"city","type":"string","required":true}]}]}`)
	})

	tools, err := c.Tools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "builtin", tools[0].Source)
	assert.True(t, tools[0].Parameters[0].Required)
}
