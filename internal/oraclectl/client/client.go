// Package client talks to the oracle server's /v1 API.
package client

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kiosk404/oracle/pkg/utils/json"
	"github.com/kiosk404/oracle/pkg/version"
)

// TokenEnv holds the bearer token when none is passed explicitly.
const TokenEnv = "ORACLE_GATEWAY_TOKEN"

// Entry is a user or assistant message.
type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolError describes a failed tool call.
type ToolError struct {
	ToolName string `json:"tool_name"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// ToolResult is the outcome of one tool call.
type ToolResult struct {
	ToolCallID string     `json:"tool_call_id"`
	Name       string     `json:"name"`
	Content    string     `json:"content"`
	Error      *ToolError `json:"error,omitempty"`
}

// Event is one server-sent turn event.
type Event struct {
	Type       string      `json:"type"`
	ThreadID   string      `json:"thread_id,omitempty"`
	Delta      string      `json:"delta,omitempty"`
	ToolCall   *ToolCall   `json:"tool_call,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
	Error      string      `json:"error,omitempty"`
	RoundTrips int         `json:"round_trips,omitempty"`
}

// TurnRequest is the body of POST /v1/turns.
type TurnRequest struct {
	Message       string   `json:"message"`
	ThreadID      string   `json:"thread_id,omitempty"`
	History       []*Entry `json:"history,omitempty"`
	MaxRoundTrips int      `json:"max_round_trips,omitempty"`
}

// TurnResponse carries the entries produced by a turn.
type TurnResponse struct {
	ThreadID string   `json:"thread_id"`
	Messages []*Entry `json:"messages"`
}

// Thread is a stored conversation summary.
type Thread struct {
	ThreadID     string `json:"thread_id"`
	MessageCount int    `json:"message_count"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// Message is a stored conversation message.
type Message struct {
	Role       string      `json:"role"`
	Content    string      `json:"content"`
	ToolCalls  []*ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
	Name       string      `json:"name,omitempty"`
	Error      *ToolError  `json:"error,omitempty"`
	CreatedAt  string      `json:"created_at"`
}

// Parameter describes one tool argument.
type Parameter struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// Tool describes a tool registered on the server.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Marker      string      `json:"error_marker"`
	Parameters  []Parameter `json:"parameters"`
	Source      string      `json:"source"`
}

// APIError is the coded error body returned by the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d (code %d): %s", e.Status, e.Code, e.Message)
}

// Client is the HTTP client for the oracle server.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New creates a client. A missing scheme defaults to http.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: httpClient,
	}
}

// Turn runs one turn and returns the entries it produced.
func (c *Client) Turn(ctx context.Context, req *TurnRequest) (*TurnResponse, error) {
	var resp TurnResponse
	if err := c.do(ctx, http.MethodPost, "/v1/turns", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StreamTurn runs one turn and calls cb for each event until the done event.
func (c *Client) StreamTurn(ctx context.Context, req *TurnRequest, cb func(*Event)) error {
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/v1/turns/stream", req)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		var ev Event
		if err := json.UnmarshalString(data, &ev); err != nil {
			continue
		}
		if cb != nil {
			cb(&ev)
		}
		if ev.Type == "done" {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return errors.New("stream closed before done event")
}

// Threads lists stored threads.
func (c *Client) Threads(ctx context.Context) ([]Thread, error) {
	var resp struct {
		Data []Thread `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/threads", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Messages returns the stored history of a thread.
func (c *Client) Messages(ctx context.Context, threadID string) ([]Message, error) {
	var resp struct {
		Data []Message `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/threads/"+url.PathEscape(threadID)+"/messages", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// DeleteThread removes a thread.
func (c *Client) DeleteThread(ctx context.Context, threadID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/threads/"+url.PathEscape(threadID), nil, nil)
}

// Tools lists the tools registered on the server.
func (c *Client) Tools(ctx context.Context) ([]Tool, error) {
	var resp struct {
		Data []Tool `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/tools", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Version returns the server build information.
func (c *Client) Version(ctx context.Context) (*version.Info, error) {
	var info version.Info
	if err := c.do(ctx, http.MethodGet, "/version", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Code = 0
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
