package v1

import (
	"time"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
)

// --- Turn API ---

// TurnRequest is the request body for POST /v1/turns and /v1/turns/stream.
type TurnRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id,omitempty"`
	// History seeds a thread that has no stored messages.
	History       []*entity.ChatEntry `json:"history,omitempty"`
	MaxRoundTrips int                 `json:"max_round_trips,omitempty"`
}

// TurnResponse carries the assistant entries produced by a turn.
type TurnResponse struct {
	ThreadID string              `json:"thread_id"`
	Messages []*entity.ChatEntry `json:"messages"`
}

// --- Thread API ---

// ThreadResponse is a single thread in GET /v1/threads.
type ThreadResponse struct {
	ThreadID     string `json:"thread_id"`
	MessageCount int    `json:"message_count"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// MessageResponse is a stored message in GET /v1/threads/:id/messages.
type MessageResponse struct {
	Role       entity.Role        `json:"role"`
	Content    string             `json:"content"`
	ToolCalls  []*entity.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string             `json:"tool_call_id,omitempty"`
	Name       string             `json:"name,omitempty"`
	Error      *entity.ToolError  `json:"error,omitempty"`
	CreatedAt  string             `json:"created_at"`
}

// --- Tool API ---

// ToolResponse describes a registered tool.
type ToolResponse struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Marker      string              `json:"error_marker"`
	Parameters  []ParameterResponse `json:"parameters"`
	Source      string              `json:"source"`
}

// ParameterResponse describes one tool argument.
type ParameterResponse struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// --- OpenAI Chat Completions API Types ---

// ChatCompletionRequest is the OpenAI-compatible request body for /v1/chat/completions.
type ChatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages" binding:"required"`
	// User derives the thread when no X-Session-Key header is sent.
	User string `json:"user,omitempty"`
}

// ChatMessage is a single message in the OpenAI Chat Completions format.
type ChatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content"`
}

// ChatCompletionResponse is the OpenAI-compatible non-streaming response.
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
}

// ChatCompletionChoice is a single choice in the response.
type ChatCompletionChoice struct {
	Index        int          `json:"index"`
	Message      *ChatMessage `json:"message,omitempty"`
	FinishReason string       `json:"finish_reason"`
}

// --- Models API ---

// ModelObject is a single model in the OpenAI /v1/models response.
type ModelObject struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
	Active  bool   `json:"active,omitempty"`
}

// ModelListResponse is the response for GET /v1/models.
type ModelListResponse struct {
	Object string        `json:"object"`
	Data   []ModelObject `json:"data"`
}

// --- Common ---

const timeFormat = time.RFC3339

// FormatTime formats a time value for API responses.
func FormatTime(t time.Time) string {
	return t.Format(timeFormat)
}
