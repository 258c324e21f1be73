package entity

import (
	"fmt"
	"strings"

	"github.com/kiosk404/oracle/pkg/utils/json"
)

// ToolCall represents a model's request to execute a tool.
type ToolCall struct {
	// ID is unique within the assistant message that carries the call.
	ID   string `json:"id"`
	Name string `json:"name"`
	// Arguments is the JSON object text produced by the model.
	Arguments string `json:"arguments"`
}

// DecodeArguments parses Arguments as a JSON object. Empty input yields an empty map.
func (tc *ToolCall) DecodeArguments() (map[string]any, error) {
	args := map[string]any{}
	raw := strings.TrimSpace(tc.Arguments)
	if raw == "" {
		return args, nil
	}
	if err := json.UnmarshalString(raw, &args); err != nil {
		return nil, fmt.Errorf("arguments of %q are not a JSON object: %w", tc.Name, err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// ToolErrorKind classifies why a tool call did not produce a result.
type ToolErrorKind string

const (
	ToolErrorUnknownTool      ToolErrorKind = "unknown_tool"
	ToolErrorInvalidArguments ToolErrorKind = "invalid_arguments"
	ToolErrorExecution        ToolErrorKind = "execution"
	ToolErrorTimeout          ToolErrorKind = "timeout"
)

// ToolError is the structured failure variant of a tool result.
type ToolError struct {
	ToolName string        `json:"tool_name"`
	Kind     ToolErrorKind `json:"kind"`
	Message  string        `json:"message"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.ToolName, e.Kind, e.Message)
}

// Render formats the error as the text the model reads, prefixed with marker.
func (e *ToolError) Render(marker string) string {
	return fmt.Sprintf("%s: %s", marker, e.Message)
}

// ToolResult is the outcome of one tool call.
type ToolResult struct {
	ToolCallID string     `json:"tool_call_id"`
	Name       string     `json:"name"`
	Content    string     `json:"content"`
	Error      *ToolError `json:"error,omitempty"`
}

// Failed reports whether the tool did not succeed.
func (r *ToolResult) Failed() bool {
	return r.Error != nil
}

// ToMessage converts r into a tool message addressed back to the model.
func (r *ToolResult) ToMessage() *Message {
	msg := NewToolMessage(r.ToolCallID, r.Name, r.Content)
	if r.Error != nil {
		e := *r.Error
		msg.Error = &e
	}
	return msg
}
