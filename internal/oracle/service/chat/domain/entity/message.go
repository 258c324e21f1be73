package entity

import (
	"fmt"
	"time"

	"github.com/jinzhu/copier"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Kind is the message variant. Switches over Kind are expected to be exhaustive.
type Kind int

const (
	KindInvalid Kind = iota
	KindUser
	KindAssistant
	KindToolResult
	KindSystem
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindAssistant:
		return "assistant"
	case KindToolResult:
		return "tool_result"
	case KindSystem:
		return "system"
	default:
		return "invalid"
	}
}

// Message is one entry of a conversation.
//
// The variant is selected by Role:
//   - user:      Content
//   - assistant: Content and an ordered, possibly empty, list of ToolCalls
//   - tool:      Name, ToolCallID, Content and, on failure, Error
//   - system:    Content; synthesized for the model, never stored
//
// Conversion to and from eino's schema.Message lives in the runtime layer.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Name is the tool name for tool results.
	Name string `json:"name,omitempty"`

	ToolCalls  []*ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`

	// Error is set on tool results whose tool did not succeed.
	Error *ToolError `json:"error,omitempty"`

	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return &Message{
		Role:      RoleSystem,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return &Message{
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewAssistantMessage creates an assistant message, optionally requesting tools.
func NewAssistantMessage(content string, calls ...*ToolCall) *Message {
	return &Message{
		Role:      RoleAssistant,
		Content:   content,
		ToolCalls: calls,
		CreatedAt: time.Now(),
	}
}

// NewToolMessage creates a tool result message.
func NewToolMessage(toolCallID, name, content string) *Message {
	return &Message{
		Role:       RoleTool,
		Content:    content,
		Name:       name,
		ToolCallID: toolCallID,
		CreatedAt:  time.Now(),
	}
}

// Kind reports the variant of m.
func (m *Message) Kind() Kind {
	if m == nil {
		return KindInvalid
	}
	switch m.Role {
	case RoleUser:
		return KindUser
	case RoleAssistant:
		return KindAssistant
	case RoleTool:
		return KindToolResult
	case RoleSystem:
		return KindSystem
	default:
		return KindInvalid
	}
}

// HasToolCalls reports whether m is an assistant message requesting tools.
func (m *Message) HasToolCalls() bool {
	return m.Kind() == KindAssistant && len(m.ToolCalls) > 0
}

// Validate checks that the fields set on m match its variant.
func (m *Message) Validate() error {
	switch m.Kind() {
	case KindUser, KindSystem:
		if len(m.ToolCalls) > 0 || m.ToolCallID != "" || m.Error != nil {
			return fmt.Errorf("%w: %s message carries tool fields", errno.ErrInvalidMessage, m.Role)
		}
	case KindAssistant:
		if m.ToolCallID != "" || m.Error != nil {
			return fmt.Errorf("%w: assistant message carries tool result fields", errno.ErrInvalidMessage)
		}
		seen := make(map[string]struct{}, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			if tc == nil || tc.ID == "" || tc.Name == "" {
				return fmt.Errorf("%w: tool call #%d needs an id and a name", errno.ErrInvalidMessage, i)
			}
			if _, dup := seen[tc.ID]; dup {
				return fmt.Errorf("%w: duplicate tool call id %q", errno.ErrInvalidMessage, tc.ID)
			}
			seen[tc.ID] = struct{}{}
		}
	case KindToolResult:
		if m.ToolCallID == "" || m.Name == "" {
			return fmt.Errorf("%w: tool result needs a tool call id and a name", errno.ErrInvalidMessage)
		}
		if len(m.ToolCalls) > 0 {
			return fmt.Errorf("%w: tool result carries tool calls", errno.ErrInvalidMessage)
		}
	default:
		if m == nil {
			return fmt.Errorf("%w: nil message", errno.ErrInvalidMessage)
		}
		return fmt.Errorf("%w: unknown role %q", errno.ErrInvalidMessage, m.Role)
	}
	return nil
}

// Clone returns a deep copy of m.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	out := &Message{}
	if err := copier.CopyWithOption(out, m, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched kinds, which cannot happen for identical types.
		panic(err)
	}
	out.CreatedAt = m.CreatedAt
	return out
}

// CloneMessages deep-copies a message slice.
func CloneMessages(msgs []*Message) []*Message {
	out := make([]*Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Clone())
	}
	return out
}
