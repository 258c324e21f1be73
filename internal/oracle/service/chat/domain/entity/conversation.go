package entity

import (
	"time"
)

// Conversation is the append-only message sequence of one thread.
type Conversation struct {
	ThreadID  string     `json:"thread_id"`
	Messages  []*Message `json:"messages"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewConversation creates an empty conversation for threadID.
func NewConversation(threadID string) *Conversation {
	now := time.Now()
	return &Conversation{
		ThreadID:  threadID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendMessages appends msgs to the conversation history.
func (c *Conversation) AppendMessages(msgs ...*Message) {
	c.Messages = append(c.Messages, msgs...)
	c.UpdatedAt = time.Now()
}

// Meta summarizes the conversation without its messages.
func (c *Conversation) Meta() *ConversationMeta {
	return &ConversationMeta{
		ThreadID:     c.ThreadID,
		MessageCount: len(c.Messages),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ConversationMeta is the listing view of a conversation.
type ConversationMeta struct {
	ThreadID     string    `json:"thread_id"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ChatEntry is the caller-facing {role, content} pair.
type ChatEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TurnResult is the outcome of driving the loop once.
type TurnResult struct {
	// Final is the terminal assistant message, nil when the turn produced none.
	Final *Message `json:"final,omitempty"`
	// RoundTrips counts model invocations made during the turn.
	RoundTrips int `json:"round_trips"`
	// NewMessages holds every message appended during the turn, in order.
	NewMessages []*Message `json:"new_messages"`
}

// FinalText returns the text of the final reply and whether there is one.
func (r *TurnResult) FinalText() (string, bool) {
	if r == nil || r.Final == nil {
		return "", false
	}
	return r.Final.Content, true
}
