package repo

import (
	"context"
	"fmt"
	"sort"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
)

// ConversationRepository persists thread-keyed, append-only conversations.
//
// Implementations never edit or remove individual messages; Delete drops a whole thread
// and exists only for retention policies and explicit user requests.
type ConversationRepository interface {
	// Append atomically appends msgs to the thread, creating it on first reference.
	// Either every message is stored or none is.
	Append(ctx context.Context, threadID string, msgs ...*entity.Message) error
	// History returns deep copies of the thread's messages in append order.
	// An unknown thread yields an empty history.
	History(ctx context.Context, threadID string) ([]*entity.Message, error)
	// Get returns the conversation or errno.ErrConversationNotFound.
	Get(ctx context.Context, threadID string) (*entity.Conversation, error)
	// List returns metadata for every stored conversation, most recently updated first.
	List(ctx context.Context) ([]*entity.ConversationMeta, error)
	// Delete removes the thread or returns errno.ErrConversationNotFound.
	Delete(ctx context.Context, threadID string) error
}

// CheckAppend validates msgs against the existing history of a thread: every message must
// be well formed and every tool result must answer a call emitted by an earlier assistant
// message of the same thread.
func CheckAppend(history []*entity.Message, msgs []*entity.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	emitted := make(map[string]struct{})
	collect := func(m *entity.Message) {
		for _, tc := range m.ToolCalls {
			emitted[tc.ID] = struct{}{}
		}
	}
	for _, m := range history {
		if m.Kind() == entity.KindAssistant {
			collect(m)
		}
	}

	for i, m := range msgs {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("message #%d: %w", i, err)
		}
		switch m.Kind() {
		case entity.KindSystem:
			return fmt.Errorf("%w: message #%d: system messages are not stored", errno.ErrInvalidMessage, i)
		case entity.KindAssistant:
			collect(m)
		case entity.KindToolResult:
			if _, ok := emitted[m.ToolCallID]; !ok {
				return fmt.Errorf("%w: message #%d answers unknown tool call %q",
					errno.ErrInvalidMessage, i, m.ToolCallID)
			}
		case entity.KindUser:
		default:
			return fmt.Errorf("%w: message #%d has kind %s", errno.ErrInvalidMessage, i, m.Kind())
		}
	}
	return nil
}

// SortMetas orders metas by most recent update, breaking ties by thread id.
func SortMetas(metas []*entity.ConversationMeta) {
	sort.SliceStable(metas, func(i, j int) bool {
		if metas[i].UpdatedAt.Equal(metas[j].UpdatedAt) {
			return metas[i].ThreadID < metas[j].ThreadID
		}
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
}
