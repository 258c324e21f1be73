package inmemory

import (
	"context"
	"sync"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/repo"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
)

var _ repo.ConversationRepository = (*ConversationStore)(nil)

// ConversationStore is an in-memory implementation of the ConversationRepository interface.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*entity.Conversation
}

// NewConversationStore creates a new instance of the ConversationStore.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string]*entity.Conversation),
	}
}

func (s *ConversationStore) Append(_ context.Context, threadID string, msgs ...*entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[threadID]
	var history []*entity.Message
	if ok {
		history = conv.Messages
	}
	if err := repo.CheckAppend(history, msgs); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	if !ok {
		conv = entity.NewConversation(threadID)
		s.conversations[threadID] = conv
	}
	conv.AppendMessages(entity.CloneMessages(msgs)...)
	return nil
}

func (s *ConversationStore) History(_ context.Context, threadID string) ([]*entity.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[threadID]
	if !ok {
		return []*entity.Message{}, nil
	}
	return entity.CloneMessages(conv.Messages), nil
}

func (s *ConversationStore) Get(_ context.Context, threadID string) (*entity.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[threadID]
	if !ok {
		return nil, errno.ErrConversationNotFound
	}
	return &entity.Conversation{
		ThreadID:  conv.ThreadID,
		Messages:  entity.CloneMessages(conv.Messages),
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}, nil
}

func (s *ConversationStore) List(_ context.Context) ([]*entity.ConversationMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metas := make([]*entity.ConversationMeta, 0, len(s.conversations))
	for _, conv := range s.conversations {
		metas = append(metas, conv.Meta())
	}
	repo.SortMetas(metas)
	return metas, nil
}

func (s *ConversationStore) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[threadID]; !ok {
		return errno.ErrConversationNotFound
	}
	delete(s.conversations, threadID)
	return nil
}
