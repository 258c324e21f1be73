package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/repo"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/service/runtime"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
	"github.com/kiosk404/oracle/internal/oracle/service/tools"
	"github.com/kiosk404/oracle/pkg/logger"
	"github.com/kiosk404/oracle/pkg/utils/safego"
)

const eventBufferSize = 20

// Options configures the chat service.
type Options struct {
	DefaultThreadID string
	// InlineErrors returns turn failures as a synthesized assistant entry instead of an
	// error. The entry is never stored.
	InlineErrors bool
}

type chatServiceImpl struct {
	store      repo.ConversationRepository
	controller *runtime.TurnController
	opts       Options

	mu   sync.Mutex
	busy map[string]struct{}
}

// NewChatService creates the chat service.
func NewChatService(store repo.ConversationRepository, controller *runtime.TurnController, opts Options) ChatService {
	if opts.DefaultThreadID == "" {
		opts.DefaultThreadID = DefaultThreadID
	}
	return &chatServiceImpl{
		store:      store,
		controller: controller,
		opts:       opts,
		busy:       make(map[string]struct{}),
	}
}

func (s *chatServiceImpl) ProcessTurn(ctx context.Context, req *TurnRequest) ([]*entity.ChatEntry, error) {
	result, err := s.RunTurn(ctx, req)
	if err != nil {
		if s.opts.InlineErrors && runtime.IsTurnError(err) {
			logger.Warn("[Chat] turn failed, replying inline: %v", err)
			return []*entity.ChatEntry{{Role: entity.RoleAssistant, Content: "Error: " + err.Error()}}, nil
		}
		return nil, err
	}

	entries := make([]*entity.ChatEntry, 0, 1)
	if text, ok := result.FinalText(); ok {
		entries = append(entries, &entity.ChatEntry{Role: entity.RoleAssistant, Content: text})
	}
	return entries, nil
}

func (s *chatServiceImpl) RunTurn(ctx context.Context, req *TurnRequest) (*entity.TurnResult, error) {
	threadID, input, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	if !s.acquire(threadID) {
		return nil, fmt.Errorf("%w: %s", errno.ErrThreadBusy, threadID)
	}
	defer s.release(threadID)

	return s.run(ctx, threadID, input, req)
}

func (s *chatServiceImpl) StreamTurn(ctx context.Context, req *TurnRequest) (*schema.StreamReader[*entity.TurnEvent], error) {
	threadID, input, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	if !s.acquire(threadID) {
		return nil, fmt.Errorf("%w: %s", errno.ErrThreadBusy, threadID)
	}

	sr, sw := schema.Pipe[*entity.TurnEvent](eventBufferSize)

	safego.Go(ctx, func() {
		defer sw.Close()
		defer s.release(threadID)

		obs := &eventObserver{threadID: threadID, sw: sw}
		result, err := s.run(tools.WithObserver(ctx, obs), threadID, input, req)

		done := &entity.TurnEvent{Type: entity.EventDone, ThreadID: threadID}
		if result != nil {
			done.RoundTrips = result.RoundTrips
			if text, ok := result.FinalText(); ok {
				sw.Send(&entity.TurnEvent{Type: entity.EventMessage, ThreadID: threadID, Delta: text}, nil)
			}
		}
		if err != nil {
			sw.Send(&entity.TurnEvent{Type: entity.EventError, ThreadID: threadID, Error: err.Error()}, nil)
		}
		sw.Send(done, nil)
	})

	return sr, nil
}

func (s *chatServiceImpl) History(ctx context.Context, threadID string) ([]*entity.Message, error) {
	if threadID == "" {
		threadID = s.opts.DefaultThreadID
	}
	return s.store.History(ctx, threadID)
}

func (s *chatServiceImpl) ListThreads(ctx context.Context) ([]*entity.ConversationMeta, error) {
	return s.store.List(ctx)
}

func (s *chatServiceImpl) DeleteThread(ctx context.Context, threadID string) error {
	if !s.acquire(threadID) {
		return fmt.Errorf("%w: %s", errno.ErrThreadBusy, threadID)
	}
	defer s.release(threadID)
	return s.store.Delete(ctx, threadID)
}

func (s *chatServiceImpl) Busy(threadID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.busy[threadID]
	return ok
}

func (s *chatServiceImpl) prepare(req *TurnRequest) (string, *entity.Message, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return "", nil, errno.ErrEmptyInput
	}
	threadID := req.ThreadID
	if threadID == "" {
		threadID = s.opts.DefaultThreadID
	}
	return threadID, entity.NewUserMessage(req.Text), nil
}

func (s *chatServiceImpl) run(ctx context.Context, threadID string, input *entity.Message, req *TurnRequest) (*entity.TurnResult, error) {
	if err := s.seed(ctx, threadID, withoutCurrent(req.History, req.Text)); err != nil {
		return nil, err
	}

	logger.Info("[Chat] thread %s: turn started", threadID)
	result, err := s.controller.Run(ctx, threadID, input, req.MaxRoundTrips, runtime.NewLoggingHandler(threadID))
	if err != nil {
		logger.Warn("[Chat] thread %s: turn ended with error: %v", threadID, err)
		return result, err
	}
	logger.Info("[Chat] thread %s: turn finished after %d round trips", threadID, result.RoundTrips)
	return result, nil
}

// seed stores caller-supplied history on a thread that has none.
func (s *chatServiceImpl) seed(ctx context.Context, threadID string, entries []*entity.ChatEntry) error {
	if len(entries) == 0 {
		return nil
	}
	stored, err := s.store.History(ctx, threadID)
	if err != nil {
		return err
	}
	if len(stored) > 0 {
		return nil
	}

	msgs := SeedMessages(entries)
	if len(msgs) == 0 {
		return nil
	}
	logger.Info("[Chat] thread %s: seeding %d messages from caller history", threadID, len(msgs))
	return s.store.Append(ctx, threadID, msgs...)
}

// withoutCurrent drops a trailing user entry that repeats the utterance being sent, which
// UI clients include in the history they pass.
func withoutCurrent(entries []*entity.ChatEntry, text string) []*entity.ChatEntry {
	if n := len(entries); n > 0 {
		last := entries[n-1]
		if last != nil && last.Role == entity.RoleUser && strings.TrimSpace(last.Content) == strings.TrimSpace(text) {
			return entries[:n-1]
		}
	}
	return entries
}

// SeedMessages converts caller history into stored messages, keeping user and assistant
// entries with content.
func SeedMessages(entries []*entity.ChatEntry) []*entity.Message {
	msgs := make([]*entity.Message, 0, len(entries))
	for _, e := range entries {
		if e == nil || e.Content == "" {
			continue
		}
		switch e.Role {
		case entity.RoleUser:
			msgs = append(msgs, entity.NewUserMessage(e.Content))
		case entity.RoleAssistant:
			msgs = append(msgs, entity.NewAssistantMessage(e.Content))
		}
	}
	return msgs
}

func (s *chatServiceImpl) acquire(threadID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.busy[threadID]; ok {
		return false
	}
	s.busy[threadID] = struct{}{}
	return true
}

func (s *chatServiceImpl) release(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, threadID)
}

// eventObserver forwards tool lifecycle notifications into the event stream.
type eventObserver struct {
	threadID string
	sw       *schema.StreamWriter[*entity.TurnEvent]
}

func (o *eventObserver) OnToolStart(_ context.Context, call *entity.ToolCall) {
	tc := *call
	o.sw.Send(&entity.TurnEvent{Type: entity.EventToolCallStart, ThreadID: o.threadID, ToolCall: &tc}, nil)
}

func (o *eventObserver) OnToolEnd(_ context.Context, call *entity.ToolCall, result *entity.ToolResult) {
	tc := *call
	res := *result
	o.sw.Send(&entity.TurnEvent{Type: entity.EventToolCallEnd, ThreadID: o.threadID, ToolCall: &tc, ToolResult: &res}, nil)
}
