package service

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
)

// DefaultThreadID is used when a caller names no thread.
const DefaultThreadID = "demo-thread"

// TurnRequest is one user utterance addressed to a thread.
type TurnRequest struct {
	Text string
	// History seeds a thread that has no stored messages. Only user and assistant entries
	// are used; it is ignored once the thread exists.
	History  []*entity.ChatEntry
	ThreadID string
	// MaxRoundTrips overrides the configured cap when positive.
	MaxRoundTrips int
}

// ChatService is the application-level service for conversation turns and threads.
type ChatService interface {
	// --- Turns ---

	// ProcessTurn runs a turn and returns only the newly produced assistant reply.
	ProcessTurn(ctx context.Context, req *TurnRequest) ([]*entity.ChatEntry, error)
	// RunTurn runs a turn and returns the full result, including tool messages.
	RunTurn(ctx context.Context, req *TurnRequest) (*entity.TurnResult, error)
	// StreamTurn starts a turn and returns its progress events.
	// Events are consumed via sr.Recv() until io.EOF; the last event is always EventDone.
	StreamTurn(ctx context.Context, req *TurnRequest) (*schema.StreamReader[*entity.TurnEvent], error)

	// --- Threads ---

	History(ctx context.Context, threadID string) ([]*entity.Message, error)
	ListThreads(ctx context.Context) ([]*entity.ConversationMeta, error)
	DeleteThread(ctx context.Context, threadID string) error

	// Busy reports whether a turn is running on threadID.
	Busy(threadID string) bool
}
