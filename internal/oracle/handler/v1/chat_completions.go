package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/service"
	"github.com/kiosk404/oracle/internal/pkg/core"
	"github.com/kiosk404/oracle/pkg/errorx"
)

// ChatCompletionsHandler handles POST /v1/chat/completions (OpenAI-compatible, non-streaming).
//
// The thread is resolved from the X-Session-Key header, then the user field, then the
// default thread. The last user message is the turn input; earlier user and assistant
// messages seed a thread that has no history yet.
type ChatCompletionsHandler struct {
	svc             service.ChatService
	defaultThreadID string
	defaultModel    string
}

// NewChatCompletionsHandler creates a new ChatCompletionsHandler.
func NewChatCompletionsHandler(svc service.ChatService, defaultThreadID, defaultModel string) *ChatCompletionsHandler {
	if defaultThreadID == "" {
		defaultThreadID = service.DefaultThreadID
	}
	if defaultModel == "" {
		defaultModel = "oracle"
	}
	return &ChatCompletionsHandler{
		svc:             svc,
		defaultThreadID: defaultThreadID,
		defaultModel:    defaultModel,
	}
}

// Handle is the main entry point for POST /v1/chat/completions.
func (h *ChatCompletionsHandler) Handle(c *gin.Context) {
	var req ChatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind chat completion request"), nil)
		return
	}

	input, history := splitMessages(req.Messages)
	if input == "" {
		core.WriteResponse(c, errorx.WithCode(ErrNoUserMessage, "no user message found in messages array"), nil)
		return
	}

	threadID := h.resolveThreadID(c, req.User)
	entries, err := h.svc.ProcessTurn(c.Request.Context(), &service.TurnRequest{
		Text:     input,
		History:  history,
		ThreadID: threadID,
	})
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, turnCode(err), "turn on thread %q", threadID), nil)
		return
	}

	var content string
	if len(entries) > 0 {
		content = entries[len(entries)-1].Content
	}
	model := req.Model
	if model == "" {
		model = h.defaultModel
	}

	c.Header("X-Session-Key", threadID)
	core.WriteResponse(c, nil, ChatCompletionResponse{
		ID:      "chatcmpl-" + uuid.New().String()[:8],
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []ChatCompletionChoice{{
			Index:        0,
			Message:      &ChatMessage{Role: string(entity.RoleAssistant), Content: content},
			FinishReason: "stop",
		}},
	})
}

func (h *ChatCompletionsHandler) resolveThreadID(c *gin.Context, user string) string {
	if key := c.GetHeader("X-Session-Key"); key != "" {
		return key
	}
	if user != "" {
		return fmt.Sprintf("user:%s", user)
	}
	return h.defaultThreadID
}

// splitMessages returns the content of the last user message and the user and assistant
// messages before it.
func splitMessages(messages []ChatMessage) (string, []*entity.ChatEntry) {
	last := -1
	for i, m := range messages {
		if m.Role == string(entity.RoleUser) {
			last = i
		}
	}
	if last < 0 {
		return "", nil
	}

	history := make([]*entity.ChatEntry, 0, last)
	for _, m := range messages[:last] {
		switch entity.Role(m.Role) {
		case entity.RoleUser, entity.RoleAssistant:
			history = append(history, &entity.ChatEntry{Role: entity.Role(m.Role), Content: m.Content})
		}
	}
	return messages[last].Content, history
}
