package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/service"
	"github.com/kiosk404/oracle/internal/pkg/core"
	"github.com/kiosk404/oracle/pkg/errorx"
)

// ThreadHandler handles thread management REST API endpoints.
type ThreadHandler struct {
	svc service.ChatService
}

// NewThreadHandler creates a new ThreadHandler.
func NewThreadHandler(svc service.ChatService) *ThreadHandler {
	return &ThreadHandler{svc: svc}
}

// List handles GET /v1/threads.
func (h *ThreadHandler) List(c *gin.Context) {
	metas, err := h.svc.ListThreads(c.Request.Context())
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrThreadList, "list threads"), nil)
		return
	}

	resp := make([]ThreadResponse, 0, len(metas))
	for _, m := range metas {
		resp = append(resp, ThreadResponse{
			ThreadID:     m.ThreadID,
			MessageCount: m.MessageCount,
			CreatedAt:    FormatTime(m.CreatedAt),
			UpdatedAt:    FormatTime(m.UpdatedAt),
		})
	}
	core.WriteResponse(c, nil, gin.H{"data": resp})
}

// Messages handles GET /v1/threads/:id/messages. An unknown thread has no messages.
func (h *ThreadHandler) Messages(c *gin.Context) {
	id := c.Param("id")
	history, err := h.svc.History(c.Request.Context(), id)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrThreadList, "history of thread %q", id), nil)
		return
	}

	resp := make([]MessageResponse, 0, len(history))
	for _, m := range history {
		resp = append(resp, MessageResponse{
			Role:       m.Role,
			Content:    m.Content,
			ToolCalls:  m.ToolCalls,
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
			Error:      m.Error,
			CreatedAt:  FormatTime(m.CreatedAt),
		})
	}
	core.WriteResponse(c, nil, gin.H{"thread_id": id, "data": resp})
}

// Delete handles DELETE /v1/threads/:id.
func (h *ThreadHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.DeleteThread(c.Request.Context(), id); err != nil {
		code := turnCode(err)
		if code == ErrTurn {
			code = ErrThreadDelete
		}
		core.WriteResponse(c, errorx.WrapC(err, code, "delete thread %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, gin.H{"thread_id": id, "deleted": true})
}
