package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/service"
	"github.com/kiosk404/oracle/internal/pkg/core"
	"github.com/kiosk404/oracle/pkg/errorx"
	"github.com/kiosk404/oracle/pkg/logger"
)

// TurnHandler handles the turn endpoints.
type TurnHandler struct {
	svc             service.ChatService
	defaultThreadID string
}

// NewTurnHandler creates a new TurnHandler.
func NewTurnHandler(svc service.ChatService, defaultThreadID string) *TurnHandler {
	if defaultThreadID == "" {
		defaultThreadID = service.DefaultThreadID
	}
	return &TurnHandler{svc: svc, defaultThreadID: defaultThreadID}
}

// Create handles POST /v1/turns.
func (h *TurnHandler) Create(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	entries, err := h.svc.ProcessTurn(c.Request.Context(), req)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, turnCode(err), "turn on thread %q", req.ThreadID), nil)
		return
	}
	core.WriteResponse(c, nil, TurnResponse{ThreadID: req.ThreadID, Messages: entries})
}

// Stream handles POST /v1/turns/stream. Each TurnEvent is written as one SSE event named
// after its type; the stream always ends with a done event.
func (h *TurnHandler) Stream(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	sr, err := h.svc.StreamTurn(c.Request.Context(), req)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, turnCode(err), "turn on thread %q", req.ThreadID), nil)
		return
	}
	defer sr.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Status(http.StatusOK)
	for {
		select {
		case <-c.Request.Context().Done():
			return
		default:
		}
		if !writeEvent(c.Writer, sr) {
			return
		}
		c.Writer.Flush()
	}
}

// writeEvent forwards the next event and reports whether more may follow.
func writeEvent(w io.Writer, sr *schema.StreamReader[*entity.TurnEvent]) bool {
	event, err := sr.Recv()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			logger.Warn("[Turns] stream recv error: %v", err)
		}
		return false
	}
	if err := sse.Encode(w, sse.Event{Event: string(event.Type), Data: event}); err != nil {
		logger.Warn("[Turns] write event error: %v", err)
		return false
	}
	return true
}

func (h *TurnHandler) bind(c *gin.Context) (*service.TurnRequest, bool) {
	var body TurnRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind turn request"), nil)
		return nil, false
	}
	if body.MaxRoundTrips < 0 {
		core.WriteResponse(c, errorx.WithCode(ErrValidation, "max_round_trips must not be negative"), nil)
		return nil, false
	}
	threadID := body.ThreadID
	if threadID == "" {
		threadID = h.defaultThreadID
	}
	return &service.TurnRequest{
		Text:          body.Message,
		History:       body.History,
		ThreadID:      threadID,
		MaxRoundTrips: body.MaxRoundTrips,
	}, true
}
