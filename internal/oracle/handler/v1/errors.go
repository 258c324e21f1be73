package v1

import (
	"errors"
	"net/http"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
	"github.com/kiosk404/oracle/pkg/errorx"
)

// Oracle handler error codes.
// Code format: 1XXYYZ
//   - 1:  module prefix (oracle handler)
//   - XX: resource group (00=common, 01=turn, 02=thread, 03=tool, 04=model)
//   - YY: sequential error number
//   - Z:  reserved (0)

const (
	// Common request errors (100xxx).
	ErrBind       = 100001
	ErrValidation = 100002

	// Turn errors (1001xx).
	ErrTurn              = 100101
	ErrThreadBusy        = 100102
	ErrModelUnavailable  = 100103
	ErrTurnLimitExceeded = 100104
	ErrTurnCancelled     = 100105
	ErrNoUserMessage     = 100106

	// Thread errors (1002xx).
	ErrThreadNotFound = 100201
	ErrThreadList     = 100202
	ErrThreadDelete   = 100203
)

func init() {
	// Common.
	errorx.MustRegister(newCoder(ErrBind, http.StatusBadRequest, "Request body binding failed"))
	errorx.MustRegister(newCoder(ErrValidation, http.StatusBadRequest, "Request validation failed"))

	// Turn.
	errorx.MustRegister(newCoder(ErrTurn, http.StatusInternalServerError, "Turn failed"))
	errorx.MustRegister(newCoder(ErrThreadBusy, http.StatusConflict, "A turn is already running on this thread"))
	errorx.MustRegister(newCoder(ErrModelUnavailable, http.StatusBadGateway, "The chat model failed"))
	errorx.MustRegister(newCoder(ErrTurnLimitExceeded, http.StatusUnprocessableEntity, "Turn exceeded the round trip limit"))
	errorx.MustRegister(newCoder(ErrTurnCancelled, http.StatusRequestTimeout, "Turn was cancelled"))
	errorx.MustRegister(newCoder(ErrNoUserMessage, http.StatusBadRequest, "No user message found in messages array"))

	// Thread.
	errorx.MustRegister(newCoder(ErrThreadNotFound, http.StatusNotFound, "Thread not found"))
	errorx.MustRegister(newCoder(ErrThreadList, http.StatusInternalServerError, "Failed to list threads"))
	errorx.MustRegister(newCoder(ErrThreadDelete, http.StatusInternalServerError, "Failed to delete thread"))
}

type coder struct {
	code int
	http int
	msg  string
}

func newCoder(code, httpStatus int, msg string) *coder {
	return &coder{code: code, http: httpStatus, msg: msg}
}

func (c *coder) Code() int         { return c.code }
func (c *coder) HTTPStatus() int   { return c.http }
func (c *coder) String() string    { return c.msg }
func (c *coder) Reference() string { return "" }

// turnCode maps a chat service error onto a handler error code.
func turnCode(err error) int {
	switch {
	case errors.Is(err, errno.ErrEmptyInput):
		return ErrValidation
	case errors.Is(err, errno.ErrThreadBusy):
		return ErrThreadBusy
	case errors.Is(err, errno.ErrModelClient):
		return ErrModelUnavailable
	case errors.Is(err, errno.ErrTurnLimitExceeded):
		return ErrTurnLimitExceeded
	case errors.Is(err, errno.ErrTurnCancelled):
		return ErrTurnCancelled
	case errors.Is(err, errno.ErrConversationNotFound):
		return ErrThreadNotFound
	default:
		return ErrTurn
	}
}
