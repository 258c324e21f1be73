package errno

import (
	"errors"
)

var (
	// ErrToolValidation marks tool arguments that failed the parameter schema.
	// It is recovered into a ToolResult and never ends a turn.
	ErrToolValidation = errors.New("tool arguments invalid")
	// ErrToolExecution marks a failed tool action (upstream error, timeout, panic).
	ErrToolExecution = errors.New("tool execution failed")

	ErrModelClient          = errors.New("model client error")
	ErrTurnLimitExceeded    = errors.New("turn limit exceeded")
	ErrThreadBusy           = errors.New("thread busy")
	ErrTurnCancelled        = errors.New("turn cancelled")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrEmptyInput           = errors.New("empty input")
	ErrModelNotToolCapable  = errors.New("model not tool capable")
	ErrInvalidMessage       = errors.New("invalid message")
)
