package runtime

import (
	"fmt"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
)

// NextState applies the transition function to the last message of a conversation.
func NextState(msgs []*entity.Message) (entity.TurnState, error) {
	if len(msgs) == 0 {
		return entity.StateDone, nil
	}

	last := msgs[len(msgs)-1]
	switch last.Kind() {
	case entity.KindUser, entity.KindToolResult:
		return entity.StateModelThinking, nil
	case entity.KindAssistant:
		if last.HasToolCalls() {
			return entity.StateAwaitingTools, nil
		}
		return entity.StateDone, nil
	case entity.KindSystem:
		return entity.StateDone, fmt.Errorf("%w: conversation ends with a system message", errno.ErrInvalidMessage)
	case entity.KindInvalid:
		return entity.StateDone, fmt.Errorf("%w: cannot transition from role %q", errno.ErrInvalidMessage, last.Role)
	default:
		return entity.StateDone, fmt.Errorf("%w: unhandled message kind %s", errno.ErrInvalidMessage, last.Kind())
	}
}
