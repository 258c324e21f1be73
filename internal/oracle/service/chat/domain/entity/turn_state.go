package entity

// TurnState is the state of the turn loop, derived from the last message.
type TurnState int

const (
	StateAwaitingInput TurnState = iota
	StateModelThinking
	StateAwaitingTools
	StateDone
)

func (s TurnState) String() string {
	switch s {
	case StateAwaitingInput:
		return "AWAITING_INPUT"
	case StateModelThinking:
		return "MODEL_THINKING"
	case StateAwaitingTools:
		return "AWAITING_TOOLS"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}
