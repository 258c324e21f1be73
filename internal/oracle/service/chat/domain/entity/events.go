package entity

// EventType identifies the type of a streamed turn event.
type EventType string

const (
	// EventToolCallStart is emitted before a tool call runs.
	EventToolCallStart EventType = "tool_call_start"
	// EventToolCallEnd carries the result of a tool call.
	EventToolCallEnd EventType = "tool_call_end"
	// EventMessage carries the final assistant reply.
	EventMessage EventType = "message"
	EventError   EventType = "error"
	// EventDone is always the last event of a stream.
	EventDone EventType = "done"
)

// TurnEvent is a progress event emitted while a turn runs.
//
// Events flow through schema.Pipe[*TurnEvent] from the turn goroutine to the caller.
type TurnEvent struct {
	Type     EventType `json:"type"`
	ThreadID string    `json:"thread_id,omitempty"`

	// Delta holds the reply text for EventMessage.
	Delta string `json:"delta,omitempty"`

	ToolCall   *ToolCall   `json:"tool_call,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`

	Error string `json:"error,omitempty"`

	// RoundTrips is set on EventDone.
	RoundTrips int `json:"round_trips,omitempty"`
}
