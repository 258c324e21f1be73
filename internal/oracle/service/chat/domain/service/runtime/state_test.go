package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
)

func TestNextState(t *testing.T) {
	call := &entity.ToolCall{ID: "c1", Name: "weather_tool"}

	tests := []struct {
		name    string
		msgs    []*entity.Message
		want    entity.TurnState
		wantErr bool
	}{
		{"empty", nil, entity.StateDone, false},
		{"user", []*entity.Message{entity.NewUserMessage("hi")}, entity.StateModelThinking, false},
		{"tool result", []*entity.Message{
			entity.NewUserMessage("hi"),
			entity.NewAssistantMessage("", call),
			entity.NewToolMessage("c1", "weather_tool", "ok"),
		}, entity.StateModelThinking, false},
		{"assistant text", []*entity.Message{entity.NewAssistantMessage("done")}, entity.StateDone, false},
		{"assistant tool calls", []*entity.Message{entity.NewAssistantMessage("", call)}, entity.StateAwaitingTools, false},
		{"system", []*entity.Message{entity.NewSystemMessage("x")}, entity.StateDone, true},
		{"unknown role", []*entity.Message{{Role: "robot"}}, entity.StateDone, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextState(tt.msgs)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.ErrorIs(t, err, errno.ErrInvalidMessage)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMessageConversion(t *testing.T) {
	assistant := entity.NewAssistantMessage("thinking",
		&entity.ToolCall{ID: "c1", Name: "news_tool", Arguments: `{"topic":"science"}`})
	sm := ToSchemaMessage(assistant)
	assert.Equal(t, "assistant", string(sm.Role))
	assert.Len(t, sm.ToolCalls, 1)
	assert.Equal(t, "news_tool", sm.ToolCalls[0].Function.Name)

	back := FromSchemaMessage(sm)
	assert.Equal(t, entity.RoleAssistant, back.Role)
	assert.Equal(t, assistant.ToolCalls[0], back.ToolCalls[0])

	tool := entity.NewToolMessage("c1", "news_tool", "Latest science news:")
	sm = ToSchemaMessage(tool)
	assert.Equal(t, "c1", sm.ToolCallID)
	assert.Equal(t, "news_tool", sm.ToolName)
	back = FromSchemaMessage(sm)
	assert.Equal(t, "news_tool", back.Name)

	assert.Nil(t, FromSchemaMessage(nil))
}

func TestNormalizeToolCalls(t *testing.T) {
	m := entity.NewAssistantMessage("",
		&entity.ToolCall{ID: "a", Name: "weather_tool"},
		&entity.ToolCall{ID: "a", Name: "news_tool"},
		&entity.ToolCall{Name: "dictionary_tool"},
		nil,
		&entity.ToolCall{ID: "b"},
	)
	normalizeToolCalls(m)

	assert.Len(t, m.ToolCalls, 4)
	assert.Equal(t, "a", m.ToolCalls[0].ID)
	assert.NotEqual(t, "a", m.ToolCalls[1].ID)
	assert.NotEmpty(t, m.ToolCalls[2].ID)
	assert.Equal(t, unnamedTool, m.ToolCalls[3].Name)
	assert.NoError(t, m.Validate())
}
