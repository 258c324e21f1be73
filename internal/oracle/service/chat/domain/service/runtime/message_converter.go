package runtime

import (
	"github.com/cloudwego/eino/schema"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
)

var (
	schemaRoles = map[entity.Role]schema.RoleType{
		entity.RoleUser:      schema.User,
		entity.RoleAssistant: schema.Assistant,
		entity.RoleSystem:    schema.System,
		entity.RoleTool:      schema.Tool,
	}
	entityRoles = map[schema.RoleType]entity.Role{
		schema.User:      entity.RoleUser,
		schema.Assistant: entity.RoleAssistant,
		schema.System:    entity.RoleSystem,
		schema.Tool:      entity.RoleTool,
	}
)

// ToSchemaMessages converts a stored conversation into model input.
func ToSchemaMessages(msgs []*entity.Message) []*schema.Message {
	out := make([]*schema.Message, len(msgs))
	for i, msg := range msgs {
		out[i] = ToSchemaMessage(msg)
	}
	return out
}

// ToSchemaMessage converts one message. A failed tool result reaches the model as its
// rendered content; the structured error stays in the store.
func ToSchemaMessage(msg *entity.Message) *schema.Message {
	role, ok := schemaRoles[msg.Role]
	if !ok {
		role = schema.User
	}
	sm := &schema.Message{Role: role, Content: msg.Content}

	switch msg.Kind() {
	case entity.KindToolResult:
		sm.ToolCallID = msg.ToolCallID
		sm.ToolName = msg.Name
	case entity.KindAssistant:
		for _, call := range msg.ToolCalls {
			sm.ToolCalls = append(sm.ToolCalls, schema.ToolCall{
				ID:       call.ID,
				Type:     "function",
				Function: schema.FunctionCall{Name: call.Name, Arguments: call.Arguments},
			})
		}
	}
	return sm
}

// FromSchemaMessage converts a model reply. Unknown roles are read as assistant replies.
func FromSchemaMessage(sm *schema.Message) *entity.Message {
	if sm == nil {
		return nil
	}
	role, ok := entityRoles[sm.Role]
	if !ok {
		role = entity.RoleAssistant
	}
	msg := &entity.Message{Role: role, Content: sm.Content}

	switch role {
	case entity.RoleTool:
		msg.ToolCallID = sm.ToolCallID
		msg.Name = sm.ToolName
	case entity.RoleAssistant:
		for _, call := range sm.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, &entity.ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			})
		}
	}
	return msg
}
