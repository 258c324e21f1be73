package runtime

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
)

// ModelClient is the boundary to the chat model: given the ordered conversation and the
// tool schemas it returns exactly one assistant message.
type ModelClient interface {
	Generate(ctx context.Context, msgs []*entity.Message, tools []*schema.ToolInfo) (*entity.Message, error)
}

// PromptSource supplies the system prompt prepended to every model call.
type PromptSource interface {
	SystemPrompt() string
}

// EinoModelClient adapts an Eino tool-calling chat model to ModelClient.
type EinoModelClient struct {
	chatModel model.ToolCallingChatModel
	prompt    PromptSource
}

var _ ModelClient = (*EinoModelClient)(nil)

// NewEinoModelClient wraps chatModel. prompt may be nil.
func NewEinoModelClient(chatModel model.ToolCallingChatModel, prompt PromptSource) *EinoModelClient {
	return &EinoModelClient{chatModel: chatModel, prompt: prompt}
}

func (c *EinoModelClient) Generate(ctx context.Context, msgs []*entity.Message, tools []*schema.ToolInfo) (*entity.Message, error) {
	cm := c.chatModel
	if len(tools) > 0 {
		bound, err := cm.WithTools(tools)
		if err != nil {
			return nil, err
		}
		cm = bound
	}

	input := make([]*schema.Message, 0, len(msgs)+1)
	if c.prompt != nil {
		if sp := c.prompt.SystemPrompt(); sp != "" {
			input = append(input, schema.SystemMessage(sp))
		}
	}
	input = append(input, ToSchemaMessages(msgs)...)

	out, err := cm.Generate(ctx, input)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New("model returned no message")
	}

	reply := FromSchemaMessage(out)
	reply.Role = entity.RoleAssistant
	reply.ToolCallID = ""
	reply.Name = ""
	return reply, nil
}
