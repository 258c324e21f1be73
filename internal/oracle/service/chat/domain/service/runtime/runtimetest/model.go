// Package runtimetest provides deterministic model clients for turn loop tests.
package runtimetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
)

// ModelFunc adapts a function to runtime.ModelClient.
type ModelFunc func(ctx context.Context, msgs []*entity.Message, tools []*schema.ToolInfo) (*entity.Message, error)

func (f ModelFunc) Generate(ctx context.Context, msgs []*entity.Message, tools []*schema.ToolInfo) (*entity.Message, error) {
	return f(ctx, msgs, tools)
}

// ScriptedModel replays replies in order and records every conversation it was shown.
type ScriptedModel struct {
	mu      sync.Mutex
	replies []func() (*entity.Message, error)
	calls   [][]*entity.Message
	tools   [][]*schema.ToolInfo
}

// NewScriptedModel creates an empty script.
func NewScriptedModel() *ScriptedModel {
	return &ScriptedModel{}
}

// Reply queues a text reply.
func (m *ScriptedModel) Reply(text string) *ScriptedModel {
	return m.push(func() (*entity.Message, error) {
		return entity.NewAssistantMessage(text), nil
	})
}

// Call queues a reply requesting the given tool calls.
func (m *ScriptedModel) Call(calls ...*entity.ToolCall) *ScriptedModel {
	return m.push(func() (*entity.Message, error) {
		cp := make([]*entity.ToolCall, 0, len(calls))
		for _, c := range calls {
			tc := *c
			cp = append(cp, &tc)
		}
		return entity.NewAssistantMessage("", cp...), nil
	})
}

// Fail queues an error.
func (m *ScriptedModel) Fail(err error) *ScriptedModel {
	return m.push(func() (*entity.Message, error) { return nil, err })
}

func (m *ScriptedModel) push(f func() (*entity.Message, error)) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, f)
	return m
}

func (m *ScriptedModel) Generate(_ context.Context, msgs []*entity.Message, tools []*schema.ToolInfo) (*entity.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, msgs)
	m.tools = append(m.tools, tools)
	if len(m.replies) == 0 {
		return nil, fmt.Errorf("script exhausted after %d calls", len(m.calls)-1)
	}
	next := m.replies[0]
	m.replies = m.replies[1:]
	return next()
}

// Calls returns the conversations passed to Generate, one per invocation.
func (m *ScriptedModel) Calls() [][]*entity.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]*entity.Message, len(m.calls))
	copy(out, m.calls)
	return out
}

// Tools returns the tool schemas passed to the first invocation.
func (m *ScriptedModel) Tools() []*schema.ToolInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tools) == 0 {
		return nil
	}
	return m.tools[0]
}

// LoopingModel requests the same tool forever.
func LoopingModel(toolName string) ModelFunc {
	return func(context.Context, []*entity.Message, []*schema.ToolInfo) (*entity.Message, error) {
		return entity.NewAssistantMessage("", &entity.ToolCall{ID: "loop", Name: toolName, Arguments: `{}`}), nil
	}
}
