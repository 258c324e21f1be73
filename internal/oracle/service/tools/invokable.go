package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"

	"github.com/kiosk404/oracle/pkg/utils/json"
)

// FromInvokableTool adapts an eino tool (for example one discovered over MCP) to a ToolSpec.
// The tool's own schema is advertised to the model unchanged.
func FromInvokableTool(ctx context.Context, t tool.InvokableTool) (*ToolSpec, error) {
	info, err := t.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tool info: %w", err)
	}
	if info == nil || info.Name == "" {
		return nil, ErrToolNameEmpty
	}

	return &ToolSpec{
		Name:        info.Name,
		Description: info.Desc,
		Schema:      info,
		Action: func(ctx context.Context, args map[string]any) (string, error) {
			argumentsInJSON, err := json.MarshalString(args)
			if err != nil {
				return "", fmt.Errorf("failed to marshal arguments: %w", err)
			}
			return t.InvokableRun(ctx, argumentsInJSON)
		},
	}, nil
}
