package tools

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
)

func newTestExecutor(t *testing.T, timeout time.Duration, specs ...*ToolSpec) *Executor {
	t.Helper()
	r, err := NewRegistry(specs...)
	require.NoError(t, err)
	return NewExecutor(r, timeout)
}

func TestExecutor_Success(t *testing.T) {
	e := newTestExecutor(t, time.Second, &ToolSpec{
		Name:       "weather_tool",
		Parameters: []ParameterDef{{Name: "location", Type: TypeString, Required: true}},
		Action: func(_ context.Context, args map[string]any) (string, error) {
			return "Clear in " + args["location"].(string), nil
		},
	})

	res := e.Execute(context.Background(), &entity.ToolCall{ID: "c1", Name: "weather_tool", Arguments: `{"location":"Paris,FR"}`})
	assert.False(t, res.Failed())
	assert.Equal(t, "c1", res.ToolCallID)
	assert.Equal(t, "weather_tool", res.Name)
	assert.Equal(t, "Clear in Paris,FR", res.Content)
}

func TestExecutor_Failures(t *testing.T) {
	var invoked atomic.Bool
	e := newTestExecutor(t, 50*time.Millisecond,
		&ToolSpec{
			Name:        "weather_tool",
			ErrorMarker: "WEATHER_ERROR",
			Parameters:  []ParameterDef{{Name: "location", Type: TypeString, Required: true}},
			Action: func(context.Context, map[string]any) (string, error) {
				invoked.Store(true)
				return "", errors.New("city not found")
			},
		},
		&ToolSpec{
			Name: "slow_tool",
			Action: func(ctx context.Context, _ map[string]any) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			},
		},
		&ToolSpec{
			Name: "stuck_tool",
			Action: func(context.Context, map[string]any) (string, error) {
				time.Sleep(time.Second)
				return "late", nil
			},
		},
		&ToolSpec{
			Name: "panic_tool",
			Action: func(context.Context, map[string]any) (string, error) {
				panic("boom")
			},
		},
	)

	tests := []struct {
		name       string
		call       *entity.ToolCall
		wantKind   entity.ToolErrorKind
		wantPrefix string
	}{
		{"unknown tool", &entity.ToolCall{ID: "1", Name: "stock_tool"}, entity.ToolErrorUnknownTool, `TOOL_ERROR: unknown tool "stock_tool"`},
		{"malformed json", &entity.ToolCall{ID: "2", Name: "weather_tool", Arguments: `{"location":`}, entity.ToolErrorInvalidArguments, "WEATHER_ERROR:"},
		{"missing argument", &entity.ToolCall{ID: "3", Name: "weather_tool", Arguments: `{}`}, entity.ToolErrorInvalidArguments, "WEATHER_ERROR: tool arguments invalid"},
		{"action error", &entity.ToolCall{ID: "4", Name: "weather_tool", Arguments: `{"location":"Nowhere,XX"}`}, entity.ToolErrorExecution, "WEATHER_ERROR: city not found"},
		{"timeout honoring ctx", &entity.ToolCall{ID: "5", Name: "slow_tool"}, entity.ToolErrorTimeout, "SLOW_ERROR: timed out"},
		{"timeout ignoring ctx", &entity.ToolCall{ID: "6", Name: "stuck_tool"}, entity.ToolErrorTimeout, "STUCK_ERROR: timed out"},
		{"panic", &entity.ToolCall{ID: "7", Name: "panic_tool"}, entity.ToolErrorExecution, "PANIC_ERROR:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Execute(context.Background(), tt.call)
			require.True(t, res.Failed())
			assert.Equal(t, tt.call.ID, res.ToolCallID)
			assert.Equal(t, tt.call.Name, res.Name)
			assert.Equal(t, tt.wantKind, res.Error.Kind)
			assert.Equal(t, tt.call.Name, res.Error.ToolName)
			assert.Contains(t, res.Content, tt.wantPrefix)
		})
	}

	assert.True(t, invoked.Load())
}

func TestExecutor_InvalidArgumentsSkipAction(t *testing.T) {
	var calls atomic.Int32
	e := newTestExecutor(t, time.Second, &ToolSpec{
		Name:       "dictionary_tool",
		Parameters: []ParameterDef{{Name: "word", Type: TypeString, Required: true}},
		Action: func(context.Context, map[string]any) (string, error) {
			calls.Add(1)
			return "x", nil
		},
	})

	res := e.Execute(context.Background(), &entity.ToolCall{ID: "1", Name: "dictionary_tool", Arguments: `{"word":7}`})
	assert.Equal(t, entity.ToolErrorInvalidArguments, res.Error.Kind)
	assert.Zero(t, calls.Load())
}

type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (o *recordingObserver) OnToolStart(_ context.Context, call *entity.ToolCall) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "start:"+call.ID)
}

func (o *recordingObserver) OnToolEnd(_ context.Context, call *entity.ToolCall, _ *entity.ToolResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "end:"+call.ID)
}

func TestExecutor_ExecuteBatch(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		name := "sequential"
		if parallel {
			name = "parallel"
		}
		t.Run(name, func(t *testing.T) {
			e := newTestExecutor(t, time.Second, &ToolSpec{
				Name:       "sleep_tool",
				Parameters: []ParameterDef{{Name: "ms", Type: TypeInteger, Required: true}},
				Action: func(_ context.Context, args map[string]any) (string, error) {
					time.Sleep(time.Duration(args["ms"].(float64)) * time.Millisecond)
					return "slept", nil
				},
			})

			calls := []*entity.ToolCall{
				{ID: "a", Name: "sleep_tool", Arguments: `{"ms":30}`},
				{ID: "b", Name: "sleep_tool", Arguments: `{"ms":1}`},
				{ID: "c", Name: "missing"},
			}
			obs := &recordingObserver{}
			results := e.ExecuteBatch(WithObserver(context.Background(), obs), calls, parallel)

			require.Len(t, results, 3)
			assert.Equal(t, "a", results[0].ToolCallID)
			assert.Equal(t, "b", results[1].ToolCallID)
			assert.Equal(t, "c", results[2].ToolCallID)
			assert.True(t, results[2].Failed())
			assert.Len(t, obs.events, 6)
			if !parallel {
				assert.Equal(t, []string{"start:a", "end:a", "start:b", "end:b", "start:c", "end:c"}, obs.events)
			}
		})
	}
}
