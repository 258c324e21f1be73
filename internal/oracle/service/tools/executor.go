package tools

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
	"github.com/kiosk404/oracle/pkg/logger"
)

const (
	// DefaultTimeout bounds a single tool call.
	DefaultTimeout = 10 * time.Second

	unknownToolMarker = "TOOL_ERROR"
	maxParallelCalls  = 8
)

// Observer receives tool lifecycle notifications. Carried on the context.
type Observer interface {
	OnToolStart(ctx context.Context, call *entity.ToolCall)
	OnToolEnd(ctx context.Context, call *entity.ToolCall, result *entity.ToolResult)
}

type observerKey struct{}

// WithObserver attaches obs to ctx for every Execute call made with it.
func WithObserver(ctx context.Context, obs Observer) context.Context {
	return context.WithValue(ctx, observerKey{}, obs)
}

func observerFrom(ctx context.Context) Observer {
	obs, _ := ctx.Value(observerKey{}).(Observer)
	return obs
}

// Executor runs tool calls against a Registry. It never returns errors or panics:
// every failure becomes a ToolResult carrying a structured ToolError.
type Executor struct {
	registry *Registry
	timeout  time.Duration
}

// NewExecutor creates an executor; a non-positive timeout selects DefaultTimeout.
func NewExecutor(registry *Registry, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{registry: registry, timeout: timeout}
}

// Registry returns the registry the executor resolves tools from.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute runs one tool call.
func (e *Executor) Execute(ctx context.Context, call *entity.ToolCall) *entity.ToolResult {
	obs := observerFrom(ctx)
	if obs != nil {
		obs.OnToolStart(ctx, call)
	}

	start := time.Now()
	result := e.execute(ctx, call)

	if result.Failed() {
		logger.WarnX("tools", "[Executor] %s (%s) failed after %v: %s", call.Name, call.ID, time.Since(start), result.Error.Error())
	} else {
		logger.DebugX("tools", "[Executor] %s (%s) finished in %v", call.Name, call.ID, time.Since(start))
	}

	if obs != nil {
		obs.OnToolEnd(ctx, call, result)
	}
	return result
}

// ExecuteBatch runs calls and returns one result per call in call order.
// With parallel set the calls run concurrently; result order is unchanged.
func (e *Executor) ExecuteBatch(ctx context.Context, calls []*entity.ToolCall, parallel bool) []*entity.ToolResult {
	results := make([]*entity.ToolResult, len(calls))
	if !parallel || len(calls) < 2 {
		for i, call := range calls {
			results[i] = e.Execute(ctx, call)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(maxParallelCalls)
	for i, call := range calls {
		g.Go(func() error {
			results[i] = e.Execute(ctx, call)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (e *Executor) execute(ctx context.Context, call *entity.ToolCall) *entity.ToolResult {
	spec, ok := e.registry.Lookup(call.Name)
	if !ok {
		return failure(call, unknownToolMarker, entity.ToolErrorUnknownTool,
			fmt.Sprintf("unknown tool %q", call.Name))
	}

	args, err := call.DecodeArguments()
	if err == nil {
		err = spec.Validate(args)
	}
	if err != nil {
		return failure(call, spec.Marker(), entity.ToolErrorInvalidArguments, err.Error())
	}

	timeout := e.timeout
	if spec.Timeout > 0 {
		timeout = spec.Timeout
	}
	content, err := invoke(ctx, spec, args, timeout)
	if err != nil {
		kind := entity.ToolErrorExecution
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			kind = entity.ToolErrorTimeout
			err = fmt.Errorf("timed out after %v", timeout)
		}
		return failure(call, spec.Marker(), kind, err.Error())
	}

	return &entity.ToolResult{
		ToolCallID: call.ID,
		Name:       call.Name,
		Content:    content,
	}
}

type invokeResult struct {
	content string
	err     error
}

// invoke runs the action under its own deadline. An action that ignores its context is
// abandoned when the deadline passes.
func invoke(ctx context.Context, spec *ToolSpec, args map[string]any, timeout time.Duration) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan invokeResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorX("tools", "[Executor] %s panicked: %v\n%s", spec.Name, r, debug.Stack())
				done <- invokeResult{err: fmt.Errorf("%w: panic: %v", errno.ErrToolExecution, r)}
			}
		}()
		content, err := spec.Action(callCtx, args)
		done <- invokeResult{content: content, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && callCtx.Err() != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", context.DeadlineExceeded
		}
		return res.content, res.err
	case <-callCtx.Done():
		return "", callCtx.Err()
	}
}

func failure(call *entity.ToolCall, marker string, kind entity.ToolErrorKind, msg string) *entity.ToolResult {
	te := &entity.ToolError{ToolName: call.Name, Kind: kind, Message: msg}
	return &entity.ToolResult{
		ToolCallID: call.ID,
		Name:       call.Name,
		Content:    te.Render(marker),
		Error:      te,
	}
}
