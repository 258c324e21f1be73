package runtime

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"

	"github.com/kiosk404/oracle/pkg/logger"
)

type startKey struct{}

// NewLoggingHandler returns an Eino callbacks.Handler that logs node timings and errors
// of the turn graph.
func NewLoggingHandler(threadID string) callbacks.Handler {
	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
			return context.WithValue(ctx, startKey{}, time.Now())
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackOutput) context.Context {
			if start, ok := ctx.Value(startKey{}).(time.Time); ok {
				logger.DebugX(moduleName, "[TurnGraph] thread %s: %s/%s took %v",
					threadID, info.Component, info.Name, time.Since(start))
			}
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			logger.WarnX(moduleName, "[TurnGraph] thread %s: error in %s/%s: %v", threadID, info.Component, info.Name, err)
			return ctx
		}).
		Build()
}
