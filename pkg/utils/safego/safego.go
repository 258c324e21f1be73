package safego

import (
	"context"
	"runtime/debug"

	"github.com/kiosk404/oracle/pkg/logger"
)

// Go runs fn in a new goroutine and recovers any panic it raises.
func Go(ctx context.Context, fn func()) {
	go func() {
		defer Recover(ctx)
		fn()
	}()
}

// Recover logs a recovered panic. It must be called directly by a deferred statement.
func Recover(ctx context.Context) {
	if r := recover(); r != nil {
		logger.Error("[safego] goroutine panic: %v\n%s", r, debug.Stack())
	}
}
