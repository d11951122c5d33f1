package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/pavelc4/aether-media-bot/internal/engine"
	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

type Middleware func(engine.HandlerFunc) engine.HandlerFunc

const slowThreshold = 100 * time.Millisecond

// Recover converts a panic in next into an error.
func Recover(next engine.HandlerFunc) engine.HandlerFunc {
	return func(ctx context.Context, ev engine.Event) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic recovered", "user", ev.UserID, "error", r, "stack", string(debug.Stack()))
				err = fmt.Errorf("handler panic: %v", r)
			}
		}()
		return next(ctx, ev)
	}
}

func Logger(name string) Middleware {
	return func(next engine.HandlerFunc) engine.HandlerFunc {
		return func(ctx context.Context, ev engine.Event) error {
			start := time.Now()
			err := next(ctx, ev)

			duration := time.Since(start)
			if duration > slowThreshold {
				logger.Info("Handler completed (slow)", "name", name, "user", ev.UserID, "duration", duration)
			} else {
				logger.Debug("Handler completed", "name", name, "user", ev.UserID, "duration", duration)
			}
			return err
		}
	}
}

// Chain wraps f so that the first middleware is the outermost.
func Chain(f engine.HandlerFunc, middlewares ...Middleware) engine.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		f = middlewares[i](f)
	}
	return f
}
