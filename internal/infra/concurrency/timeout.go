// Package concurrency holds small utilities for safe concurrent
// execution. This file implements an automatic process timeout.
package concurrency

import (
	"context"
	"time"

	"go.uber.org/zap"

	"notifyengine/internal/infra/logger"
)

// StartTimeoutTimer starts a goroutine that calls cancelFunc after
// timeout seconds, useful for a bounded demo run (e.g. `-run-for`) or
// automatic graceful shutdown in test scenarios. Returns immediately; a
// non-positive timeout or nil cancelFunc is a no-op.
func StartTimeoutTimer(ctx context.Context, timeout int, cancelFunc context.CancelFunc) error {
	if timeout <= 0 || cancelFunc == nil {
		return nil
	}

	duration := time.Duration(timeout) * time.Second

	go func() {
		logger.Info("auto-shutdown timer started", zap.Duration("timeout", duration))

		timer := time.NewTimer(duration)
		defer timer.Stop()

		select {
		case <-timer.C:
			logger.Info("auto-shutdown timeout reached, initiating graceful shutdown")
			cancelFunc()
		case <-ctx.Done():
			logger.Debug("auto-shutdown timer cancelled due to context cancellation")
			return
		}
	}()
	return nil
}
