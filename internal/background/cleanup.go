package background

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredAttemptStore deletes audit records past their retention window.
type ExpiredAttemptStore interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CleanupManager periodically removes expired login attempt records.
type CleanupManager struct {
	store    ExpiredAttemptStore
	interval time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(store ExpiredAttemptStore, interval time.Duration, logger *slog.Logger) *CleanupManager {
	return &CleanupManager{
		store:    store,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the cleanup loop until Stop is called. An initial sweep runs
// immediately so restarts do not let expired records pile up.
func (cm *CleanupManager) Start(ctx context.Context) {
	cm.runCleanup(ctx)

	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop signals the cleanup loop to exit.
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	deleted, err := cm.store.DeleteExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to delete expired login attempts", slog.Any("error", err))
		return
	}
	if deleted > 0 {
		cm.logger.Info("deleted expired login attempts", slog.Int64("count", deleted))
	}
}
