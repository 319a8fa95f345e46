package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/seanmccall/folio/internal/repositories"
)

// CleanupManager periodically prunes aged login history from the database
type CleanupManager struct {
	loginRepo *repositories.LoginEventRepository
	logger    *slog.Logger
	interval  time.Duration
	maxAge    time.Duration
	stopCh    chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	loginRepo *repositories.LoginEventRepository,
	logger *slog.Logger,
	interval time.Duration,
	maxAge time.Duration,
) *CleanupManager {
	return &CleanupManager{
		loginRepo: loginRepo,
		logger:    logger,
		interval:  interval,
		maxAge:    maxAge,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// runCleanup removes login events older than the retention window
func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-cm.maxAge)
	rowsDeleted, err := cm.loginRepo.DeleteOlderThan(cleanupCtx, cutoff)
	if err != nil {
		cm.logger.Error("failed to prune login history", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("login history pruned", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
