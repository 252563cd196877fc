package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/BradenHooton/sentinel/internal/models"
)

// DashboardStore is the audit-store slice the dashboard reads from.
type DashboardStore interface {
	ListByAccount(ctx context.Context, accountID string, since time.Time, limit int) ([]*models.LoginAttempt, error)
	GetStats(ctx context.Context, accountID string, since time.Time) (*models.DashboardStats, error)
}

// DashboardConfig bounds the account history view.
type DashboardConfig struct {
	Lookback time.Duration
	Limit    int
}

// DashboardService assembles the per-account security overview: recent
// attempts plus aggregate counters over the lookback window.
type DashboardService struct {
	store  DashboardStore
	config DashboardConfig
	logger *slog.Logger
}

// Dashboard is the assembled view returned to the transport layer.
type Dashboard struct {
	Stats    *models.DashboardStats
	Attempts []*models.LoginAttempt
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(store DashboardStore, config DashboardConfig, log *slog.Logger) *DashboardService {
	return &DashboardService{
		store:  store,
		config: config,
		logger: log,
	}
}

// GetDashboard returns the security overview for an account.
func (s *DashboardService) GetDashboard(ctx context.Context, accountID string) (*Dashboard, error) {
	since := time.Now().UTC().Add(-s.config.Lookback)

	stats, err := s.store.GetStats(ctx, accountID, since)
	if err != nil {
		s.logger.Error("failed to load dashboard stats",
			slog.String("account_id", accountID),
			slog.Any("error", err),
		)
		return nil, models.ErrInternalServer
	}

	attempts, err := s.store.ListByAccount(ctx, accountID, since, s.config.Limit)
	if err != nil {
		s.logger.Error("failed to list login attempts",
			slog.String("account_id", accountID),
			slog.Any("error", err),
		)
		return nil, models.ErrInternalServer
	}

	return &Dashboard{Stats: stats, Attempts: attempts}, nil
}
