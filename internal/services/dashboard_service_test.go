package services

import (
	"context"
	"testing"
	"time"

	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDashboard_AssemblesStatsAndHistory(t *testing.T) {
	var statsSince, listSince time.Time
	store := &MockAuditStore{
		GetStatsFunc: func(ctx context.Context, accountID string, since time.Time) (*models.DashboardStats, error) {
			statsSince = since
			return &models.DashboardStats{TotalLogins: 12, SuspiciousLogins: 2}, nil
		},
		ListByAccountFunc: func(ctx context.Context, accountID string, since time.Time, limit int) ([]*models.LoginAttempt, error) {
			listSince = since
			return []*models.LoginAttempt{{ID: "attempt-1"}}, nil
		},
	}
	svc := NewDashboardService(store, DashboardConfig{Lookback: 30 * 24 * time.Hour, Limit: 50}, newTestLogger())

	dashboard, err := svc.GetDashboard(context.Background(), "acct-123")

	require.NoError(t, err)
	assert.Equal(t, 12, dashboard.Stats.TotalLogins)
	assert.Len(t, dashboard.Attempts, 1)
	expected := time.Now().UTC().Add(-30 * 24 * time.Hour)
	assert.WithinDuration(t, expected, statsSince, 2*time.Second)
	assert.Equal(t, statsSince, listSince)
}

func TestGetDashboard_StoreError(t *testing.T) {
	store := &MockAuditStore{
		GetStatsFunc: func(ctx context.Context, accountID string, since time.Time) (*models.DashboardStats, error) {
			return nil, assert.AnError
		},
	}
	svc := NewDashboardService(store, DashboardConfig{Lookback: 30 * 24 * time.Hour, Limit: 50}, newTestLogger())

	dashboard, err := svc.GetDashboard(context.Background(), "acct-123")

	assert.ErrorIs(t, err, models.ErrInternalServer)
	assert.Nil(t, dashboard)
}
