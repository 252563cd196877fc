package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/BradenHooton/sentinel/internal/auth"
	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/BradenHooton/sentinel/pkg/logger"
)

// MockAuditStore is a mock implementation of the audit store interfaces
type MockAuditStore struct {
	CreateFunc                   func(ctx context.Context, attempt *models.LoginAttempt) error
	CountFailuresByIPFunc        func(ctx context.Context, ip string, since time.Time) (int, error)
	CountFailuresByEmailFunc     func(ctx context.Context, email string, since time.Time) (int, error)
	RecentSuccessesByAccountFunc func(ctx context.Context, accountID string, since time.Time, limit int) ([]*models.LoginAttempt, error)
	GetPendingByTokenHashFunc    func(ctx context.Context, tokenHash string, attemptedAfter time.Time) (*models.LoginAttempt, error)
	ConsumeConfirmationFunc      func(ctx context.Context, id, newState, newStatus string, confirmedAt time.Time) error
	SweepDeniedFunc              func(ctx context.Context, accountID, ip string, since time.Time) (int64, error)
	MarkNotificationSentFunc     func(ctx context.Context, id string) error
	ListByAccountFunc            func(ctx context.Context, accountID string, since time.Time, limit int) ([]*models.LoginAttempt, error)
	GetStatsFunc                 func(ctx context.Context, accountID string, since time.Time) (*models.DashboardStats, error)
}

func (m *MockAuditStore) Create(ctx context.Context, attempt *models.LoginAttempt) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, attempt)
	}
	return nil
}

func (m *MockAuditStore) CountFailuresByIP(ctx context.Context, ip string, since time.Time) (int, error) {
	if m.CountFailuresByIPFunc != nil {
		return m.CountFailuresByIPFunc(ctx, ip, since)
	}
	return 0, nil
}

func (m *MockAuditStore) CountFailuresByEmail(ctx context.Context, email string, since time.Time) (int, error) {
	if m.CountFailuresByEmailFunc != nil {
		return m.CountFailuresByEmailFunc(ctx, email, since)
	}
	return 0, nil
}

func (m *MockAuditStore) RecentSuccessesByAccount(ctx context.Context, accountID string, since time.Time, limit int) ([]*models.LoginAttempt, error) {
	if m.RecentSuccessesByAccountFunc != nil {
		return m.RecentSuccessesByAccountFunc(ctx, accountID, since, limit)
	}
	return nil, nil
}

func (m *MockAuditStore) GetPendingByTokenHash(ctx context.Context, tokenHash string, attemptedAfter time.Time) (*models.LoginAttempt, error) {
	if m.GetPendingByTokenHashFunc != nil {
		return m.GetPendingByTokenHashFunc(ctx, tokenHash, attemptedAfter)
	}
	return nil, models.ErrNotFound
}

func (m *MockAuditStore) ConsumeConfirmation(ctx context.Context, id, newState, newStatus string, confirmedAt time.Time) error {
	if m.ConsumeConfirmationFunc != nil {
		return m.ConsumeConfirmationFunc(ctx, id, newState, newStatus, confirmedAt)
	}
	return nil
}

func (m *MockAuditStore) SweepDenied(ctx context.Context, accountID, ip string, since time.Time) (int64, error) {
	if m.SweepDeniedFunc != nil {
		return m.SweepDeniedFunc(ctx, accountID, ip, since)
	}
	return 0, nil
}

func (m *MockAuditStore) MarkNotificationSent(ctx context.Context, id string) error {
	if m.MarkNotificationSentFunc != nil {
		return m.MarkNotificationSentFunc(ctx, id)
	}
	return nil
}

func (m *MockAuditStore) ListByAccount(ctx context.Context, accountID string, since time.Time, limit int) ([]*models.LoginAttempt, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, since, limit)
	}
	return nil, nil
}

func (m *MockAuditStore) GetStats(ctx context.Context, accountID string, since time.Time) (*models.DashboardStats, error) {
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(ctx, accountID, since)
	}
	return &models.DashboardStats{}, nil
}

// MockAccountStore is a mock implementation of the account store
type MockAccountStore struct {
	GetByEmailFunc func(ctx context.Context, email string) (*models.Account, error)
	GetByIDFunc    func(ctx context.Context, id string) (*models.Account, error)
}

func (m *MockAccountStore) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

// MockDispatcher is a mock implementation of NotificationDispatcher
type MockDispatcher struct {
	SendLoginConfirmationFunc func(ctx context.Context, email, name string, details LoginConfirmationDetails) error
	SendSecurityAlertFunc     func(ctx context.Context, email, name string, details SecurityAlertDetails) error
}

func (m *MockDispatcher) SendLoginConfirmation(ctx context.Context, email, name string, details LoginConfirmationDetails) error {
	if m.SendLoginConfirmationFunc != nil {
		return m.SendLoginConfirmationFunc(ctx, email, name, details)
	}
	return nil
}

func (m *MockDispatcher) SendSecurityAlert(ctx context.Context, email, name string, details SecurityAlertDetails) error {
	if m.SendSecurityAlertFunc != nil {
		return m.SendSecurityAlertFunc(ctx, email, name, details)
	}
	return nil
}

// MockGeoResolver is a mock implementation of GeoResolver
type MockGeoResolver struct {
	ResolveFunc func(ctx context.Context, ip string) (models.GeoLocation, error)
}

func (m *MockGeoResolver) Resolve(ctx context.Context, ip string) (models.GeoLocation, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, ip)
	}
	return models.UnknownLocation(), nil
}

// MockLimiter is a mock implementation of CredentialLimiter
type MockLimiter struct {
	CheckIPBlockedFunc    func(ctx context.Context, ip string) bool
	CheckEmailLimitedFunc func(ctx context.Context, email string) bool
}

func (m *MockLimiter) CheckIPBlocked(ctx context.Context, ip string) bool {
	if m.CheckIPBlockedFunc != nil {
		return m.CheckIPBlockedFunc(ctx, ip)
	}
	return false
}

func (m *MockLimiter) CheckEmailLimited(ctx context.Context, email string) bool {
	if m.CheckEmailLimitedFunc != nil {
		return m.CheckEmailLimitedFunc(ctx, email)
	}
	return false
}

// MockRecognizer is a mock implementation of DeviceRecognizer
type MockRecognizer struct {
	RecognizeFunc func(ctx context.Context, accountID, ip, userAgentRaw string) (bool, bool)
}

func (m *MockRecognizer) Recognize(ctx context.Context, accountID, ip, userAgentRaw string) (bool, bool) {
	if m.RecognizeFunc != nil {
		return m.RecognizeFunc(ctx, accountID, ip, userAgentRaw)
	}
	return false, false
}

// MockTokenIssuer is a mock implementation of TokenIssuer
type MockTokenIssuer struct {
	GenerateAccessTokenFunc func(accountID, email string) (string, error)
}

func (m *MockTokenIssuer) GenerateAccessToken(accountID, email string) (string, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(accountID, email)
	}
	return "test-access-token", nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuditLogger() *logger.AuditLogger {
	return logger.NewAuditLogger(newTestLogger())
}

// newTestTiming disables the failure-path delay so tests stay fast.
func newTestTiming() *auth.TimingDelay {
	return auth.NewTimingDelay(auth.TimingConfig{BaseDelayMs: 0, RandomDelayMs: 0})
}
