package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/sentinel/internal/auth"
	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/BradenHooton/sentinel/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockConfirmations is a func-field mock of the confirmation flow
type mockConfirmations struct {
	ConfirmFunc func(ctx context.Context, token string) error
	DenyFunc    func(ctx context.Context, token string) (*services.DenyResult, error)
}

func (m *mockConfirmations) Confirm(ctx context.Context, token string) error {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, token)
	}
	return models.ErrTokenNotFoundOrExpired
}

func (m *mockConfirmations) Deny(ctx context.Context, token string) (*services.DenyResult, error) {
	if m.DenyFunc != nil {
		return m.DenyFunc(ctx, token)
	}
	return nil, models.ErrTokenNotFoundOrExpired
}

// mockDashboards is a func-field mock of the dashboard assembler
type mockDashboards struct {
	GetDashboardFunc func(ctx context.Context, accountID string) (*services.Dashboard, error)
}

func (m *mockDashboards) GetDashboard(ctx context.Context, accountID string) (*services.Dashboard, error) {
	if m.GetDashboardFunc != nil {
		return m.GetDashboardFunc(ctx, accountID)
	}
	return &services.Dashboard{Stats: &models.DashboardStats{}}, nil
}

func newSecurityHandler(confirmations ConfirmationResolver, dashboards DashboardProvider) *SecurityHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSecurityHandler(confirmations, dashboards, logger)
}

func TestConfirmHandler_Success(t *testing.T) {
	var gotToken string
	confirmations := &mockConfirmations{
		ConfirmFunc: func(ctx context.Context, token string) error {
			gotToken = token
			return nil
		},
	}
	handler := newSecurityHandler(confirmations, &mockDashboards{})

	req := httptest.NewRequest(http.MethodGet, "/security/confirm?token=abc123", nil)
	rec := httptest.NewRecorder()
	handler.Confirm(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc123", gotToken)
	assert.Contains(t, rec.Body.String(), "confirmed")
}

func TestConfirmHandler_MissingToken(t *testing.T) {
	handler := newSecurityHandler(&mockConfirmations{}, &mockDashboards{})

	req := httptest.NewRequest(http.MethodGet, "/security/confirm", nil)
	rec := httptest.NewRecorder()
	handler.Confirm(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmHandler_ExpiredToken(t *testing.T) {
	handler := newSecurityHandler(&mockConfirmations{}, &mockDashboards{})

	req := httptest.NewRequest(http.MethodGet, "/security/confirm?token=stale", nil)
	rec := httptest.NewRecorder()
	handler.Confirm(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or has expired")
}

func TestDenyHandler_Success(t *testing.T) {
	confirmations := &mockConfirmations{
		DenyFunc: func(ctx context.Context, token string) (*services.DenyResult, error) {
			return &services.DenyResult{
				SweptAttempts: 2,
				ActionsTaken:  []string{"flagged the reported login"},
			}, nil
		},
	}
	handler := newSecurityHandler(confirmations, &mockDashboards{})

	req := httptest.NewRequest(http.MethodGet, "/security/deny?token=abc123", nil)
	rec := httptest.NewRecorder()
	handler.Deny(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "denied", resp["status"])
	assert.Equal(t, float64(2), resp["swept_attempts"])
}

func TestDenyHandler_ExpiredToken(t *testing.T) {
	handler := newSecurityHandler(&mockConfirmations{}, &mockDashboards{})

	req := httptest.NewRequest(http.MethodGet, "/security/deny?token=stale", nil)
	rec := httptest.NewRecorder()
	handler.Deny(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardHandler_RequiresClaims(t *testing.T) {
	handler := newSecurityHandler(&mockConfirmations{}, &mockDashboards{})

	req := httptest.NewRequest(http.MethodGet, "/security/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.Dashboard(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandler_Success(t *testing.T) {
	state := models.ConfirmationPending
	dashboards := &mockDashboards{
		GetDashboardFunc: func(ctx context.Context, accountID string) (*services.Dashboard, error) {
			assert.Equal(t, "acct-123", accountID)
			return &services.Dashboard{
				Stats: &models.DashboardStats{TotalLogins: 4, SuspiciousLogins: 1},
				Attempts: []*models.LoginAttempt{
					{
						ID:          "attempt-1",
						AttemptedAt: time.Now().UTC(),
						Status:      models.AttemptStatusSuccess,
						IPAddress:   "203.0.113.7",
						Device: models.DeviceInfo{
							BrowserFamily: "Chrome",
							OSFamily:      "Windows",
						},
						Location:          models.GeoLocation{Country: "Unknown", City: "Unknown"},
						IsSuspicious:      true,
						ConfirmationState: &state,
					},
				},
			}, nil
		},
	}
	handler := newSecurityHandler(&mockConfirmations{}, dashboards)

	req := httptest.NewRequest(http.MethodGet, "/security/dashboard", nil)
	req = req.WithContext(auth.ContextWithClaims(req.Context(), &auth.Claims{AccountID: "acct-123", Email: "user@example.com"}))
	rec := httptest.NewRecorder()
	handler.Dashboard(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Stats.TotalLogins)
	require.Len(t, resp.Attempts, 1)
	assert.Equal(t, "Chrome", resp.Attempts[0].Browser)
	assert.Equal(t, "Unknown", resp.Attempts[0].Location)
	require.NotNil(t, resp.Attempts[0].ConfirmationState)
	assert.Equal(t, models.ConfirmationPending, *resp.Attempts[0].ConfirmationState)
}
