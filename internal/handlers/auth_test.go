package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/BradenHooton/sentinel/internal/services"
	pkghttp "github.com/BradenHooton/sentinel/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLoginService is a func-field mock of the login orchestrator
type mockLoginService struct {
	LoginFunc func(ctx context.Context, email, password, ip, userAgentRaw string) (*services.LoginResult, error)
}

func (m *mockLoginService) Login(ctx context.Context, email, password, ip, userAgentRaw string) (*services.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, ip, userAgentRaw)
	}
	return nil, models.ErrInvalidCredentials
}

func newAuthHandler(svc LoginService) *AuthHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthHandler(svc, &pkghttp.IPConfig{}, logger)
}

func postLogin(handler *AuthHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent/1.0")
	req.RemoteAddr = "203.0.113.7:54321"
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	return rec
}

func TestLoginHandler_Success(t *testing.T) {
	svc := &mockLoginService{
		LoginFunc: func(ctx context.Context, email, password, ip, ua string) (*services.LoginResult, error) {
			return &services.LoginResult{
				AccessToken: "jwt-token",
				ExpiresIn:   900,
				AccountID:   "acct-123",
				Suspicious:  true,
			}, nil
		},
	}
	rec := postLogin(newAuthHandler(svc), `{"email":"user@example.com","password":"pw"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "jwt-token", resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.True(t, resp.Suspicious)
}

func TestLoginHandler_PassesClientContext(t *testing.T) {
	var gotIP, gotUA string
	svc := &mockLoginService{
		LoginFunc: func(ctx context.Context, email, password, ip, ua string) (*services.LoginResult, error) {
			gotIP, gotUA = ip, ua
			return &services.LoginResult{AccessToken: "t"}, nil
		},
	}
	postLogin(newAuthHandler(svc), `{"email":"user@example.com","password":"pw"}`)

	assert.Equal(t, "203.0.113.7", gotIP)
	assert.Equal(t, "test-agent/1.0", gotUA)
}

func TestLoginHandler_InvalidJSON(t *testing.T) {
	rec := postLogin(newAuthHandler(&mockLoginService{}), `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHandler_MissingFields(t *testing.T) {
	rec := postLogin(newAuthHandler(&mockLoginService{}), `{"email":"user@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password is required")
}

func TestLoginHandler_InvalidCredentialsStaysGeneric(t *testing.T) {
	rec := postLogin(newAuthHandler(&mockLoginService{}), `{"email":"ghost@example.com","password":"pw"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication failed")
	assert.NotContains(t, rec.Body.String(), "email")
}

func TestLoginHandler_VerificationRequired(t *testing.T) {
	svc := &mockLoginService{
		LoginFunc: func(ctx context.Context, email, password, ip, ua string) (*services.LoginResult, error) {
			return nil, models.ErrVerificationRequired
		},
	}
	rec := postLogin(newAuthHandler(svc), `{"email":"user@example.com","password":"pw"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["requires_verification"])
}

func TestLoginHandler_RateLimited(t *testing.T) {
	svc := &mockLoginService{
		LoginFunc: func(ctx context.Context, email, password, ip, ua string) (*services.LoginResult, error) {
			return nil, models.ErrRateLimited
		},
	}
	rec := postLogin(newAuthHandler(svc), `{"email":"user@example.com","password":"pw"}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["blocked"])
}

func TestLoginHandler_InternalError(t *testing.T) {
	svc := &mockLoginService{
		LoginFunc: func(ctx context.Context, email, password, ip, ua string) (*services.LoginResult, error) {
			return nil, models.ErrInternalServer
		},
	}
	rec := postLogin(newAuthHandler(svc), `{"email":"user@example.com","password":"pw"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
