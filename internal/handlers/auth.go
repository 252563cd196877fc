package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/BradenHooton/sentinel/internal/services"
	pkghttp "github.com/BradenHooton/sentinel/pkg/http"
)

// LoginService is the orchestrator surface the handler depends on.
type LoginService interface {
	Login(ctx context.Context, email, password, ip, userAgentRaw string) (*services.LoginResult, error)
}

// AuthHandler serves the credential submission endpoint.
type AuthHandler struct {
	loginService LoginService
	ipConfig     *pkghttp.IPConfig
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(loginService LoginService, ipConfig *pkghttp.IPConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		loginService: loginService,
		ipConfig:     ipConfig,
		logger:       logger,
	}
}

// LoginRequest is the credential submission payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

// LoginResponse is returned on a successful login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Suspicious  bool   `json:"suspicious"`
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateStruct(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	result, err := h.loginService.Login(r.Context(), req.Email, req.Password, ip, r.UserAgent())
	if err != nil {
		h.writeLoginError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   result.ExpiresIn,
		Suspicious:  result.Suspicious,
	})
}

// writeLoginError maps pipeline outcomes onto the wire. Credential
// failures stay generic so the response never reveals whether the email
// exists.
func (h *AuthHandler) writeLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		pkghttp.WriteUnauthorized(w, "Authentication failed")
	case errors.Is(err, models.ErrVerificationRequired):
		pkghttp.WriteJSON(w, http.StatusForbidden, map[string]any{
			"error":                 "verification_required",
			"message":               "Please verify your email address before signing in",
			"requires_verification": true,
		})
	case errors.Is(err, models.ErrRateLimited):
		pkghttp.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":   "rate_limited",
			"message": "Too many failed attempts. Please try again later",
			"blocked": true,
		})
	default:
		h.logger.Error("login pipeline error", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Something went wrong")
	}
}
