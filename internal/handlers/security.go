package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/sentinel/internal/auth"
	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/BradenHooton/sentinel/internal/services"
	pkghttp "github.com/BradenHooton/sentinel/pkg/http"
)

// ConfirmationResolver is the confirm/deny surface the handler depends on.
type ConfirmationResolver interface {
	Confirm(ctx context.Context, plaintextToken string) error
	Deny(ctx context.Context, plaintextToken string) (*services.DenyResult, error)
}

// DashboardProvider assembles the per-account security overview.
type DashboardProvider interface {
	GetDashboard(ctx context.Context, accountID string) (*services.Dashboard, error)
}

// SecurityHandler serves the confirmation links and the account dashboard.
type SecurityHandler struct {
	confirmations ConfirmationResolver
	dashboards    DashboardProvider
	logger        *slog.Logger
}

// NewSecurityHandler creates a new security handler
func NewSecurityHandler(confirmations ConfirmationResolver, dashboards DashboardProvider, logger *slog.Logger) *SecurityHandler {
	return &SecurityHandler{
		confirmations: confirmations,
		dashboards:    dashboards,
		logger:        logger,
	}
}

// Confirm handles GET /security/confirm
func (h *SecurityHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		pkghttp.WriteBadRequest(w, "Missing confirmation token")
		return
	}

	if err := h.confirmations.Confirm(r.Context(), token); err != nil {
		h.writeConfirmationError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "confirmed",
		"message": "Thanks, this login has been marked as yours.",
	})
}

// Deny handles GET /security/deny
func (h *SecurityHandler) Deny(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		pkghttp.WriteBadRequest(w, "Missing confirmation token")
		return
	}

	result, err := h.confirmations.Deny(r.Context(), token)
	if err != nil {
		h.writeConfirmationError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"status":         "denied",
		"message":        "This login has been reported. We recommend changing your password.",
		"swept_attempts": result.SweptAttempts,
		"actions_taken":  result.ActionsTaken,
	})
}

func (h *SecurityHandler) writeConfirmationError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrTokenNotFoundOrExpired) {
		pkghttp.WriteNotFound(w, "This link is invalid or has expired")
		return
	}
	h.logger.Error("confirmation resolution failed", slog.Any("error", err))
	pkghttp.WriteInternalError(w, "Something went wrong")
}

// DashboardResponse is the account security overview payload
type DashboardResponse struct {
	Stats    *models.DashboardStats `json:"stats"`
	Attempts []AttemptView          `json:"attempts"`
}

// AttemptView is one audit record shaped for display
type AttemptView struct {
	ID                string    `json:"id"`
	AttemptedAt       time.Time `json:"attempted_at"`
	Status            string    `json:"status"`
	IPAddress         string    `json:"ip_address"`
	Browser           string    `json:"browser"`
	OS                string    `json:"os"`
	Location          string    `json:"location"`
	IsNewDevice       bool      `json:"is_new_device"`
	IsNewLocation     bool      `json:"is_new_location"`
	IsSuspicious      bool      `json:"is_suspicious"`
	ConfirmationState *string   `json:"confirmation_state,omitempty"`
	FailureReason     *string   `json:"failure_reason,omitempty"`
}

// Dashboard handles GET /security/dashboard
func (h *SecurityHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaimsFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	dashboard, err := h.dashboards.GetDashboard(r.Context(), claims.AccountID)
	if err != nil {
		h.logger.Error("failed to assemble dashboard",
			slog.String("account_id", claims.AccountID),
			slog.Any("error", err),
		)
		pkghttp.WriteInternalError(w, "Something went wrong")
		return
	}

	views := make([]AttemptView, 0, len(dashboard.Attempts))
	for _, attempt := range dashboard.Attempts {
		views = append(views, AttemptView{
			ID:                attempt.ID,
			AttemptedAt:       attempt.AttemptedAt,
			Status:            attempt.Status,
			IPAddress:         attempt.IPAddress,
			Browser:           attempt.Device.BrowserFamily,
			OS:                attempt.Device.OSFamily,
			Location:          formatLocation(attempt.Location),
			IsNewDevice:       attempt.IsNewDevice,
			IsNewLocation:     attempt.IsNewLocation,
			IsSuspicious:      attempt.IsSuspicious,
			ConfirmationState: attempt.ConfirmationState,
			FailureReason:     attempt.FailureReason,
		})
	}

	pkghttp.WriteJSON(w, http.StatusOK, DashboardResponse{
		Stats:    dashboard.Stats,
		Attempts: views,
	})
}

func formatLocation(location models.GeoLocation) string {
	if location.City == location.Country {
		return location.Country
	}
	return fmt.Sprintf("%s, %s", location.City, location.Country)
}
