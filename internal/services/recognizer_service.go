package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/BradenHooton/sentinel/internal/models"
)

// RecognizerStore is the audit-store slice the recognizer needs.
type RecognizerStore interface {
	RecentSuccessesByAccount(ctx context.Context, accountID string, since time.Time, limit int) ([]*models.LoginAttempt, error)
}

// RecognizerConfig bounds the history window the recognizer consults.
type RecognizerConfig struct {
	Lookback time.Duration
	Limit    int
}

// RecognizerService classifies an attempt as coming from a known or new
// device and location by comparing against the account's recent
// successful logins. Matching is exact: a browser upgrade that changes
// the user agent string reads as a new device, and any IP change reads
// as a new location. That is accepted noise; the cost of a false
// "new device" is one extra confirmation email.
type RecognizerService struct {
	store  RecognizerStore
	config RecognizerConfig
	logger *slog.Logger
}

// NewRecognizerService creates a new recognizer service
func NewRecognizerService(store RecognizerStore, config RecognizerConfig, logger *slog.Logger) *RecognizerService {
	return &RecognizerService{
		store:  store,
		config: config,
		logger: logger,
	}
}

// Recognize reports (isNewDevice, isNewLocation) for the attempt. A first
// login, or a store error, reports both as new; erring toward suspicion
// sends an extra email rather than missing a takeover.
func (s *RecognizerService) Recognize(ctx context.Context, accountID, ip, userAgentRaw string) (bool, bool) {
	since := time.Now().UTC().Add(-s.config.Lookback)
	history, err := s.store.RecentSuccessesByAccount(ctx, accountID, since, s.config.Limit)
	if err != nil {
		s.logger.Error("recognizer history lookup failed, treating attempt as new",
			slog.String("account_id", accountID),
			slog.Any("error", err),
		)
		return true, true
	}

	isNewDevice := true
	isNewLocation := true
	for _, attempt := range history {
		if attempt.UserAgentRaw == userAgentRaw {
			isNewDevice = false
		}
		if attempt.IPAddress == ip {
			isNewLocation = false
		}
		if !isNewDevice && !isNewLocation {
			break
		}
	}
	return isNewDevice, isNewLocation
}
