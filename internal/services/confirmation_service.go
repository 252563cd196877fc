package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/BradenHooton/sentinel/pkg/logger"
)

// ConfirmationStore is the audit-store slice the confirmation flow needs.
type ConfirmationStore interface {
	GetPendingByTokenHash(ctx context.Context, tokenHash string, attemptedAfter time.Time) (*models.LoginAttempt, error)
	ConsumeConfirmation(ctx context.Context, id, newState, newStatus string, confirmedAt time.Time) error
	SweepDenied(ctx context.Context, accountID, ip string, since time.Time) (int64, error)
}

// AccountReader resolves the account behind a denied attempt so the
// security alert can be addressed.
type AccountReader interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

// ConfirmationConfig holds the confirmation flow windows.
type ConfirmationConfig struct {
	TTL             time.Duration
	DenySweepWindow time.Duration
	NotifyTimeout   time.Duration
}

// DenyResult reports what a denial did, for rendering back to the user.
type DenyResult struct {
	SweptAttempts int64
	ActionsTaken  []string
}

// ConfirmationService resolves the confirm/deny links mailed out for
// suspicious logins. Tokens are single use: the state transition is a
// conditional update on the pending state, so a second click of either
// link reads as not found regardless of which arrives first.
type ConfirmationService struct {
	store      ConfirmationStore
	accounts   AccountReader
	dispatcher NotificationDispatcher
	audit      *logger.AuditLogger
	config     ConfirmationConfig
	logger     *slog.Logger
}

// NewConfirmationService creates a new confirmation service
func NewConfirmationService(
	store ConfirmationStore,
	accounts AccountReader,
	dispatcher NotificationDispatcher,
	audit *logger.AuditLogger,
	config ConfirmationConfig,
	log *slog.Logger,
) *ConfirmationService {
	return &ConfirmationService{
		store:      store,
		accounts:   accounts,
		dispatcher: dispatcher,
		audit:      audit,
		config:     config,
		logger:     log,
	}
}

// Confirm marks the pending attempt behind the token as acknowledged by
// the account owner. Expiry is lazy: a token older than the TTL is simply
// never found, no sweeper required.
func (s *ConfirmationService) Confirm(ctx context.Context, plaintextToken string) error {
	attempt, err := s.lookup(ctx, plaintextToken)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.store.ConsumeConfirmation(ctx, attempt.ID, models.ConfirmationConfirmed, models.AttemptStatusSuccess, now); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrTokenNotFoundOrExpired
		}
		s.logger.Error("failed to consume confirmation", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.audit.Log(ctx, logger.AuditEvent{
		EventType: logger.EventConfirm,
		AccountID: derefOrEmpty(attempt.AccountID),
		Email:     attempt.Email,
		IPAddress: attempt.IPAddress,
		Success:   true,
	})
	return nil
}

// Deny marks the attempt as an intrusion: the original record flips to
// suspicious, and every successful login from the same address against
// the same account inside the sweep window is flagged as well. The sweep
// is idempotent; replaying a deny against already-flagged records
// changes nothing.
func (s *ConfirmationService) Deny(ctx context.Context, plaintextToken string) (*DenyResult, error) {
	attempt, err := s.lookup(ctx, plaintextToken)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.store.ConsumeConfirmation(ctx, attempt.ID, models.ConfirmationDenied, models.AttemptStatusSuspicious, now); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrTokenNotFoundOrExpired
		}
		s.logger.Error("failed to consume denial", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	accountID := derefOrEmpty(attempt.AccountID)
	swept, err := s.store.SweepDenied(ctx, accountID, attempt.IPAddress, now.Add(-s.config.DenySweepWindow))
	if err != nil {
		// The denial itself stuck; report the sweep failure and move on.
		s.logger.Error("deny sweep failed",
			slog.String("attempt_id", attempt.ID),
			slog.Any("error", err),
		)
		swept = 0
	}

	s.audit.Log(ctx, logger.AuditEvent{
		EventType: logger.EventDeny,
		AccountID: accountID,
		Email:     attempt.Email,
		IPAddress: attempt.IPAddress,
		Success:   true,
	})
	s.audit.Log(ctx, logger.AuditEvent{
		EventType: logger.EventDenySweep,
		AccountID: accountID,
		IPAddress: attempt.IPAddress,
		Success:   true,
		Metadata:  map[string]any{"swept_attempts": swept},
	})

	result := &DenyResult{
		SweptAttempts: swept,
		ActionsTaken: []string{
			"The reported login was flagged as suspicious.",
			"Recent logins from the same address were flagged for review.",
			"A security alert was sent to your email.",
		},
	}
	s.alertAsync(accountID, attempt, swept)
	return result, nil
}

func (s *ConfirmationService) lookup(ctx context.Context, plaintextToken string) (*models.LoginAttempt, error) {
	if plaintextToken == "" {
		return nil, models.ErrTokenNotFoundOrExpired
	}
	hash := HashConfirmationToken(plaintextToken)
	attemptedAfter := time.Now().UTC().Add(-s.config.TTL)

	attempt, err := s.store.GetPendingByTokenHash(ctx, hash, attemptedAfter)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrTokenNotFoundOrExpired
		}
		s.logger.Error("confirmation token lookup failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return attempt, nil
}

func (s *ConfirmationService) alertAsync(accountID string, attempt *models.LoginAttempt, swept int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.NotifyTimeout)
		defer cancel()

		account, err := s.accounts.GetByID(ctx, accountID)
		if err != nil {
			s.logger.Error("failed to load account for security alert", slog.Any("error", err))
			return
		}

		details := SecurityAlertDetails{
			AlertType: "Unrecognized login denied",
			Details: "You reported a login to your account as not yours. " +
				"We recommend changing your password from a trusted device.",
			ActionsTaken: []string{
				"The reported login was flagged as suspicious.",
				"Recent logins from the same address were flagged for review.",
			},
		}
		if err := s.dispatcher.SendSecurityAlert(ctx, account.Email, account.Name, details); err != nil {
			s.logger.Error("security alert dispatch failed",
				slog.String("attempt_id", attempt.ID),
				slog.Any("error", err),
			)
		}
	}()
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
