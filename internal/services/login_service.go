package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/sentinel/internal/auth"
	"github.com/BradenHooton/sentinel/internal/fingerprint"
	"github.com/BradenHooton/sentinel/internal/models"
	pkgauth "github.com/BradenHooton/sentinel/pkg/auth"
	"github.com/BradenHooton/sentinel/pkg/logger"
)

// LoginAuditStore is the audit-store slice the orchestrator writes through.
type LoginAuditStore interface {
	Create(ctx context.Context, attempt *models.LoginAttempt) error
	MarkNotificationSent(ctx context.Context, id string) error
}

// AccountStore reads account records for credential verification.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}

// CredentialLimiter gates attempts before the credential check.
type CredentialLimiter interface {
	CheckIPBlocked(ctx context.Context, ip string) bool
	CheckEmailLimited(ctx context.Context, email string) bool
}

// DeviceRecognizer classifies a successful attempt's device and location.
type DeviceRecognizer interface {
	Recognize(ctx context.Context, accountID, ip, userAgentRaw string) (isNewDevice, isNewLocation bool)
}

// TokenIssuer mints the session token returned on a successful login.
type TokenIssuer interface {
	GenerateAccessToken(accountID, email string) (string, error)
}

// LoginConfig holds orchestrator timing and retention knobs.
type LoginConfig struct {
	ConfirmationTTL  time.Duration
	AttemptRetention time.Duration
	NotifyTimeout    time.Duration
	AccessExpiry     time.Duration
}

// LoginResult is returned to the transport layer on a successful login.
type LoginResult struct {
	AccessToken string
	ExpiresIn   int64
	AccountID   string
	Suspicious  bool
}

// LoginService runs the full login decision pipeline: rate-limit gates,
// credential check, device and location recognition, audit persistence,
// and the suspicious-login confirmation hand-off. Every terminal outcome
// except verification-pending leaves exactly one audit record.
type LoginService struct {
	store      LoginAuditStore
	accounts   AccountStore
	limiter    CredentialLimiter
	recognizer DeviceRecognizer
	geo        GeoResolver
	dispatcher NotificationDispatcher
	tokens     TokenIssuer
	timing     *auth.TimingDelay
	audit      *logger.AuditLogger
	config     LoginConfig
	logger     *slog.Logger
}

// NewLoginService creates a new login service
func NewLoginService(
	store LoginAuditStore,
	accounts AccountStore,
	limiter CredentialLimiter,
	recognizer DeviceRecognizer,
	geo GeoResolver,
	dispatcher NotificationDispatcher,
	tokens TokenIssuer,
	timing *auth.TimingDelay,
	audit *logger.AuditLogger,
	config LoginConfig,
	log *slog.Logger,
) *LoginService {
	return &LoginService{
		store:      store,
		accounts:   accounts,
		limiter:    limiter,
		recognizer: recognizer,
		geo:        geo,
		dispatcher: dispatcher,
		tokens:     tokens,
		timing:     timing,
		audit:      audit,
		config:     config,
		logger:     log,
	}
}

// NormalizeEmail lowercases and trims an email so that rate limiting and
// credential lookup agree on the identity being attempted.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login processes one credential submission from the given source address
// and user agent. It returns ErrRateLimited, ErrInvalidCredentials,
// ErrVerificationRequired, or a LoginResult.
func (s *LoginService) Login(ctx context.Context, email, password, ip, userAgentRaw string) (*LoginResult, error) {
	start := time.Now()
	email = NormalizeEmail(email)

	device := fingerprint.ParseUserAgent(userAgentRaw)
	location, err := s.geo.Resolve(ctx, ip)
	if err != nil {
		s.logger.Warn("geolocation lookup failed", slog.Any("error", err))
		location = models.UnknownLocation()
	}

	// IP gate first: it fires before any account data is touched, so a
	// hammering address learns nothing about which emails exist.
	if s.limiter.CheckIPBlocked(ctx, ip) {
		s.recordGate(ctx, email, ip, userAgentRaw, device, location, models.FailureReasonIPBlocked)
		s.audit.Log(ctx, logger.AuditEvent{
			EventType:     logger.EventLoginBlocked,
			Email:         email,
			IPAddress:     ip,
			Success:       false,
			FailureReason: models.FailureReasonIPBlocked,
		})
		return nil, models.ErrRateLimited
	}

	if s.limiter.CheckEmailLimited(ctx, email) {
		s.recordGate(ctx, email, ip, userAgentRaw, device, location, models.FailureReasonEmailRateLimited)
		s.audit.Log(ctx, logger.AuditEvent{
			EventType:     logger.EventLoginBlocked,
			Email:         email,
			IPAddress:     ip,
			Success:       false,
			FailureReason: models.FailureReasonEmailRateLimited,
		})
		return nil, models.ErrRateLimited
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("account lookup failed", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		s.recordFailure(ctx, nil, email, ip, userAgentRaw, device, location, models.FailureReasonUnknownEmail)
		s.timing.WaitFrom(start, false)
		return nil, models.ErrInvalidCredentials
	}

	if err := pkgauth.ComparePassword(account.PasswordHash, password); err != nil {
		s.recordFailure(ctx, &account.ID, email, ip, userAgentRaw, device, location, models.FailureReasonBadPassword)
		s.timing.WaitFrom(start, false)
		return nil, models.ErrInvalidCredentials
	}

	// Unverified accounts are refused without an audit record; the
	// attempt never reached the security pipeline proper.
	if !account.EmailVerified {
		return nil, models.ErrVerificationRequired
	}

	isNewDevice, isNewLocation := s.recognizer.Recognize(ctx, account.ID, ip, userAgentRaw)
	isSuspicious := isNewDevice || isNewLocation

	now := time.Now().UTC()
	attempt := &models.LoginAttempt{
		AccountID:     &account.ID,
		Email:         email,
		IPAddress:     ip,
		UserAgentRaw:  userAgentRaw,
		Device:        device,
		Location:      location,
		Status:        models.AttemptStatusSuccess,
		IsNewDevice:   isNewDevice,
		IsNewLocation: isNewLocation,
		IsSuspicious:  isSuspicious,
		AttemptedAt:   now,
		ExpiresAt:     now.Add(s.config.AttemptRetention),
	}

	var plaintextToken string
	if isSuspicious {
		plaintext, hash, err := mintConfirmationToken()
		if err != nil {
			s.logger.Error("failed to mint confirmation token", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		plaintextToken = plaintext
		pending := models.ConfirmationPending
		attempt.ConfirmationToken = &hash
		attempt.ConfirmationState = &pending
	}

	if err := s.store.Create(ctx, attempt); err != nil {
		s.logger.Error("failed to persist login attempt", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	eventType := logger.EventLoginSuccess
	if isSuspicious {
		eventType = logger.EventLoginSuspicious
		s.notifyAsync(account, attempt, plaintextToken)
	}
	s.audit.Log(ctx, logger.AuditEvent{
		EventType: eventType,
		AccountID: account.ID,
		Email:     email,
		IPAddress: ip,
		Success:   true,
		Metadata: map[string]any{
			"is_new_device":   isNewDevice,
			"is_new_location": isNewLocation,
		},
	})

	accessToken, err := s.tokens.GenerateAccessToken(account.ID, account.Email)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.timing.WaitFrom(start, true)
	return &LoginResult{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.AccessExpiry.Seconds()),
		AccountID:   account.ID,
		Suspicious:  isSuspicious,
	}, nil
}

// recordGate persists a rate-limit rejection. Blocked records count toward
// the IP window but not the per-email window, so a limited account's
// clock is not extended by the limit itself.
func (s *LoginService) recordGate(ctx context.Context, email, ip, ua string, device models.DeviceInfo, location models.GeoLocation, reason string) {
	now := time.Now().UTC()
	attempt := &models.LoginAttempt{
		Email:         email,
		IPAddress:     ip,
		UserAgentRaw:  ua,
		Device:        device,
		Location:      location,
		Status:        models.AttemptStatusBlocked,
		FailureReason: &reason,
		AttemptedAt:   now,
		ExpiresAt:     now.Add(s.config.AttemptRetention),
	}
	if err := s.store.Create(ctx, attempt); err != nil {
		s.logger.Error("failed to persist blocked attempt", slog.Any("error", err))
	}
}

func (s *LoginService) recordFailure(ctx context.Context, accountID *string, email, ip, ua string, device models.DeviceInfo, location models.GeoLocation, reason string) {
	now := time.Now().UTC()
	attempt := &models.LoginAttempt{
		AccountID:     accountID,
		Email:         email,
		IPAddress:     ip,
		UserAgentRaw:  ua,
		Device:        device,
		Location:      location,
		Status:        models.AttemptStatusFailed,
		FailureReason: &reason,
		AttemptedAt:   now,
		ExpiresAt:     now.Add(s.config.AttemptRetention),
	}
	if err := s.store.Create(ctx, attempt); err != nil {
		s.logger.Error("failed to persist failed attempt", slog.Any("error", err))
	}
	s.audit.Log(ctx, logger.AuditEvent{
		EventType:     logger.EventLoginFailed,
		Email:         email,
		IPAddress:     ip,
		Success:       false,
		FailureReason: reason,
	})
}

// notifyAsync sends the confirmation email off the request path. Delivery
// failure is logged and the login still succeeds; the audit record keeps
// notification_sent false so the gap is visible.
func (s *LoginService) notifyAsync(account *models.Account, attempt *models.LoginAttempt, plaintextToken string) {
	details := LoginConfirmationDetails{
		IPAddress:     attempt.IPAddress,
		Device:        attempt.Device,
		Location:      attempt.Location,
		AttemptedAt:   attempt.AttemptedAt,
		IsNewDevice:   attempt.IsNewDevice,
		IsNewLocation: attempt.IsNewLocation,
		Token:         plaintextToken,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.NotifyTimeout)
		defer cancel()

		if err := s.dispatcher.SendLoginConfirmation(ctx, account.Email, account.Name, details); err != nil {
			s.logger.Error("confirmation email dispatch failed",
				slog.String("attempt_id", attempt.ID),
				slog.Any("error", err),
			)
			s.audit.Log(ctx, logger.AuditEvent{
				EventType:     logger.EventDispatchFailed,
				AccountID:     account.ID,
				Email:         account.Email,
				IPAddress:     attempt.IPAddress,
				Success:       false,
				FailureReason: err.Error(),
			})
			return
		}
		if err := s.store.MarkNotificationSent(ctx, attempt.ID); err != nil {
			s.logger.Warn("failed to mark notification sent",
				slog.String("attempt_id", attempt.ID),
				slog.Any("error", err),
			)
		}
	}()
}

// mintConfirmationToken returns a 256-bit URL-safe token and the hex
// SHA-256 digest stored in its place. Only the digest ever touches disk.
func mintConfirmationToken() (plaintext, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate confirmation token: %w", err)
	}
	plaintext = base64.RawURLEncoding.EncodeToString(buf)
	digest := sha256.Sum256([]byte(plaintext))
	return plaintext, hex.EncodeToString(digest[:]), nil
}

// HashConfirmationToken maps a presented plaintext token to its stored form.
func HashConfirmationToken(plaintext string) string {
	digest := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(digest[:])
}
