package services

import (
	"context"
	"log/slog"
	"time"
)

// RateLimitStore is the audit-store slice the limiter needs.
type RateLimitStore interface {
	CountFailuresByIP(ctx context.Context, ip string, since time.Time) (int, error)
	CountFailuresByEmail(ctx context.Context, email string, since time.Time) (int, error)
}

// RateLimitConfig holds the two independent threshold/window pairs.
type RateLimitConfig struct {
	IPWindow       time.Duration
	IPThreshold    int
	EmailWindow    time.Duration
	EmailThreshold int
}

// RateLimitService decides whether a login attempt may proceed to the
// credential check. Counts are read fresh from the store on every call;
// nothing is cached. On a store error the limiter fails open so a
// degraded database does not lock every account out.
type RateLimitService struct {
	store  RateLimitStore
	config RateLimitConfig
	logger *slog.Logger
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(store RateLimitStore, config RateLimitConfig, logger *slog.Logger) *RateLimitService {
	return &RateLimitService{
		store:  store,
		config: config,
		logger: logger,
	}
}

// CheckIPBlocked reports whether the source address has accumulated enough
// failed or blocked attempts inside the IP window to be refused outright.
// Blocked attempts count toward the total, so a blocked address stays
// blocked while it keeps hammering.
func (s *RateLimitService) CheckIPBlocked(ctx context.Context, ip string) bool {
	since := time.Now().UTC().Add(-s.config.IPWindow)
	count, err := s.store.CountFailuresByIP(ctx, ip, since)
	if err != nil {
		s.logger.Error("rate limit IP lookup failed, allowing request",
			slog.String("ip_address", ip),
			slog.Any("error", err),
		)
		return false
	}
	return count >= s.config.IPThreshold
}

// CountRecentFailures returns the number of failed attempts recorded for
// the given normalized email inside the email window.
func (s *RateLimitService) CountRecentFailures(ctx context.Context, email string) (int, error) {
	since := time.Now().UTC().Add(-s.config.EmailWindow)
	return s.store.CountFailuresByEmail(ctx, email, since)
}

// CheckEmailLimited reports whether the account identified by email has
// crossed its failure threshold. This gate runs before the credential
// check, so a correct password does not bypass it.
func (s *RateLimitService) CheckEmailLimited(ctx context.Context, email string) bool {
	count, err := s.CountRecentFailures(ctx, email)
	if err != nil {
		s.logger.Error("rate limit email lookup failed, allowing request",
			slog.Any("error", err),
		)
		return false
	}
	return count >= s.config.EmailThreshold
}
