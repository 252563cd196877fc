package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternalServer = errors.New("internal server error")

	// Login flow errors. InvalidCredentials covers both unknown email and
	// wrong password; callers must never distinguish the two externally.
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrVerificationRequired = errors.New("account email not verified")
	ErrRateLimited          = errors.New("too many failed login attempts")

	// Confirmation protocol: covers missing, expired, and already-consumed tokens
	ErrTokenNotFoundOrExpired = errors.New("confirmation token not found or expired")

	// Notification dispatch failures are logged, never surfaced to callers
	ErrDispatchFailed = errors.New("notification dispatch failed")
)
