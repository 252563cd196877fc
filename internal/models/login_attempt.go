package models

import "time"

// Attempt status values
const (
	AttemptStatusSuccess    = "success"
	AttemptStatusFailed     = "failed"
	AttemptStatusBlocked    = "blocked"
	AttemptStatusSuspicious = "suspicious"
)

// Confirmation states for suspicious attempts
const (
	ConfirmationPending   = "pending"
	ConfirmationConfirmed = "confirmed"
	ConfirmationDenied    = "denied"
)

// Internal failure reasons. Persisted for operator diagnostics only;
// the HTTP responses never echo them.
const (
	FailureReasonIPBlocked        = "IP blocked due to too many failed attempts"
	FailureReasonEmailRateLimited = "too many failed attempts for this email"
	FailureReasonUnknownEmail     = "unknown email"
	FailureReasonBadPassword      = "invalid password"
)

// DeviceInfo is derived from the raw user-agent string at write time.
// Recognition never uses these fields; the raw string is the identity signal.
type DeviceInfo struct {
	BrowserFamily string `json:"browser_family"`
	OSFamily      string `json:"os_family"`
	DeviceClass   string `json:"device_class"`
	IsMobile      bool   `json:"is_mobile"`
}

// GeoLocation is an opaque tuple supplied by the geolocation resolver.
type GeoLocation struct {
	Country  string `json:"country"`
	Region   string `json:"region"`
	City     string `json:"city"`
	Timezone string `json:"timezone"`
}

// UnknownLocation is used when the resolver cannot place an IP.
func UnknownLocation() GeoLocation {
	return GeoLocation{Country: "Unknown", Region: "Unknown", City: "Unknown", Timezone: "Unknown"}
}

// LoginAttempt is the unit persisted by the audit store. Append-only: after
// the initial write only the confirmation fields and NotificationSent change,
// plus IsSuspicious during a denial sweep of related records.
type LoginAttempt struct {
	ID                string      `db:"id"`
	AccountID         *string     `db:"account_id"` // nil when the email did not resolve to an account
	Email             string      `db:"email"`      // normalized (trimmed, case-folded)
	IPAddress         string      `db:"ip_address"`
	UserAgentRaw      string      `db:"user_agent_raw"`
	Device            DeviceInfo  `db:"device"`
	Location          GeoLocation `db:"location"`
	Status            string      `db:"status"`
	IsNewDevice       bool        `db:"is_new_device"`
	IsNewLocation     bool        `db:"is_new_location"`
	IsSuspicious      bool        `db:"is_suspicious"`
	NotificationSent  bool        `db:"notification_sent"`
	ConfirmationToken *string     `db:"confirmation_token"` // SHA-256 hash of the plaintext token; set iff suspicious
	ConfirmationState *string     `db:"confirmation_state"` // pending|confirmed|denied; nil when no token exists
	FailureReason     *string     `db:"failure_reason"`
	AttemptedAt       time.Time   `db:"attempted_at"`
	ConfirmedAt       *time.Time  `db:"confirmed_at"`
	ExpiresAt         time.Time   `db:"expires_at"`
}

// Succeeded reports whether the attempt passed credential verification.
func (a *LoginAttempt) Succeeded() bool {
	return a.Status == AttemptStatusSuccess
}

// ConfirmationPending reports whether the attempt holds an unconsumed token.
func (a *LoginAttempt) ConfirmationIsPending() bool {
	return a.ConfirmationState != nil && *a.ConfirmationState == ConfirmationPending
}

// DashboardStats aggregates an account's recent login activity.
type DashboardStats struct {
	TotalLogins          int `json:"total_logins"`
	FailedAttempts       int `json:"failed_attempts"`
	SuspiciousLogins     int `json:"suspicious_logins"`
	UniqueDevices        int `json:"unique_devices"`
	UniqueLocations      int `json:"unique_locations"`
	PendingConfirmations int `json:"pending_confirmations"`
}
