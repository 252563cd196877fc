package repositories

import (
	"context"
	"time"

	"github.com/BradenHooton/sentinel/internal/database"
	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LoginAttemptRepository is the audit store: append-only login attempt
// records with indexed windowed reads. After the initial insert only the
// confirmation fields, notification_sent, and (during a denial sweep)
// is_suspicious are ever updated.
type LoginAttemptRepository struct {
	db *database.DB
}

// NewLoginAttemptRepository creates a new LoginAttemptRepository
func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

const attemptColumns = `
	id, account_id, email, ip_address, user_agent_raw,
	browser_family, os_family, device_class, is_mobile,
	country, region, city, timezone,
	status, is_new_device, is_new_location, is_suspicious, notification_sent,
	confirmation_token, confirmation_state, failure_reason,
	attempted_at, confirmed_at, expires_at`

// Create appends one attempt record. ID and AttemptedAt are assigned here
// when the caller left them zero.
func (r *LoginAttemptRepository) Create(ctx context.Context, attempt *models.LoginAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	if attempt.AttemptedAt.IsZero() {
		attempt.AttemptedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO login_attempts (
			id, account_id, email, ip_address, user_agent_raw,
			browser_family, os_family, device_class, is_mobile,
			country, region, city, timezone,
			status, is_new_device, is_new_location, is_suspicious, notification_sent,
			confirmation_token, confirmation_state, failure_reason,
			attempted_at, confirmed_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		)`

	_, err := r.db.Pool.Exec(ctx, query,
		attempt.ID,
		attempt.AccountID,
		attempt.Email,
		attempt.IPAddress,
		attempt.UserAgentRaw,
		attempt.Device.BrowserFamily,
		attempt.Device.OSFamily,
		attempt.Device.DeviceClass,
		attempt.Device.IsMobile,
		attempt.Location.Country,
		attempt.Location.Region,
		attempt.Location.City,
		attempt.Location.Timezone,
		attempt.Status,
		attempt.IsNewDevice,
		attempt.IsNewLocation,
		attempt.IsSuspicious,
		attempt.NotificationSent,
		attempt.ConfirmationToken,
		attempt.ConfirmationState,
		attempt.FailureReason,
		attempt.AttemptedAt,
		attempt.ConfirmedAt,
		attempt.ExpiresAt,
	)

	return database.MapPostgresError(err)
}

// CountFailuresByIP counts failed and blocked attempts from an IP since the
// given time. Blocked attempts count so a blocked IP cannot ride out the
// window by hammering the endpoint.
func (r *LoginAttemptRepository) CountFailuresByIP(ctx context.Context, ipAddress string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM login_attempts
		WHERE ip_address = $1 AND status IN ('failed', 'blocked')
		  AND attempted_at >= $2 AND expires_at > NOW()
	`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, ipAddress, since).Scan(&count)
	return count, database.MapPostgresError(err)
}

// CountFailuresByEmail counts failed attempts for a normalized email since
// the given time.
func (r *LoginAttemptRepository) CountFailuresByEmail(ctx context.Context, email string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM login_attempts
		WHERE email = $1 AND status = 'failed'
		  AND attempted_at >= $2 AND expires_at > NOW()
	`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, email, since).Scan(&count)
	return count, database.MapPostgresError(err)
}

// RecentSuccessesByAccount returns the account's most recent successful
// attempts since the given time, newest first, capped at limit.
func (r *LoginAttemptRepository) RecentSuccessesByAccount(ctx context.Context, accountID string, since time.Time, limit int) ([]*models.LoginAttempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM login_attempts
		WHERE account_id = $1 AND status = 'success'
		  AND attempted_at >= $2 AND expires_at > NOW()
		ORDER BY attempted_at DESC
		LIMIT $3
	`

	rows, err := r.db.Pool.Query(ctx, query, accountID, since, limit)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return scanAttemptRows(rows)
}

// GetPendingByTokenHash looks up the unique attempt holding an unconsumed
// confirmation token minted after the cutoff. Expiry is enforced lazily
// here; no background sweeper touches pending tokens.
func (r *LoginAttemptRepository) GetPendingByTokenHash(ctx context.Context, tokenHash string, attemptedAfter time.Time) (*models.LoginAttempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM login_attempts
		WHERE confirmation_token = $1
		  AND confirmation_state = 'pending'
		  AND attempted_at >= $2
	`

	row := r.db.Pool.QueryRow(ctx, query, tokenHash, attemptedAfter)
	return scanAttemptRow(row)
}

// ConsumeConfirmation transitions an attempt's confirmation state from
// pending, exactly once. The conditional WHERE makes a concurrent second
// consume lose deterministically; callers map ErrNotFound to the
// token-not-found-or-expired failure.
func (r *LoginAttemptRepository) ConsumeConfirmation(ctx context.Context, id, newState, newStatus string, confirmedAt time.Time) error {
	query := `
		UPDATE login_attempts
		SET confirmation_state = $2, status = $3, confirmed_at = $4
		WHERE id = $1 AND confirmation_state = 'pending'
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, newState, newStatus, confirmedAt)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SweepDenied re-flags the account's recent successful logins from the
// denied IP. The predicate keys off each record's current state, so a
// partially applied sweep is safe to re-run.
func (r *LoginAttemptRepository) SweepDenied(ctx context.Context, accountID, ipAddress string, since time.Time) (int64, error) {
	query := `
		UPDATE login_attempts
		SET is_suspicious = TRUE, confirmation_state = 'denied'
		WHERE account_id = $1 AND ip_address = $2
		  AND status = 'success' AND attempted_at >= $3
		  AND (is_suspicious = FALSE OR confirmation_state IS DISTINCT FROM 'denied')
	`

	tag, err := r.db.Pool.Exec(ctx, query, accountID, ipAddress, since)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}

// MarkNotificationSent records a successful dispatch. This is a secondary
// write; callers treat its failure as log-only.
func (r *LoginAttemptRepository) MarkNotificationSent(ctx context.Context, id string) error {
	query := `UPDATE login_attempts SET notification_sent = TRUE WHERE id = $1`
	_, err := r.db.Pool.Exec(ctx, query, id)
	return database.MapPostgresError(err)
}

// ListByAccount returns an account's attempt history since the given time,
// newest first.
func (r *LoginAttemptRepository) ListByAccount(ctx context.Context, accountID string, since time.Time, limit int) ([]*models.LoginAttempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM login_attempts
		WHERE account_id = $1 AND attempted_at >= $2 AND expires_at > NOW()
		ORDER BY attempted_at DESC
		LIMIT $3
	`

	rows, err := r.db.Pool.Query(ctx, query, accountID, since, limit)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return scanAttemptRows(rows)
}

// GetStats computes the dashboard aggregates for an account since the
// given time in one pass.
func (r *LoginAttemptRepository) GetStats(ctx context.Context, accountID string, since time.Time) (*models.DashboardStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('success', 'suspicious')),
			COUNT(*) FILTER (WHERE status IN ('failed', 'blocked')),
			COUNT(*) FILTER (WHERE is_suspicious),
			COUNT(DISTINCT user_agent_raw) FILTER (WHERE status = 'success'),
			COUNT(DISTINCT ip_address) FILTER (WHERE status = 'success'),
			COUNT(*) FILTER (WHERE confirmation_state = 'pending')
		FROM login_attempts
		WHERE account_id = $1 AND attempted_at >= $2 AND expires_at > NOW()
	`

	var stats models.DashboardStats
	err := r.db.Pool.QueryRow(ctx, query, accountID, since).Scan(
		&stats.TotalLogins,
		&stats.FailedAttempts,
		&stats.SuspiciousLogins,
		&stats.UniqueDevices,
		&stats.UniqueLocations,
		&stats.PendingConfirmations,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &stats, nil
}

// DeleteExpired purges records past their retention horizon.
func (r *LoginAttemptRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM login_attempts WHERE expires_at <= NOW()`
	tag, err := r.db.Pool.Exec(ctx, query)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAttemptRow(scanner rowScanner) (*models.LoginAttempt, error) {
	var a models.LoginAttempt

	err := scanner.Scan(
		&a.ID, &a.AccountID, &a.Email, &a.IPAddress, &a.UserAgentRaw,
		&a.Device.BrowserFamily, &a.Device.OSFamily, &a.Device.DeviceClass, &a.Device.IsMobile,
		&a.Location.Country, &a.Location.Region, &a.Location.City, &a.Location.Timezone,
		&a.Status, &a.IsNewDevice, &a.IsNewLocation, &a.IsSuspicious, &a.NotificationSent,
		&a.ConfirmationToken, &a.ConfirmationState, &a.FailureReason,
		&a.AttemptedAt, &a.ConfirmedAt, &a.ExpiresAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &a, nil
}

func scanAttemptRows(rows pgx.Rows) ([]*models.LoginAttempt, error) {
	defer rows.Close()

	attempts := make([]*models.LoginAttempt, 0)
	for rows.Next() {
		a, err := scanAttemptRow(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return attempts, nil
}
