package repositories

import (
	"context"

	"github.com/BradenHooton/sentinel/internal/database"
	"github.com/BradenHooton/sentinel/internal/models"
)

// AccountRepository is the read-only credential store view. Account
// lifecycle (registration, password changes, verification) belongs to the
// main application; this service only resolves emails to accounts.
type AccountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetByEmail resolves a normalized email to an account.
// Returns models.ErrNotFound when no account exists.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT id, email, name, password_hash, email_verified, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`

	var acct models.Account
	err := r.db.Pool.QueryRow(ctx, query, email).Scan(
		&acct.ID, &acct.Email, &acct.Name, &acct.PasswordHash,
		&acct.EmailVerified, &acct.CreatedAt, &acct.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &acct, nil
}

// GetByID fetches an account by its identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT id, email, name, password_hash, email_verified, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var acct models.Account
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&acct.ID, &acct.Email, &acct.Name, &acct.PasswordHash,
		&acct.EmailVerified, &acct.CreatedAt, &acct.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &acct, nil
}
