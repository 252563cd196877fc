package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Account is the credential-store view of a user. This service only reads
// accounts; creation and profile management live in the main application.
type Account struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TokenClaims are the JWT claims issued on successful login.
type TokenClaims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}
