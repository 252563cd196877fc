package auth

import (
	"context"
	"net/http"
	"strings"

	pkghttp "github.com/BradenHooton/sentinel/pkg/http"
)

type contextKey string

const claimsContextKey contextKey = "token_claims"

// TokenValidator validates a bearer token string
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims is re-exported via models.TokenClaims; the middleware only needs
// the account identity, so it works through this narrow view.
type Claims struct {
	AccountID string
	Email     string
}

// claimsValidatorFunc adapts the TokenManager to TokenValidator
type managerValidator struct {
	tm *TokenManager
}

// Validator wraps a TokenManager for use with Middleware
func Validator(tm *TokenManager) TokenValidator {
	return &managerValidator{tm: tm}
}

func (v *managerValidator) ValidateToken(tokenString string) (*Claims, error) {
	claims, err := v.tm.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &Claims{AccountID: claims.AccountID, Email: claims.Email}, nil
}

// Middleware enforces bearer authentication and stores the caller's claims
// in the request context.
func Middleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// ContextWithClaims attaches claims to a context.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// GetClaimsFromContext returns the authenticated caller's claims, or nil.
func GetClaimsFromContext(r *http.Request) *Claims {
	claims, _ := r.Context().Value(claimsContextKey).(*Claims)
	return claims
}
