package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-test-secret")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 60*time.Minute, cfg.Security.IPFailureWindow)
	assert.Equal(t, 10, cfg.Security.IPFailureThreshold)
	assert.Equal(t, 15*time.Minute, cfg.Security.EmailFailureWindow)
	assert.Equal(t, 5, cfg.Security.EmailFailureThreshold)
	assert.Equal(t, 24*time.Hour, cfg.Security.ConfirmationTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Security.DenySweepWindow)
	assert.Equal(t, 30*24*time.Hour, cfg.Security.AttemptRetention)
	assert.Equal(t, 10, cfg.Security.RecognizerLimit)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_WeakJWTSecretInProduction(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "tooshort")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_IndependentWindows(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_LIMIT_IP_WINDOW", "30m")
	t.Setenv("RATE_LIMIT_EMAIL_WINDOW", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Security.IPFailureWindow)
	assert.Equal(t, 5*time.Minute, cfg.Security.EmailFailureWindow)
}

func TestLoad_RetentionMustCoverLookback(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ATTEMPT_RETENTION", "24h")
	t.Setenv("RECOGNIZER_LOOKBACK", "720h")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ZeroThresholdRejected(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_LIMIT_IP_THRESHOLD", "0")

	_, err := Load()
	assert.Error(t, err)
}
