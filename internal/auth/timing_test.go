package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimingDelay_FailureMeetsMinimum(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelayMs: 50})

	start := time.Now()
	td.WaitFrom(start, false)

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestTimingDelay_SuccessReturnsImmediately(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelayMs: 500})

	start := time.Now()
	td.WaitFrom(start, true)

	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestTimingDelay_AlreadyElapsed(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelayMs: 20})

	// Start time in the past beyond the target: no additional sleep
	start := time.Now().Add(-100 * time.Millisecond)
	before := time.Now()
	td.WaitFrom(start, false)

	assert.Less(t, time.Since(before), 20*time.Millisecond)
}

func TestCryptoRandIntn_Bounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		n, err := cryptoRandIntn(10)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 10)
	}

	n, err := cryptoRandIntn(0)
	assert.NoError(t, err)
	assert.Zero(t, n)
}
