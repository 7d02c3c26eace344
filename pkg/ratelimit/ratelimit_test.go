package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(window time.Duration) (*Limiter, *time.Time) {
	l := New(window)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllowExhaustsAndRefills(t *testing.T) {
	l, now := newTestLimiter(time.Minute)
	defer l.Close()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1", 3), "request %d", i)
	}
	assert.False(t, l.Allow("10.0.0.1", 3))
	assert.True(t, l.Allow("10.0.0.2", 3), "keys are independent")

	// one token every 20s at 3 per minute
	*now = now.Add(20 * time.Second)
	assert.True(t, l.Allow("10.0.0.1", 3))
	assert.False(t, l.Allow("10.0.0.1", 3))
}

func TestAllowUnlimited(t *testing.T) {
	l, _ := newTestLimiter(time.Minute)
	defer l.Close()
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("k", 0))
	}
	assert.Zero(t, l.Len())
}

func TestSweepDropsIdleKeys(t *testing.T) {
	l, now := newTestLimiter(time.Minute)
	defer l.Close()

	l.Allow("old", 5)
	*now = now.Add(90 * time.Second)
	l.Allow("fresh", 5)
	*now = now.Add(60 * time.Second)

	l.sweep()
	assert.Equal(t, 1, l.Len())
}
