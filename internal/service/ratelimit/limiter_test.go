package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterBurstAndRefill(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("crypto:BTC/USD"))
	assert.True(t, l.Allow("crypto:BTC/USD"))
	assert.False(t, l.Allow("crypto:BTC/USD"))
	assert.True(t, l.Allow("stock:AAPL"), "keys are independent")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("crypto:BTC/USD"))
	assert.False(t, l.Allow("crypto:BTC/USD"))
}

func TestLimiterDisabled(t *testing.T) {
	l := New(1, 0)
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("k"))
	}
	var nilLimiter *Limiter
	assert.True(t, nilLimiter.Allow("k"))
}
