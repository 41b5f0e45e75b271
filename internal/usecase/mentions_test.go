package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMentionTrackerWindow(t *testing.T) {
	tr := NewMentionTracker(300*time.Second, 3)

	c, claimed := tr.Record("GME", t0)
	assert.Equal(t, 1, c)
	assert.False(t, claimed)

	tr.Record("GME", t0.Add(100*time.Second))
	// exactly at the lookback boundary the first mention still counts
	c, claimed = tr.Record("GME", t0.Add(300*time.Second))
	assert.Equal(t, 3, c)
	assert.True(t, claimed)

	// claim is exclusive until released
	_, claimed = tr.Record("GME", t0.Add(301*time.Second))
	assert.False(t, claimed)

	tr.Release("GME")
	c, claimed = tr.Record("GME", t0.Add(302*time.Second))
	assert.Equal(t, 4, c)
	assert.True(t, claimed)

	tr.Complete("GME")
	assert.Equal(t, 0, tr.Count("GME", t0.Add(303*time.Second)))
}

func TestMentionTrackerPrunesOldStamps(t *testing.T) {
	tr := NewMentionTracker(time.Minute, 100)
	for i := 0; i < 1000; i++ {
		tr.Record("BTC", t0.Add(time.Duration(i)*time.Second))
	}
	assert.Equal(t, 61, tr.Count("BTC", t0.Add(999*time.Second)))
	assert.Equal(t, 0, tr.Count("BTC", t0.Add(2000*time.Second)))
	assert.Equal(t, 0, tr.Count("ETH", t0))
}
