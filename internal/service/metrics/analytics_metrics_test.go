package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveAnalytics(t *testing.T) {
	before := testutil.ToFloat64(AnalyticsErrors.WithLabelValues("/test/errors"))

	ObserveAnalytics("/test/errors", 10*time.Millisecond, nil)
	ObserveAnalytics("/test/errors", 10*time.Millisecond, errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(AnalyticsErrors.WithLabelValues("/test/errors")))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(AnalyticsLatency), 1)
}

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}
