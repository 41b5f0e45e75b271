package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounters(t *testing.T) {
	r := NewWithRegisterer(prometheus.NewRegistry())

	r.RecordDropped("market")
	r.RecordDropped("market")
	r.RecordDecision("confirmed", "crypto")
	r.RecordPromotion("stock")
	r.RecordLastPrice("BTC/USD", 64000)
	r.RecordError("ticker_extractor")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.dropped.WithLabelValues("market")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.decisions.WithLabelValues("confirmed", "crypto")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.promotions.WithLabelValues("stock")))
	assert.Equal(t, 64000.0, testutil.ToFloat64(r.lastPrice.WithLabelValues("BTC/USD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("ticker_extractor")))
}

func TestNoopSatisfiesInterface(t *testing.T) {
	var n Noop
	assert.NotPanics(t, func() {
		n.RecordDropped("x")
		n.RecordDecision("hold", "stock")
	})
}
