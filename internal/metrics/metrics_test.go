package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("/predict", OutcomeSuccess))

	ObserveRequest("/predict", OutcomeSuccess, time.Now().Add(-50*time.Millisecond))

	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("/predict", OutcomeSuccess))
	assert.Equal(t, before+1, after)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(RequestDuration), 1)
}
