package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestAddIngested(t *testing.T) {
	before := testutil.ToFloat64(measurementsIngestedTotal.WithLabelValues(SourceMQTT))
	AddIngested(SourceMQTT, 3)
	AddIngested(SourceMQTT, 0)
	assert.Equal(t, before+3, testutil.ToFloat64(measurementsIngestedTotal.WithLabelValues(SourceMQTT)))

	beforeHTTP := testutil.ToFloat64(measurementsIngestedTotal.WithLabelValues(SourceHTTP))
	AddIngested("carrier-pigeon", 1)
	assert.Equal(t, beforeHTTP+1, testutil.ToFloat64(measurementsIngestedTotal.WithLabelValues(SourceHTTP)))
}

func TestIncIngestRejectedFoldsUnknownReasons(t *testing.T) {
	before := testutil.ToFloat64(ingestRejectedTotal.WithLabelValues(RejectError))
	IncIngestRejected("disk on fire")
	assert.Equal(t, before+1, testutil.ToFloat64(ingestRejectedTotal.WithLabelValues(RejectError)))
}

func TestObserveHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/v1/systems", "GET", "200"))
	ObserveHTTPRequest("/api/v1/systems", "GET", 200, -time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/v1/systems", "GET", "200")))
}
