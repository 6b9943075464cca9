package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	pc := NewPrometheusCollector("smsledger", reg)

	pc.RecordImport("sms", 3, 1, 2, 10*time.Millisecond)
	pc.RecordImport("sms", 1, 0, 0, time.Millisecond)
	pc.RecordMatch("debited-from")
	pc.RecordSinkOp("memory", "upsert", false, time.Millisecond)
	pc.RecordCircuitState("postgres", CircuitOpen)
	pc.RecordHTTPRequest("POST", "/api/upload/sms", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(pc.imports.WithLabelValues("sms")))
	assert.Equal(t, 4.0, testutil.ToFloat64(pc.importedTx.WithLabelValues("sms")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.duplicateTx.WithLabelValues("sms")))
	assert.Equal(t, 2.0, testutil.ToFloat64(pc.skippedSeg.WithLabelValues("sms")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.matches.WithLabelValues("debited-from")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.sinkOps.WithLabelValues("memory", "upsert", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.circuit.WithLabelValues("postgres")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.httpRequests.WithLabelValues("POST", "/api/upload/sms", "200")))
}

func TestCircuitStateString(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(9).String())
}

func TestNoOpCollector(t *testing.T) {
	var c Collector = NoOpCollector{}
	assert.NotPanics(t, func() {
		c.RecordImport("pdf", 1, 1, 1, time.Second)
		c.RecordMatch("x")
		c.RecordSinkOp("memory", "list", true, time.Second)
		c.RecordCircuitState("memory", CircuitClosed)
		c.RecordHTTPRequest("GET", "/api/health", 200, time.Second)
	})
}
