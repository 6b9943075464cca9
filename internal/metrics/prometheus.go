package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector with Prometheus vectors.
type PrometheusCollector struct {
	imports       *prometheus.CounterVec
	importedTx    *prometheus.CounterVec
	duplicateTx   *prometheus.CounterVec
	skippedSeg    *prometheus.CounterVec
	importLatency *prometheus.HistogramVec
	matches       *prometheus.CounterVec

	sinkOps     *prometheus.CounterVec
	sinkLatency *prometheus.HistogramVec
	circuit     *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// NewPrometheusCollector creates the collectors and registers them with reg.
// A nil reg uses the default registerer.
func NewPrometheusCollector(namespace string, reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	pc := &PrometheusCollector{
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Total number of import requests per source",
		}, []string{"source"}),
		importedTx: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_imported_total",
			Help:      "Total number of newly stored transactions per source",
		}, []string{"source"}),
		duplicateTx: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_duplicate_total",
			Help:      "Total number of transactions skipped as already stored",
		}, []string{"source"}),
		skippedSeg: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_skipped_total",
			Help:      "Total number of input segments no matcher recognized",
		}, []string{"source"}),
		importLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Import latency per source",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matcher_hits_total",
			Help:      "Total number of segments recognized per matcher family",
		}, []string{"matcher"}),
		sinkOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_operations_total",
			Help:      "Total number of sink operations per sink, operation and status",
		}, []string{"sink", "operation", "status"}),
		sinkLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sink_operation_duration_seconds",
			Help:      "Sink operation latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sink", "operation"}),
		circuit: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_state",
			Help:      "Current circuit breaker state per sink (0=closed, 1=open, 2=half-open)",
		}, []string{"sink"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}

	reg.MustRegister(
		pc.imports, pc.importedTx, pc.duplicateTx, pc.skippedSeg, pc.importLatency, pc.matches,
		pc.sinkOps, pc.sinkLatency, pc.circuit,
		pc.httpRequests, pc.httpLatency,
	)
	return pc
}

// RecordImport implements Collector.
func (pc *PrometheusCollector) RecordImport(source string, imported, duplicates, skipped int, duration time.Duration) {
	pc.imports.WithLabelValues(source).Inc()
	pc.importedTx.WithLabelValues(source).Add(float64(imported))
	pc.duplicateTx.WithLabelValues(source).Add(float64(duplicates))
	pc.skippedSeg.WithLabelValues(source).Add(float64(skipped))
	pc.importLatency.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordMatch implements Collector.
func (pc *PrometheusCollector) RecordMatch(matcher string) {
	pc.matches.WithLabelValues(matcher).Inc()
}

// RecordSinkOp implements Collector.
func (pc *PrometheusCollector) RecordSinkOp(sink, operation string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	pc.sinkOps.WithLabelValues(sink, operation, status).Inc()
	pc.sinkLatency.WithLabelValues(sink, operation).Observe(duration.Seconds())
}

// RecordCircuitState implements Collector.
func (pc *PrometheusCollector) RecordCircuitState(sink string, state CircuitState) {
	pc.circuit.WithLabelValues(sink).Set(float64(state))
}

// RecordHTTPRequest implements Collector.
func (pc *PrometheusCollector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	pc.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	pc.httpLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
