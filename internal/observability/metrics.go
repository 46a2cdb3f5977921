// Package observability exposes Prometheus metrics for the latency engine.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"exchange-latency-sim/internal/telemetry"
)

// Collector bundles the engine metrics. All methods are safe on a nil
// receiver so callers can run without metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Snapshots        prometheus.Counter
	SnapshotRecords  prometheus.Gauge
	SnapshotSkipped  prometheus.Counter
	SnapshotDuration prometheus.Histogram
	Subscribers      prometheus.Gauge
	RecordsByStatus  *prometheus.CounterVec
	ValidationErrors *prometheus.CounterVec
	WriteErrors      *prometheus.CounterVec
	APIRequests      *prometheus.CounterVec
	WSClients        prometheus.Gauge
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Registering twice against the same registry reuses the
// existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.Snapshots, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "latency_snapshots_total",
		Help: "Number of latency snapshots generated.",
	}), "latency_snapshots_total"); err != nil {
		return nil, err
	}
	if c.SnapshotRecords, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "latency_snapshot_records",
		Help: "Records in the most recent snapshot.",
	}), "latency_snapshot_records"); err != nil {
		return nil, err
	}
	if c.SnapshotSkipped, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "latency_snapshot_skipped_total",
		Help: "Exchanges skipped during snapshot generation because of invalid data.",
	}), "latency_snapshot_skipped_total"); err != nil {
		return nil, err
	}
	if c.SnapshotDuration, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "latency_snapshot_duration_seconds",
		Help:    "Time spent generating one snapshot.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}), "latency_snapshot_duration_seconds"); err != nil {
		return nil, err
	}
	if c.Subscribers, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "latency_stream_subscribers",
		Help: "Current number of live stream subscribers.",
	}), "latency_stream_subscribers"); err != nil {
		return nil, err
	}
	if c.RecordsByStatus, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "latency_records_total",
		Help: "Generated latency records, labeled by status bucket.",
	}, []string{"status"}), "latency_records_total"); err != nil {
		return nil, err
	}
	if c.ValidationErrors, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "latency_validation_errors_total",
		Help: "Rejected catalog or record entries, labeled by kind.",
	}, []string{"kind"}), "latency_validation_errors_total"); err != nil {
		return nil, err
	}
	if c.WriteErrors, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "latency_write_errors_total",
		Help: "Failed sink writes, labeled by sink.",
	}, []string{"sink"}), "latency_write_errors_total"); err != nil {
		return nil, err
	}
	if c.APIRequests, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "latency_api_requests_total",
		Help: "Admin API requests, labeled by route and HTTP status code.",
	}, []string{"route", "code"}), "latency_api_requests_total"); err != nil {
		return nil, err
	}
	if c.WSClients, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "latency_ws_clients",
		Help: "Connected websocket clients.",
	}), "latency_ws_clients"); err != nil {
		return nil, err
	}
	return c, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveSnapshot records one generated snapshot.
func (c *Collector) ObserveSnapshot(records, skipped int, took time.Duration) {
	if c == nil {
		return
	}
	c.Snapshots.Inc()
	c.SnapshotRecords.Set(float64(records))
	if skipped > 0 {
		c.SnapshotSkipped.Add(float64(skipped))
	}
	c.SnapshotDuration.Observe(took.Seconds())
}

// ObserveRecords counts records per status bucket.
func (c *Collector) ObserveRecords(records []telemetry.LatencyRecord) {
	if c == nil {
		return
	}
	for _, r := range records {
		c.RecordsByStatus.WithLabelValues(string(r.Status)).Inc()
	}
}

// SetSubscribers sets the live subscriber gauge.
func (c *Collector) SetSubscribers(n int) {
	if c == nil {
		return
	}
	c.Subscribers.Set(float64(n))
}

// AddValidationErrors counts n rejected entries of the given kind
// ("exchange", "region", "record").
func (c *Collector) AddValidationErrors(kind string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.ValidationErrors.WithLabelValues(kind).Add(float64(n))
}

// WriteError counts a failed write to sink.
func (c *Collector) WriteError(sink string) {
	if c == nil {
		return
	}
	c.WriteErrors.WithLabelValues(sink).Inc()
}

// APIRequest counts one admin API request.
func (c *Collector) APIRequest(route string, code int) {
	if c == nil {
		return
	}
	c.APIRequests.WithLabelValues(route, fmt.Sprint(code)).Inc()
}

// WSConnected adjusts the websocket client gauge by delta.
func (c *Collector) WSConnected(delta int) {
	if c == nil {
		return
	}
	c.WSClients.Add(float64(delta))
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
