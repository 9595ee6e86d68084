package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ThroughputUsed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arraysim_throughput_used_mbps",
			Help: "Offered throughput across exported volumes, clamped to max_throughput",
		},
	)

	CapacityUsed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arraysim_capacity_used_gb",
			Help: "Volume plus snapshot capacity in use",
		},
	)

	Saturation = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arraysim_saturation_percent",
			Help: "Ratio of offered throughput to max_throughput, as a percentage",
		},
	)

	CPUUsage = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arraysim_cpu_usage_percent",
			Help: "min(100, saturation)",
		},
	)

	CapacityPercentage = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arraysim_capacity_percentage",
			Help: "Ratio of capacity_used to max_capacity, as a percentage",
		},
	)

	CurrentLatency = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arraysim_current_latency_ms",
			Help: "Derived latency from the saturation/capacity step function",
		},
	)

	VolumesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "arraysim_volumes_total",
			Help: "Total number of volumes by exported state",
		},
		[]string{"exported"},
	)

	WorkersTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "arraysim_workers_total",
			Help: "Total number of live workers by role",
		},
		[]string{"role"},
	)

	SnapshotsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arraysim_snapshots_total",
			Help: "Total number of persisted snapshot records",
		},
	)

	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arraysim_api_requests_total",
			Help: "Total number of control-plane requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arraysim_api_request_duration_seconds",
			Help:    "Control-plane request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	HousekeeperSweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "arraysim_housekeeper_sweep_duration_seconds",
			Help:    "Time taken for one housekeeper sweep",
			Buckets: prometheus.DefBuckets,
		},
	)

	SnapshotsTrimmedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "arraysim_snapshots_trimmed_total",
			Help: "Total number of snapshots deleted by retention enforcement",
		},
	)

	ReplicationDeliveryFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arraysim_replication_delivery_failures_total",
			Help: "Total number of failed replication-receive deliveries by target",
		},
		[]string{"target"},
	)
)

func init() {
	prometheus.MustRegister(ThroughputUsed)
	prometheus.MustRegister(CapacityUsed)
	prometheus.MustRegister(Saturation)
	prometheus.MustRegister(CPUUsage)
	prometheus.MustRegister(CapacityPercentage)
	prometheus.MustRegister(CurrentLatency)
	prometheus.MustRegister(VolumesTotal)
	prometheus.MustRegister(WorkersTotal)
	prometheus.MustRegister(SnapshotsTotal)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(HousekeeperSweepDuration)
	prometheus.MustRegister(SnapshotsTrimmedTotal)
	prometheus.MustRegister(ReplicationDeliveryFailuresTotal)
}

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
