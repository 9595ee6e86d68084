/*
Package metrics provides Prometheus metrics collection and exposition for an
arraysim instance.

It registers gauges, counters, and histograms tracking the instance's derived
system metrics, volume population, worker population, control-plane request
rate/latency, and housekeeper sweep activity, and exposes them over HTTP for
scraping.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Metric Sources                  │          │
	│  │                                              │          │
	│  │  Collector: polls manager.GetMetrics() and  │          │
	│  │    WorkerCounts() every 15s                 │          │
	│  │  Housekeeper: records sweep duration and    │          │
	│  │    trimmed-snapshot counts inline           │          │
	│  │  API server: records request rate/duration  │          │
	│  │    per handler                              │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint               │          │
	│  │  - Path: /metrics                           │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Metrics Catalog

arraysim_throughput_used_mbps (Gauge): offered throughput across exported
volumes, clamped to max_throughput.

arraysim_capacity_used_gb (Gauge): volume plus snapshot capacity in use.

arraysim_saturation_percent (Gauge): ratio of offered throughput to
max_throughput, as a percentage.

arraysim_cpu_usage_percent (Gauge): min(100, saturation).

arraysim_capacity_percentage (Gauge): ratio of capacity_used to max_capacity.

arraysim_current_latency_ms (Gauge): derived latency from the step function
over max(saturation, capacity_percentage).

arraysim_volumes_total{exported} (Gauge): volume count by exported state.

arraysim_workers_total{role} (Gauge): live worker count by role (workload,
snapshot, replication).

arraysim_snapshots_total (Gauge): persisted snapshot record count.

arraysim_api_requests_total{method,status} (Counter): control-plane request
count.

arraysim_api_request_duration_seconds{method} (Histogram): control-plane
request duration.

arraysim_housekeeper_sweep_duration_seconds (Histogram): time taken for one
housekeeper sweep.

arraysim_snapshots_trimmed_total (Counter): snapshots deleted by retention
enforcement.

arraysim_replication_delivery_failures_total{target} (Counter): failed
replication-receive deliveries by target instance.

# Usage

	import "github.com/cuemby/arraysim/pkg/metrics"

	metrics.VolumesTotal.WithLabelValues("true").Set(4)

	timer := metrics.NewTimer()
	// ... handle request ...
	timer.ObserveDurationVec(metrics.APIRequestDuration, "CreateVolume")

	http.Handle("/metrics", metrics.Handler())

# Integration Points

  - pkg/manager: source of GetMetrics()/WorkerCounts() polled by Collector
  - pkg/housekeeper: records sweep duration and trimmed-snapshot counts
  - pkg/api: instruments request rate and duration per handler
  - Prometheus: scrapes /metrics
*/
package metrics
