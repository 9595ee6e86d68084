// Package worker holds the long-lived per-volume goroutines: the workload
// generator, the snapshot scheduler, and the replication coordinator/worker
// pair. Each loop reloads its subject volume directly from the persistence
// façade at the top of every iteration, following the teacher's stopCh +
// select cancellation idiom rather than context cancellation, and never
// mutates volume state itself beyond what the spec assigns it (snapshot
// count, replication metrics) — derived system metrics are always produced
// through the Recompute callback so there is exactly one writer of that
// singleton.
package worker

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/arraysim/pkg/log"
	"github.com/cuemby/arraysim/pkg/registry"
	"github.com/cuemby/arraysim/pkg/storage"
)

// IODefaultSizeKB is the default per-I/O size used by the workload
// generator when a volume does not override it.
const IODefaultSizeKB = 8

// FixedReplicationPollInterval is how often the replication coordinator
// checks for added/removed targets.
const FixedReplicationPollInterval = 5 * time.Second

// SyncReplicationLogInterval bounds how often a synchronous replication
// worker logs a sample, to avoid log spam from its 10s sample cadence.
const SyncReplicationLogInterval = 200 * time.Second

// Deps are the collaborators every worker loop needs. It is supplied by the
// manager when a worker is spawned; workers hold no reference back to the
// manager itself.
type Deps struct {
	Store      *storage.Store
	Events     *log.EventLog
	Registry   *registry.Registry
	HTTPClient *http.Client
	Logger     zerolog.Logger

	// SystemID and SystemName identify the local instance; SystemName is
	// the instance port as a string, used both as the replication sender
	// identity and in mirror-volume naming on the receiving side.
	SystemID   string
	SystemName string

	// Recompute triggers the single centralized metrics recomputation;
	// every worker calls it after any state change that affects capacity
	// or throughput instead of writing system_metrics itself.
	Recompute func() error
}

func (d Deps) httpClient() *http.Client {
	if d.HTTPClient != nil {
		return d.HTTPClient
	}
	return http.DefaultClient
}
