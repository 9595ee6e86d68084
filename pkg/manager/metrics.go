package manager

import (
	"github.com/cuemby/arraysim/pkg/storage"
	"github.com/cuemby/arraysim/pkg/types"
	"github.com/cuemby/arraysim/pkg/worker"
)

// fixedIOPS is the offered-load constant the Housekeeper uses to model
// throughput from configured I/O size, deliberately independent of the
// jittery per-sample IOPS the workload worker actually draws (§9 design
// note: this discrepancy is intentional and preserved).
const fixedIOPS = 2000

// Recompute is the single writer of the system_metrics singleton (§9
// "Derived metrics computed in scattered places" — centralized here).
// Every operation that changes capacity or throughput calls this instead
// of writing metrics itself.
func (m *Manager) Recompute() error {
	sys := m.currentSystem()
	if sys.ID == "" {
		return nil
	}

	volumes := storage.LoadList[types.Volume](m.store, "volume")
	snapshots := storage.LoadList[types.Snapshot](m.store, "snapshots")

	var volumeCapacity, snapshotCapacity, totalThroughput float64
	for _, v := range volumes {
		volumeCapacity += float64(v.Size)
		if v.IsExported {
			ioSizeKB := worker.IODefaultSizeKB
			if v.WorkloadSize != nil {
				ioSizeKB = *v.WorkloadSize
			}
			totalThroughput += float64(fixedIOPS) * float64(ioSizeKB) / 1024
		}
	}
	for _, s := range snapshots {
		snapshotCapacity += float64(s.Size)
	}

	if sys.MaxThroughput > 0 && totalThroughput > sys.MaxThroughput {
		totalThroughput = sys.MaxThroughput
	}

	capacityUsed := volumeCapacity + snapshotCapacity
	var capacityPct float64
	if sys.MaxCapacity > 0 {
		capacityPct = capacityUsed / sys.MaxCapacity * 100
	}

	var saturation float64
	if sys.MaxThroughput > 0 {
		saturation = totalThroughput / sys.MaxThroughput * 100
	}

	cpuUsage := saturation
	if cpuUsage > 100 {
		cpuUsage = 100
	}

	metrics := types.SystemMetrics{
		ThroughputUsed:     totalThroughput,
		CapacityUsed:       capacityUsed,
		Saturation:         saturation,
		CPUUsage:           cpuUsage,
		VolumeCapacity:     volumeCapacity,
		SnapshotCapacity:   snapshotCapacity,
		CapacityPercentage: capacityPct,
		CurrentLatency:     latencyStep(max(saturation, capacityPct)),
	}
	return storage.Overwrite(m.store, "system_metrics", metrics)
}

// latencyStep is the explicit step function resolved from the source's
// divergent implementations (§9 open question 1): the richer, newer
// behavior wins.
func latencyStep(p float64) float64 {
	switch {
	case p <= 70:
		return 1.0
	case p <= 80:
		return 2.0
	case p <= 90:
		return 3.0
	case p <= 100:
		return 4.0
	default:
		return 5.0
	}
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// GetMetrics returns the current persisted system_metrics snapshot.
func (m *Manager) GetMetrics() types.SystemMetrics {
	return storage.LoadSingleton[types.SystemMetrics](m.store, "system_metrics")
}
