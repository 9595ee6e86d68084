package manager

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cuemby/arraysim/pkg/storage"
	"github.com/cuemby/arraysim/pkg/types"
)

// ReplicationReceive is the inbound payload a peer instance's replication
// worker POSTs to /replication-receive (§4.5).
type ReplicationReceive struct {
	VolumeID              string
	ReplicationThroughput float64
	Sender                string
	Timestamp             string
	ReplicationType       types.ReplicationType
	ShouldLog             bool
	Latency               float64
	SourceVolume          SourceVolume
}

// SourceVolume identifies the replicated volume on the sender's side.
type SourceVolume struct {
	ID         string
	Name       string
	Size       int
	SystemName string
}

// ReceiveReplication materializes the mirror volume on first contact (I8),
// accounts its size against local capacity, logs the event per the
// receiver's own log format, and updates the receive-side replication
// metric under "received_from_<sender>".
func (m *Manager) ReceiveReplication(payload ReplicationReceive) error {
	if payload.SourceVolume.Name != "" {
		targetName := fmt.Sprintf("%s_%s%s", payload.SourceVolume.Name, payload.ReplicationType, payload.SourceVolume.SystemName)

		exists := false
		for _, v := range storage.LoadList[types.Volume](m.store, "volume") {
			if v.Name == targetName {
				exists = true
				break
			}
		}

		if !exists {
			sys := m.currentSystem()
			if sys.ID != "" {
				metrics := m.GetMetrics()
				newCapacity := metrics.CapacityUsed + float64(payload.SourceVolume.Size)
				if sys.MaxCapacity > 0 && newCapacity > sys.MaxCapacity {
					m.events.Error(fmt.Sprintf("Cannot create replicated volume: would exceed system capacity (%.0f > %.0f)", newCapacity, sys.MaxCapacity), true)
					return errCapacity("target system capacity would be exceeded")
				}

				mirror := types.Volume{
					ID:                  uuid.NewString(),
					Name:                targetName,
					SystemID:            sys.ID,
					Size:                payload.SourceVolume.Size,
					SnapshotSettings:    map[string]int{},
					SnapshotFrequencies: []int{},
					ReplicationSettings: []types.ReplicationBinding{},
				}
				if err := storage.Append(m.store, "volume", mirror, idOfVolume); err != nil {
					return errInternal("failed to create replicated volume: %s", err)
				}
				m.events.Info(fmt.Sprintf("Created target volume %s for replication and updated system metrics", targetName), true)
				if err := m.Recompute(); err != nil {
					m.logger.Warn().Err(err).Msg("failed to recompute metrics after replication receive")
				}
			}
		}
	}

	if payload.ShouldLog {
		var line string
		if payload.ReplicationType == types.ReplicationSynchronous {
			line = fmt.Sprintf("Active synchronous replication received for volume %s from %s - Throughput: %.2f MB/s, Latency: %.2fms",
				payload.VolumeID, payload.Sender, payload.ReplicationThroughput, payload.Latency)
		} else {
			line = fmt.Sprintf("Received %s replication for volume %s with throughput %.2f MB/s from sender %s",
				payload.ReplicationType, payload.VolumeID, payload.ReplicationThroughput, payload.Sender)
		}
		m.events.Info(line, true)
	}

	_ = storage.MutateSingleton(m.store, "replication_metrics", func(all types.ReplicationMetrics) types.ReplicationMetrics {
		if all == nil {
			all = types.ReplicationMetrics{}
		}
		if all[payload.VolumeID] == nil {
			all[payload.VolumeID] = map[string]types.ReplicationMetric{}
		}
		all[payload.VolumeID]["received_from_"+payload.Sender] = types.ReplicationMetric{
			Throughput:      payload.ReplicationThroughput,
			Latency:         payload.Latency,
			ReplicationType: payload.ReplicationType,
		}
		return all
	})

	return nil
}

// ReceiveReplicationStop logs a best-effort stop notification; no local
// state is removed (§4.5).
func (m *Manager) ReceiveReplicationStop(volumeID, reason, sender string) {
	m.events.Info(fmt.Sprintf("Replication stopped for volume %s from %s: %s", volumeID, sender, reason), true)
}
