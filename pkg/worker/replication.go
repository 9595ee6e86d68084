package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/arraysim/pkg/metrics"
	"github.com/cuemby/arraysim/pkg/storage"
	"github.com/cuemby/arraysim/pkg/types"
)

const replicationHTTPTimeout = 5 * time.Second

type replicationWorkerHandle struct {
	stop chan struct{}
	done chan struct{}
}

// RunReplicationCoordinator owns the per-target replication workers for one
// exported, replicated volume (§4.5). Every poll interval it diffs the
// volume's current replication_settings against the workers it has running
// and reconciles the difference.
func RunReplicationCoordinator(d Deps, volumeID string, stop <-chan struct{}) {
	logger := d.Logger.With().Str("worker", "replication-coordinator").Str("volume_id", volumeID).Logger()
	logger.Debug().Msg("replication coordinator started")

	workers := make(map[string]*replicationWorkerHandle)
	stopAll := func() {
		for targetID, h := range workers {
			close(h.stop)
			select {
			case <-h.done:
			case <-time.After(time.Second):
			}
			delete(workers, targetID)
		}
	}
	defer stopAll()

	for {
		vol, ok := findVolume(d.Store, volumeID)
		if !ok || !vol.IsExported || len(vol.ReplicationSettings) == 0 {
			logger.Debug().Msg("volume unexported or has no replication settings, coordinator exiting")
			return
		}

		current := make(map[string]types.ReplicationBinding, len(vol.ReplicationSettings))
		for _, b := range vol.ReplicationSettings {
			current[b.ReplicationTarget.ID] = b
		}

		for targetID, h := range workers {
			if _, stillPresent := current[targetID]; !stillPresent {
				close(h.stop)
				select {
				case <-h.done:
				case <-time.After(time.Second):
				}
				delete(workers, targetID)
			}
		}

		for targetID, binding := range current {
			if _, exists := workers[targetID]; exists {
				continue
			}
			h := &replicationWorkerHandle{stop: make(chan struct{}), done: make(chan struct{})}
			workers[targetID] = h
			go func(binding types.ReplicationBinding, h *replicationWorkerHandle) {
				defer close(h.done)
				runReplicationWorker(d, volumeID, binding, h.stop)
			}(binding, h)
		}

		if !sleepOrStop(FixedReplicationPollInterval, stop) {
			logger.Debug().Msg("replication coordinator stopped")
			return
		}
	}
}

func runReplicationWorker(d Deps, volumeID string, binding types.ReplicationBinding, stop <-chan struct{}) {
	logger := d.Logger.With().Str("worker", "replication").Str("volume_id", volumeID).
		Str("target_id", binding.ReplicationTarget.ID).Logger()

	d.Events.Info(fmt.Sprintf("Started %s replication for volume %s to target %s",
		binding.ReplicationType, volumeID, binding.ReplicationTarget.Name), true)

	var lastLog time.Time
	for {
		vol, ok := findVolume(d.Store, volumeID)
		if !ok || !vol.IsExported {
			break
		}

		iops := randIntRange(50, 500)
		latency := round2(randFloatRange(1.0, 5.0))
		throughput := round2(float64(iops) / latency)
		now := time.Now()

		updateReplicationMetric(d.Store, volumeID, binding.ReplicationTarget.ID, types.ReplicationMetric{
			Throughput:      throughput,
			Latency:         latency,
			IOPS:            iops,
			ReplicationType: binding.ReplicationType,
			Timestamp:       now,
			LastUpdated:     now,
		})

		shouldLog := binding.ReplicationType != types.ReplicationSynchronous ||
			lastLog.IsZero() ||
			now.Sub(lastLog) >= SyncReplicationLogInterval
		if shouldLog {
			if binding.ReplicationType == types.ReplicationSynchronous {
				d.Events.Info(fmt.Sprintf("Active synchronous replication for volume %s to target %s - Throughput: %.2f MB/s, Latency: %.2fms",
					volumeID, binding.ReplicationTarget.Name, throughput, latency), true)
			} else {
				d.Events.Info(fmt.Sprintf("Replicating volume %s with throughput %.2f MB/s to target %s",
					volumeID, throughput, binding.ReplicationTarget.Name), true)
			}
			lastLog = now
		}

		sendReplicationSample(d, vol, binding, throughput, latency, shouldLog, now, logger)

		wait := 10 * time.Second
		if binding.ReplicationType == types.ReplicationAsynchronous && binding.DelaySec > 0 {
			wait = time.Duration(binding.DelaySec) * time.Second
		}
		if !sleepOrStop(wait, stop) {
			break
		}
	}

	d.Events.Info(fmt.Sprintf("Stopped %s replication for volume %s to target %s",
		binding.ReplicationType, volumeID, binding.ReplicationTarget.Name), true)
}

type replicationPayload struct {
	VolumeID               string             `json:"volume_id"`
	ReplicationThroughput  float64            `json:"replication_throughput"`
	Sender                 string             `json:"sender"`
	Timestamp              string             `json:"timestamp"`
	ReplicationType        types.ReplicationType `json:"replication_type"`
	ShouldLog              bool               `json:"should_log"`
	Latency                float64            `json:"latency"`
	SourceVolume           sourceVolumeInfo   `json:"source_volume"`
}

type sourceVolumeInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Size       int    `json:"size"`
	SystemName string `json:"system_name"`
}

func sendReplicationSample(d Deps, vol types.Volume, binding types.ReplicationBinding, throughput, latency float64, shouldLog bool, ts time.Time, logger zerolog.Logger) {
	entry, ok := d.Registry.Lookup(binding.ReplicationTarget.ID)
	if !ok {
		d.Events.Warn(fmt.Sprintf("Target system with id %s not found", binding.ReplicationTarget.ID), true)
		return
	}

	payload := replicationPayload{
		VolumeID:              vol.ID,
		ReplicationThroughput:  throughput,
		Sender:                 d.SystemName,
		Timestamp:              ts.Format("2006-01-02 15:04:05"),
		ReplicationType:        binding.ReplicationType,
		ShouldLog:              shouldLog,
		Latency:                latency,
		SourceVolume: sourceVolumeInfo{
			ID:         vol.ID,
			Name:       vol.Name,
			Size:       vol.Size,
			SystemName: d.SystemName,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	url := fmt.Sprintf("http://localhost:%d/replication-receive", entry.Port)
	ctx, cancel := context.WithTimeout(context.Background(), replicationHTTPTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient().Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("replication delivery failed")
		d.Events.Error(fmt.Sprintf("Replication error for volume %s: %s", vol.ID, err), true)
		metrics.ReplicationDeliveryFailuresTotal.WithLabelValues(binding.ReplicationTarget.Name).Inc()
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		d.Events.Warn(fmt.Sprintf("Failed to deliver replication data to target %s: status %d", binding.ReplicationTarget.Name, resp.StatusCode), true)
		metrics.ReplicationDeliveryFailuresTotal.WithLabelValues(binding.ReplicationTarget.Name).Inc()
	}
}

func updateReplicationMetric(store *storage.Store, volumeID, targetKey string, metric types.ReplicationMetric) {
	_ = storage.MutateSingleton(store, "replication_metrics", func(all types.ReplicationMetrics) types.ReplicationMetrics {
		if all == nil {
			all = types.ReplicationMetrics{}
		}
		if all[volumeID] == nil {
			all[volumeID] = map[string]types.ReplicationMetric{}
		}
		all[volumeID][targetKey] = metric
		return all
	})
}

// NotifyReplicationStop POSTs replication-stop to every target this volume
// replicates to, best-effort, used during unexport/delete teardown.
func NotifyReplicationStop(d Deps, vol types.Volume, reason string) {
	for _, binding := range vol.ReplicationSettings {
		entry, ok := d.Registry.Lookup(binding.ReplicationTarget.ID)
		if !ok {
			continue
		}
		payload := map[string]string{
			"volume_id": vol.ID,
			"reason":    reason,
			"sender":    d.SystemName,
		}
		body, _ := json.Marshal(payload)
		url := fmt.Sprintf("http://localhost:%d/replication-stop", entry.Port)
		ctx, cancel := context.WithTimeout(context.Background(), replicationHTTPTimeout)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			cancel()
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := d.httpClient().Do(req)
		cancel()
		if err != nil {
			d.Events.Error(fmt.Sprintf("Failed to notify target %s: %s", binding.ReplicationTarget.Name, err), true)
			continue
		}
		resp.Body.Close()
	}
}
