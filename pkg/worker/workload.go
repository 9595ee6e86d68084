package worker

import (
	"fmt"
	"time"

	"github.com/cuemby/arraysim/pkg/storage"
	"github.com/cuemby/arraysim/pkg/types"
)

const workloadSampleInterval = 30 * time.Second

// RunWorkload is the per-exported-volume I/O generator (§4.3). It exits as
// soon as a reload observes the volume missing or unexported; it never
// mutates the volume itself.
func RunWorkload(d Deps, volumeID string, stop <-chan struct{}) {
	logger := d.Logger.With().Str("worker", "workload").Str("volume_id", volumeID).Logger()
	logger.Debug().Msg("workload worker started")

	for {
		vol, ok := findVolume(d.Store, volumeID)
		if !ok || !vol.IsExported {
			logger.Debug().Msg("volume missing or unexported, workload worker exiting")
			return
		}

		ioSizeKB := IODefaultSizeKB
		if vol.WorkloadSize != nil {
			ioSizeKB = *vol.WorkloadSize
		}

		iops := randIntRange(100, 1000)
		latency := round2(randFloatRange(1.0, 10.0))
		throughput := round2(float64(iops) * float64(ioSizeKB) / 1024)

		hostID := "Unknown"
		if vol.ExportedHostID != nil {
			hostID = *vol.ExportedHostID
		}

		sample := types.IOSample{
			Timestamp:  time.Now(),
			VolumeID:   volumeID,
			HostID:     hostID,
			IOPS:       iops,
			Latency:    latency,
			Throughput: throughput,
		}
		if err := storage.AppendLog(d.Store, "io_metrics", sample); err != nil {
			logger.Warn().Err(err).Msg("failed to append I/O sample")
		}

		d.Events.Info(fmt.Sprintf(
			"Volume: %s, Host: %s, IOPS: %d, Latency: %.2fms, Throughput: %.2f MB/s",
			volumeID, hostID, iops, latency, throughput,
		), true)

		if !sleepOrStop(workloadSampleInterval, stop) {
			logger.Debug().Msg("workload worker stopped")
			return
		}
	}
}
