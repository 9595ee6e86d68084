package worker

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cuemby/arraysim/pkg/storage"
	"github.com/cuemby/arraysim/pkg/types"
)

// RunSnapshot is one (volume, frequency) snapshot worker (§4.4). On every
// tick it reloads the volume, bumps its snapshot count, and appends a
// Snapshot record tagged with whichever setting currently maps to this
// frequency.
func RunSnapshot(d Deps, volumeID string, frequencySec int, stop <-chan struct{}) {
	logger := d.Logger.With().Str("worker", "snapshot").Str("volume_id", volumeID).Int("frequency_sec", frequencySec).Logger()
	logger.Debug().Msg("snapshot worker started")

	interval := time.Duration(frequencySec) * time.Second
	if interval <= 0 {
		interval = time.Second
	}

	for {
		if !sleepOrStop(interval, stop) {
			logger.Debug().Msg("snapshot worker stopped")
			return
		}

		vol, ok := findVolume(d.Store, volumeID)
		if !ok || !vol.IsExported {
			logger.Debug().Msg("volume missing or unexported, snapshot worker exiting")
			return
		}

		vol.SnapshotCount++
		if err := storage.Replace(d.Store, "volume", vol.ID, vol, idOfVolume); err != nil {
			logger.Warn().Err(err).Msg("failed to persist snapshot count")
		}

		settingID := ""
		for sid, freq := range vol.SnapshotSettings {
			if freq == frequencySec {
				settingID = sid
				break
			}
		}
		if settingID == "" {
			logger.Warn().Msg("no snapshot setting matches this frequency, skipping snapshot record")
			d.Events.Warn(fmt.Sprintf("Snapshot skipped for volume %s: no setting matches frequency %ds", volumeID, frequencySec), false)
			continue
		}

		snap := types.Snapshot{
			ID:                uuid.NewString(),
			VolumeID:          vol.ID,
			SnapshotSettingID: settingID,
			CreatedAt:         time.Now(),
			FrequencySec:      frequencySec,
			Size:              vol.Size,
		}
		if err := storage.AppendLog(d.Store, "snapshots", snap); err != nil {
			logger.Warn().Err(err).Msg("failed to append snapshot record")
			continue
		}

		if d.Recompute != nil {
			if err := d.Recompute(); err != nil {
				logger.Warn().Err(err).Msg("failed to recompute metrics after snapshot")
			}
		}

		d.Events.SnapshotEvent(fmt.Sprintf("Snapshot %s taken for volume %s (setting %s, size %dGB)", snap.ID, volumeID, settingID, snap.Size))
	}
}
