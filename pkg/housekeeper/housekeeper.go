// Package housekeeper runs the periodic sweep that enforces snapshot
// retention and keeps derived system metrics current (§4.6). Its ticker
// loop follows the teacher's Scheduler shape; unlike the scheduler it also
// exposes RunOnce so the control plane's /cleanup route and the ticker
// drive the exact same code path.
package housekeeper

import (
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/arraysim/pkg/log"
	"github.com/cuemby/arraysim/pkg/manager"
	"github.com/cuemby/arraysim/pkg/metrics"
	"github.com/cuemby/arraysim/pkg/storage"
	"github.com/cuemby/arraysim/pkg/types"
)

const sweepInterval = 30 * time.Second

// Housekeeper periodically trims snapshots past retention and recomputes
// system_metrics from first principles.
type Housekeeper struct {
	store  *storage.Store
	mgr    *manager.Manager
	events *log.EventLog
	logger zerolog.Logger
	stopCh chan struct{}
}

// New constructs a Housekeeper bound to one instance's store and manager.
func New(store *storage.Store, mgr *manager.Manager, events *log.EventLog, logger zerolog.Logger) *Housekeeper {
	return &Housekeeper{
		store:  store,
		mgr:    mgr,
		events: events,
		logger: logger.With().Str("component", "housekeeper").Logger(),
		stopCh: make(chan struct{}),
	}
}

// Start launches the ticker loop as a daemon goroutine.
func (h *Housekeeper) Start() {
	go h.run()
}

// Stop signals the ticker loop to exit; it does not wait for it.
func (h *Housekeeper) Stop() {
	close(h.stopCh)
}

func (h *Housekeeper) run() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.RunOnce()
		case <-h.stopCh:
			return
		}
	}
}

// RunOnce performs one sweep: prunes excess snapshots per (volume, setting)
// pair, then recomputes system_metrics. Invoked by the ticker and by the
// /cleanup control-plane route.
func (h *Housekeeper) RunOnce() {
	timer := metrics.NewTimer()
	trimmed, freedGB := h.pruneSnapshots()
	metrics.SnapshotsTrimmedTotal.Add(float64(trimmed))
	metrics.SnapshotsTotal.Set(float64(len(storage.LoadList[types.Snapshot](h.store, "snapshots"))))

	if err := h.mgr.Recompute(); err != nil {
		h.logger.Warn().Err(err).Msg("failed to recompute metrics during cleanup sweep")
		metrics.UpdateComponent("store", false, err.Error())
	} else {
		metrics.UpdateComponent("store", true, "ready")
	}

	timer.ObserveDuration(metrics.HousekeeperSweepDuration)
	h.events.Cleanup(cleanupSummary(trimmed, freedGB))
}

func cleanupSummary(trimmed int, freedGB int) string {
	if trimmed == 0 {
		return "Cleanup sweep: no snapshots past retention"
	}
	plural := "s"
	if trimmed == 1 {
		plural = ""
	}
	return "Cleanup sweep: trimmed " + strconv.Itoa(trimmed) + " snapshot" + plural + ", freed " + strconv.Itoa(freedGB) + "GB"
}

// pruneSnapshots deletes the oldest excess snapshots for every (volume,
// snapshot-setting) pair whose count exceeds the setting's max_snapshots
// (default 10), and reports how many were removed and how much capacity
// that freed.
func (h *Housekeeper) pruneSnapshots() (trimmed int, freedGB int) {
	volumes := storage.LoadList[types.Volume](h.store, "volume")
	settings := storage.LoadList[types.Setting](h.store, "settings")
	settingByID := make(map[string]types.Setting, len(settings))
	for _, s := range settings {
		settingByID[s.ID] = s
	}

	snapshots := storage.LoadList[types.Snapshot](h.store, "snapshots")
	byPair := make(map[[2]string][]types.Snapshot)
	for _, snap := range snapshots {
		key := [2]string{snap.VolumeID, snap.SnapshotSettingID}
		byPair[key] = append(byPair[key], snap)
	}

	toDelete := make(map[string]bool)
	for _, vol := range volumes {
		for settingID := range vol.SnapshotSettings {
			setting, ok := settingByID[settingID]
			if !ok || setting.Type != types.SettingTypeSnapshot {
				continue
			}
			maxSnapshots := setting.MaxSnapshots
			if maxSnapshots <= 0 {
				maxSnapshots = 10
			}
			group := byPair[[2]string{vol.ID, settingID}]
			if len(group) <= maxSnapshots {
				continue
			}
			sort.Slice(group, func(i, j int) bool { return group[i].CreatedAt.Before(group[j].CreatedAt) })
			for _, excess := range group[:len(group)-maxSnapshots] {
				toDelete[excess.ID] = true
				trimmed++
				freedGB += excess.Size
			}
		}
	}

	if len(toDelete) == 0 {
		return 0, 0
	}
	if err := storage.DeleteWhere(h.store, "snapshots", func(s types.Snapshot) bool { return toDelete[s.ID] }); err != nil {
		h.logger.Warn().Err(err).Msg("failed to delete excess snapshots")
		return 0, 0
	}
	return trimmed, freedGB
}
