package housekeeper

import (
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/arraysim/pkg/log"
	"github.com/cuemby/arraysim/pkg/manager"
	"github.com/cuemby/arraysim/pkg/registry"
	"github.com/cuemby/arraysim/pkg/storage"
	"github.com/cuemby/arraysim/pkg/types"
)

func newTestHousekeeper(t *testing.T) (*Housekeeper, *storage.Store) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.New(dir)
	require.NoError(t, err)
	reg, err := registry.New(filepath.Join(dir, "global_systems.json"))
	require.NoError(t, err)
	events, err := log.NewEventLog(5000, dir)
	require.NoError(t, err)
	logger := zerolog.Nop()
	mgr := manager.New(store, reg, events, logger, 5000)
	return New(store, mgr, events, logger), store
}

func seedSnapshots(t *testing.T, store *storage.Store, volumeID, settingID string, count, maxSnapshots int) {
	t.Helper()
	require.NoError(t, storage.Append(store, "volume", types.Volume{
		ID:               volumeID,
		SnapshotSettings: map[string]int{settingID: 60},
	}, func(v types.Volume) string { return v.ID }))
	require.NoError(t, storage.Append(store, "settings", types.Setting{
		ID:           settingID,
		Type:         types.SettingTypeSnapshot,
		MaxSnapshots: maxSnapshots,
	}, func(s types.Setting) string { return s.ID }))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < count; i++ {
		require.NoError(t, storage.AppendLog(store, "snapshots", types.Snapshot{
			ID:                volumeID + "-snap-" + strconv.Itoa(i),
			VolumeID:          volumeID,
			SnapshotSettingID: settingID,
			CreatedAt:         base.Add(time.Duration(i) * time.Minute),
			Size:              10,
		}))
	}
}

func TestRunOnceTrimsSnapshotsPastRetention(t *testing.T) {
	hk, store := newTestHousekeeper(t)
	seedSnapshots(t, store, "vol1", "setting1", 15, 10)

	hk.RunOnce()

	remaining := storage.LoadList[types.Snapshot](store, "snapshots")
	assert.Len(t, remaining, 10)
}

func TestRunOnceKeepsOldestWhenUnderRetention(t *testing.T) {
	hk, store := newTestHousekeeper(t)
	seedSnapshots(t, store, "vol1", "setting1", 5, 10)

	hk.RunOnce()

	assert.Len(t, storage.LoadList[types.Snapshot](store, "snapshots"), 5)
}

func TestRunOnceTrimsOldestFirst(t *testing.T) {
	hk, store := newTestHousekeeper(t)
	seedSnapshots(t, store, "vol1", "setting1", 12, 10)

	hk.RunOnce()

	remaining := storage.LoadList[types.Snapshot](store, "snapshots")
	require.Len(t, remaining, 10)
	for _, snap := range remaining {
		assert.True(t, snap.CreatedAt.After(time.Now().Add(-time.Hour).Add(time.Minute)))
	}
}

func TestCleanupSummaryFormatting(t *testing.T) {
	assert.Equal(t, "Cleanup sweep: no snapshots past retention", cleanupSummary(0, 0))
	assert.Equal(t, "Cleanup sweep: trimmed 1 snapshot, freed 5GB", cleanupSummary(1, 5))
	assert.Equal(t, "Cleanup sweep: trimmed 3 snapshots, freed 30GB", cleanupSummary(3, 30))
}
