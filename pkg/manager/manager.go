// Package manager is the Invariant Keeper: it owns the resource model
// (system, hosts, volumes, settings) and is the only thing allowed to spawn
// or cancel the workers in pkg/worker. It never imports pkg/worker's
// collaborators back into itself beyond the Deps it hands out, so there is
// no import cycle between the two packages.
package manager

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cuemby/arraysim/pkg/log"
	"github.com/cuemby/arraysim/pkg/registry"
	"github.com/cuemby/arraysim/pkg/storage"
	"github.com/cuemby/arraysim/pkg/types"
	"github.com/cuemby/arraysim/pkg/worker"
)

const (
	defaultMaxThroughput = 200  // MB/s
	defaultMaxCapacity   = 1024 // GB
	defaultMaxSnapshots  = 10
	defaultSnapshotFreq  = 60 // seconds, matches the source's default frequency list
)

// workerSet is the bookkeeping for one volume's workers: at most one
// workload worker, one snapshot worker per distinct frequency, and one
// replication coordinator (which owns its own per-target workers
// internally — see pkg/worker.RunReplicationCoordinator). This mirrors the
// source's replication_tasks dict, keyed only by volume id.
type workerSet struct {
	workload    *handle
	snapshots   map[int]*handle
	replication *handle
}

type handle struct {
	stop chan struct{}
	done chan struct{}
}

func newHandle() *handle {
	return &handle{stop: make(chan struct{}), done: make(chan struct{})}
}

func (h *handle) cancel(wait time.Duration) {
	close(h.stop)
	select {
	case <-h.done:
	case <-time.After(wait):
	}
}

// Manager is the engine: the sole writer of the resource model and the
// sole owner of the in-memory worker table.
type Manager struct {
	store    *storage.Store
	registry *registry.Registry
	events   *log.EventLog
	logger   zerolog.Logger
	http     *http.Client
	port     int

	mu      sync.RWMutex
	workers map[string]*workerSet // keyed by volume id
}

// New constructs a Manager bound to one instance's persistence, registry,
// and logging surfaces.
func New(store *storage.Store, reg *registry.Registry, events *log.EventLog, logger zerolog.Logger, port int) *Manager {
	return &Manager{
		store:    store,
		registry: reg,
		events:   events,
		logger:   logger.With().Str("component", "manager").Logger(),
		http:     &http.Client{},
		port:     port,
		workers:  make(map[string]*workerSet),
	}
}

// Resume rehydrates workers for every volume already marked exported on
// disk — used on process startup so a restarted instance doesn't silently
// leave exported volumes with no workers.
func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, vol := range storage.LoadList[types.Volume](m.store, "volume") {
		if vol.IsExported {
			m.spawnWorkersLocked(vol)
		}
	}
}

func (m *Manager) deps() worker.Deps {
	sys := m.currentSystem()
	return worker.Deps{
		Store:      m.store,
		Events:     m.events,
		Registry:   m.registry,
		HTTPClient: m.http,
		Logger:     m.logger,
		SystemID:   sys.ID,
		SystemName: sys.Name,
		Recompute:  m.Recompute,
	}
}

func (m *Manager) currentSystem() types.System {
	return storage.LoadSingleton[types.System](m.store, "system")
}

// --- System ---

// CreateSystemOpts are the optional fields accepted by CreateSystem.
type CreateSystemOpts struct {
	MaxThroughput *float64
	MaxCapacity   *float64
}

func (m *Manager) CreateSystem(opts CreateSystemOpts) (types.System, error) {
	existing := m.currentSystem()
	if existing.ID != "" {
		return types.System{}, errConflict("system already exists in this instance")
	}

	sys := types.System{
		ID:            uuid.NewString(),
		Name:          strconv.Itoa(m.port),
		MaxThroughput: defaultMaxThroughput,
		MaxCapacity:   defaultMaxCapacity,
		CreatedAt:     time.Now(),
	}
	if opts.MaxThroughput != nil {
		sys.MaxThroughput = *opts.MaxThroughput
	}
	if opts.MaxCapacity != nil {
		sys.MaxCapacity = *opts.MaxCapacity
	}

	if err := storage.Overwrite(m.store, "system", sys); err != nil {
		return types.System{}, errInternal("failed to create system: %s", err)
	}
	if err := m.registry.Add(sys.ID, sys.Name, m.port); err != nil {
		m.logger.Warn().Err(err).Msg("failed to register system in shared registry")
	}
	if err := storage.Overwrite(m.store, "system_metrics", types.SystemMetrics{}); err != nil {
		m.logger.Warn().Err(err).Msg("failed to initialize system metrics")
	}
	m.events.Info(fmt.Sprintf("System created with ID: %s", sys.ID), true)
	return sys, nil
}

func (m *Manager) GetSystem() (types.System, error) {
	sys := m.currentSystem()
	if sys.ID == "" {
		return types.System{}, errNotFound("no system exists on this instance")
	}
	return sys, nil
}

// UpdateSystem rejects any attempt to touch max_throughput/max_capacity,
// per I1 and §7's InvalidArgument taxonomy; only the name may ever change,
// and the name is fixed at creation, so this is effectively a validated
// no-op echo of the current system — matching the source's update_system,
// which re-saves the unmodified record.
func (m *Manager) UpdateSystem(mutatesMaxFields bool) (types.System, error) {
	sys := m.currentSystem()
	if sys.ID == "" {
		return types.System{}, errNotFound("no system exists on this instance")
	}
	if mutatesMaxFields {
		return types.System{}, errInvalid("cannot modify max_throughput or max_capacity after system creation")
	}
	if err := storage.Overwrite(m.store, "system", sys); err != nil {
		return types.System{}, errInternal("failed to update system: %s", err)
	}
	return sys, nil
}

func (m *Manager) DeleteSystem() error {
	sys := m.currentSystem()
	if sys.ID == "" {
		return nil // idempotent
	}

	for _, vol := range storage.LoadList[types.Volume](m.store, "volume") {
		m.teardownVolumeWorkers(vol.ID, "system deletion")
	}
	_ = storage.Delete[types.Volume](m.store, "volume", nil, func(v types.Volume) string { return v.ID })
	_ = storage.Delete[types.Host](m.store, "host", nil, func(h types.Host) string { return h.ID })
	_ = storage.Delete[types.Setting](m.store, "settings", nil, func(s types.Setting) string { return s.ID })
	_ = storage.Delete[types.Snapshot](m.store, "snapshots", nil, func(s types.Snapshot) string { return s.ID })
	_ = storage.Overwrite(m.store, "system", types.System{})
	_ = storage.Overwrite(m.store, "system_metrics", types.SystemMetrics{})

	if err := m.registry.Remove(sys.ID); err != nil {
		m.logger.Warn().Err(err).Msg("failed to deregister system")
	}
	m.events.Info(fmt.Sprintf("System %s and all related data deleted", sys.ID), true)
	return nil
}

// --- Host ---

func idOfHost(h types.Host) string { return h.ID }

func (m *Manager) CreateHost(systemID, name, appType, protocol string) (types.Host, error) {
	if systemID == "" {
		return types.Host{}, errInvalid("system ID is required to create a host")
	}
	sys := m.currentSystem()
	if sys.ID != systemID {
		return types.Host{}, errInvalid("invalid system ID")
	}
	if name == "" {
		name = "DefaultHost"
	}
	if appType == "" {
		appType = "Unknown"
	}
	if protocol == "" {
		protocol = "Unknown"
	}

	for _, h := range storage.LoadList[types.Host](m.store, "host") {
		if h.Name == name && h.SystemID == systemID {
			return types.Host{}, errConflict("host %q already exists for system %s", name, systemID)
		}
	}

	host := types.Host{ID: uuid.NewString(), SystemID: systemID, Name: name, ApplicationType: appType, Protocol: protocol}
	if err := storage.Append(m.store, "host", host, idOfHost); err != nil {
		return types.Host{}, errInternal("failed to create host: %s", err)
	}
	return host, nil
}

func (m *Manager) GetHost(id string) (types.Host, error) {
	for _, h := range storage.LoadList[types.Host](m.store, "host") {
		if h.ID == id {
			return h, nil
		}
	}
	return types.Host{}, errNotFound("host not found")
}

func (m *Manager) ListHosts() []types.Host {
	return storage.LoadList[types.Host](m.store, "host")
}

func (m *Manager) UpdateHost(id string, name, appType, protocol *string) (types.Host, error) {
	host, err := m.GetHost(id)
	if err != nil {
		return types.Host{}, err
	}
	if name != nil {
		host.Name = *name
	}
	if appType != nil {
		host.ApplicationType = *appType
	}
	if protocol != nil {
		host.Protocol = *protocol
	}
	if err := storage.Replace(m.store, "host", id, host, idOfHost); err != nil {
		return types.Host{}, errInternal("failed to update host: %s", err)
	}
	return host, nil
}

// DeleteHost unexports every volume still pointing at this host before
// removing it, per spec.md §4.2.
func (m *Manager) DeleteHost(id string) error {
	for _, vol := range storage.LoadList[types.Volume](m.store, "volume") {
		if vol.ExportedHostID != nil && *vol.ExportedHostID == id {
			if err := m.UnexportVolume(vol.ID, fmt.Sprintf("host %s deleted", id)); err != nil {
				m.logger.Warn().Err(err).Str("volume_id", vol.ID).Msg("failed to unexport volume during host delete")
			}
		}
	}
	if err := storage.Delete[types.Host](m.store, "host", &id, idOfHost); err != nil {
		return errInternal("failed to delete host: %s", err)
	}
	return nil
}

// --- Volume ---

func (m *Manager) GetVolume(id string) (types.Volume, error) {
	for _, v := range storage.LoadList[types.Volume](m.store, "volume") {
		if v.ID == id {
			return v, nil
		}
	}
	return types.Volume{}, errNotFound("volume not found")
}

func (m *Manager) ListVolumes() []types.Volume {
	return storage.LoadList[types.Volume](m.store, "volume")
}

func (m *Manager) ListExportedVolumes() []types.Volume {
	var out []types.Volume
	for _, v := range storage.LoadList[types.Volume](m.store, "volume") {
		if v.IsExported {
			out = append(out, v)
		}
	}
	return out
}

func (m *Manager) CreateVolume(systemID, name string, size int) (types.Volume, error) {
	if systemID == "" || name == "" {
		return types.Volume{}, errInvalid("system ID, volume name, and volume size are required")
	}
	sys := m.currentSystem()
	if sys.ID != systemID {
		return types.Volume{}, errNotFound("system not found")
	}
	if size > int(sys.MaxCapacity) {
		return types.Volume{}, errCapacity("volume size exceeds system capacity of %d GB", int(sys.MaxCapacity))
	}

	used := m.capacityUsed()
	if used+float64(size) > sys.MaxCapacity {
		return types.Volume{}, errCapacity("creating this volume would exceed system capacity of %d GB", int(sys.MaxCapacity))
	}

	vol := types.Volume{
		ID:                  uuid.NewString(),
		SystemID:            systemID,
		Name:                name,
		Size:                size,
		SnapshotSettings:    map[string]int{},
		SnapshotFrequencies: []int{},
		ReplicationSettings: []types.ReplicationBinding{},
	}
	if err := storage.Append(m.store, "volume", vol, idOfVolume); err != nil {
		return types.Volume{}, errInternal("failed to create volume: %s", err)
	}
	if err := m.Recompute(); err != nil {
		m.logger.Warn().Err(err).Msg("failed to recompute metrics after volume creation")
	}
	return vol, nil
}

func idOfVolume(v types.Volume) string { return v.ID }

// UpdateVolume applies a new set of settings and snapshot frequencies to a
// volume. If the volume is currently exported it is force-unexported first
// (stopping all its workers) and is NOT re-exported afterward — this is a
// literal preservation of the source's update_volume route, which restarts
// snapshot workers with the new frequency list but never sets is_exported
// back to true, so the freshly spawned snapshot workers see the volume as
// unexported on their very first reload and exit immediately.
func (m *Manager) UpdateVolume(volumeID string, settingIDs []string, snapshotFrequencies []int) (types.Volume, error) {
	vol, err := m.GetVolume(volumeID)
	if err != nil {
		return types.Volume{}, err
	}

	if vol.IsExported {
		if err := m.UnexportVolume(volumeID, "Volume update"); err != nil {
			return types.Volume{}, err
		}
		vol, err = m.GetVolume(volumeID)
		if err != nil {
			return types.Volume{}, err
		}
	}

	settings := storage.LoadList[types.Setting](m.store, "settings")
	validIDs := make(map[string]types.Setting, len(settings))
	for _, s := range settings {
		validIDs[s.ID] = s
	}
	for _, sid := range settingIDs {
		if _, ok := validIDs[sid]; !ok {
			return types.Volume{}, errInvalid("invalid setting ID: %s", sid)
		}
	}

	if vol.SnapshotSettings == nil {
		vol.SnapshotSettings = map[string]int{}
	}
	wanted := make(map[string]bool, len(settingIDs))
	for _, sid := range settingIDs {
		wanted[sid] = true
	}
	for sid := range vol.SnapshotSettings {
		if !wanted[sid] {
			delete(vol.SnapshotSettings, sid)
		}
	}
	kept := vol.ReplicationSettings[:0:0]
	for _, r := range vol.ReplicationSettings {
		if wanted[r.SettingID] {
			kept = append(kept, r)
		}
	}
	vol.ReplicationSettings = kept

	for _, sid := range settingIDs {
		setting := validIDs[sid]
		switch setting.Type {
		case types.SettingTypeSnapshot:
			if _, exists := vol.SnapshotSettings[sid]; !exists {
				vol.SnapshotSettings[sid] = setting.Value
			}
		case types.SettingTypeReplication:
			already := false
			for _, r := range vol.ReplicationSettings {
				if r.SettingID == sid {
					already = true
					break
				}
			}
			if !already {
				if setting.ReplicationTarget.ID == "" {
					return types.Volume{}, errInvalid("setting %s has invalid replication target", sid)
				}
				vol.ReplicationSettings = append(vol.ReplicationSettings, types.ReplicationBinding{
					SettingID:         sid,
					ReplicationType:   setting.ReplicationType,
					DelaySec:          setting.DelaySec,
					ReplicationTarget: setting.ReplicationTarget,
				})
			}
		}
	}

	vol.SnapshotFrequencies = snapshotFrequencies
	if err := storage.Replace(m.store, "volume", volumeID, vol, idOfVolume); err != nil {
		return types.Volume{}, errInternal("failed to update volume: %s", err)
	}

	m.mu.Lock()
	m.spawnSnapshotWorkersLocked(vol)
	m.mu.Unlock()

	return vol, nil
}

func (m *Manager) DeleteVolume(volumeID string) error {
	vol, err := m.GetVolume(volumeID)
	if err != nil {
		if e, ok := err.(*Error); ok && e.Kind == NotFound {
			return nil
		}
		return err
	}
	if vol.IsExported {
		m.teardownVolumeWorkers(volumeID, "volume deletion")
	}
	if err := storage.DeleteWhere(m.store, "snapshots", func(s types.Snapshot) bool { return s.VolumeID == volumeID }); err != nil {
		m.logger.Warn().Err(err).Msg("failed to delete volume's snapshots")
	}
	if err := storage.Delete[types.Volume](m.store, "volume", &volumeID, idOfVolume); err != nil {
		return errInternal("failed to delete volume: %s", err)
	}
	if err := m.Recompute(); err != nil {
		m.logger.Warn().Err(err).Msg("failed to recompute metrics after volume deletion")
	}
	return nil
}

// ExportVolume marks a volume exported and spawns its workers (§4.2, I7).
func (m *Manager) ExportVolume(volumeID, hostID string, workloadSizeKB int) (types.Volume, error) {
	vol, err := m.GetVolume(volumeID)
	if err != nil {
		return types.Volume{}, err
	}
	if _, err := m.GetHost(hostID); err != nil {
		return types.Volume{}, errInvalid("invalid volume or host ID")
	}
	if vol.IsExported {
		return types.Volume{}, errPrecondition("volume is already exported")
	}

	vol.IsExported = true
	vol.ExportedHostID = &hostID
	if workloadSizeKB > 0 {
		vol.WorkloadSize = &workloadSizeKB
	}
	if err := storage.Replace(m.store, "volume", volumeID, vol, idOfVolume); err != nil {
		return types.Volume{}, errInternal("failed to export volume: %s", err)
	}

	m.mu.Lock()
	m.spawnWorkersLocked(vol)
	m.mu.Unlock()

	if err := m.Recompute(); err != nil {
		m.logger.Warn().Err(err).Msg("failed to recompute metrics after export")
	}
	return vol, nil
}

// UnexportVolume stops all workers for the volume, notifies replication
// targets best-effort, clears exported fields, and recomputes metrics.
func (m *Manager) UnexportVolume(volumeID, reason string) error {
	vol, err := m.GetVolume(volumeID)
	if err != nil {
		return err
	}
	if !vol.IsExported {
		return errPrecondition("volume is not exported")
	}

	m.teardownVolumeWorkers(volumeID, reason)
	worker.NotifyReplicationStop(m.deps(), vol, reason)

	vol.IsExported = false
	vol.ExportedHostID = nil
	vol.WorkloadSize = nil
	if err := storage.Replace(m.store, "volume", volumeID, vol, idOfVolume); err != nil {
		return errInternal("failed to unexport volume: %s", err)
	}
	m.events.Info(fmt.Sprintf("Volume %s unexported: %s", volumeID, reason), true)

	if err := m.Recompute(); err != nil {
		m.logger.Warn().Err(err).Msg("failed to recompute metrics after unexport")
	}
	return nil
}

func (m *Manager) spawnWorkersLocked(vol types.Volume) {
	ws := &workerSet{snapshots: make(map[int]*handle)}
	m.workers[vol.ID] = ws

	wh := newHandle()
	ws.workload = wh
	go func() { defer close(wh.done); worker.RunWorkload(m.deps(), vol.ID, wh.stop) }()

	m.spawnSnapshotWorkersLocked(vol)

	if len(vol.ReplicationSettings) > 0 {
		rh := newHandle()
		ws.replication = rh
		go func() { defer close(rh.done); worker.RunReplicationCoordinator(m.deps(), vol.ID, rh.stop) }()
	}
}

// spawnSnapshotWorkersLocked stops any running snapshot workers for vol and
// starts one per distinct entry in vol.SnapshotFrequencies. Must be called
// with m.mu held.
func (m *Manager) spawnSnapshotWorkersLocked(vol types.Volume) {
	ws, ok := m.workers[vol.ID]
	if !ok {
		ws = &workerSet{snapshots: make(map[int]*handle)}
		m.workers[vol.ID] = ws
	}
	for freq, h := range ws.snapshots {
		h.cancel(time.Second)
		delete(ws.snapshots, freq)
	}
	seen := make(map[int]bool)
	for _, freq := range vol.SnapshotFrequencies {
		if freq <= 0 || seen[freq] {
			continue
		}
		seen[freq] = true
		h := newHandle()
		ws.snapshots[freq] = h
		go func(freq int, h *handle) {
			defer close(h.done)
			worker.RunSnapshot(m.deps(), vol.ID, freq, h.stop)
		}(freq, h)
	}
}

func (m *Manager) teardownVolumeWorkers(volumeID, reason string) {
	m.mu.Lock()
	ws, ok := m.workers[volumeID]
	if ok {
		delete(m.workers, volumeID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	if ws.workload != nil {
		ws.workload.cancel(time.Second)
	}
	for _, h := range ws.snapshots {
		h.cancel(time.Second)
	}
	if ws.replication != nil {
		ws.replication.cancel(time.Second)
	}
}

// --- Settings ---

func idOfSetting(s types.Setting) string { return s.ID }

type CreateSettingOpts struct {
	SystemID          string
	Name              string
	Type              types.SettingType
	Value             int
	MaxSnapshots      int
	ReplicationType   types.ReplicationType
	DelaySec          int
	ReplicationTarget types.ReplicationTarget
}

func (m *Manager) CreateSetting(opts CreateSettingOpts) (types.Setting, error) {
	sys := m.currentSystem()
	if sys.ID == "" {
		return types.Setting{}, errNotFound("no system exists. create one first")
	}
	if opts.SystemID != sys.ID {
		return types.Setting{}, errInvalid("invalid system_id")
	}
	if opts.Name == "" || opts.Type == "" {
		return types.Setting{}, errInvalid("name, type, and system_id are required")
	}

	setting := types.Setting{ID: uuid.NewString(), SystemID: opts.SystemID, Name: opts.Name, Type: opts.Type}

	switch opts.Type {
	case types.SettingTypeSnapshot:
		if opts.Value <= 0 {
			return types.Setting{}, errInvalid("value is required for non-replication settings")
		}
		setting.Value = opts.Value
		if opts.MaxSnapshots > 0 {
			setting.MaxSnapshots = opts.MaxSnapshots
		} else {
			setting.MaxSnapshots = defaultMaxSnapshots
		}
	case types.SettingTypeReplication:
		if err := validateReplicationSetting(opts, sys.ID); err != nil {
			return types.Setting{}, err
		}
		setting.ReplicationType = opts.ReplicationType
		setting.DelaySec = opts.DelaySec
		setting.ReplicationTarget = opts.ReplicationTarget
	default:
		return types.Setting{}, errInvalid("unknown setting type %q", opts.Type)
	}

	if err := storage.Append(m.store, "settings", setting, idOfSetting); err != nil {
		return types.Setting{}, errInternal("failed to create setting: %s", err)
	}
	return setting, nil
}

// validateReplicationSetting enforces I4/I5 at the control boundary.
func validateReplicationSetting(opts CreateSettingOpts, systemID string) error {
	if opts.ReplicationType != types.ReplicationSynchronous && opts.ReplicationType != types.ReplicationAsynchronous {
		return errInvalid("invalid replication type")
	}
	if opts.ReplicationType == types.ReplicationSynchronous && opts.DelaySec != 0 {
		return errInvalid("synchronous replication must have delay_sec = 0")
	}
	if opts.ReplicationType == types.ReplicationAsynchronous && opts.DelaySec <= 0 {
		return errInvalid("asynchronous replication must have delay_sec > 0")
	}
	if opts.ReplicationTarget.ID == "" || opts.ReplicationTarget.ID == systemID {
		return errInvalid("invalid replication target")
	}
	return nil
}

func (m *Manager) GetSetting(id string) (types.Setting, error) {
	for _, s := range storage.LoadList[types.Setting](m.store, "settings") {
		if s.ID == id {
			return s, nil
		}
	}
	return types.Setting{}, errNotFound("settings not found")
}

// UpdateSetting replaces a setting's definition in place, stopping and
// restarting replication for every exported volume that references it
// (§4.2). The setting keeps its id; only its id stays stable across the
// replace, matching the effect (not the literal id-churn) of the source's
// update_settings route.
func (m *Manager) UpdateSetting(id string, opts CreateSettingOpts) (types.Setting, error) {
	existing, err := m.GetSetting(id)
	if err != nil {
		return types.Setting{}, err
	}

	affected := make([]types.Volume, 0)
	for _, v := range storage.LoadList[types.Volume](m.store, "volume") {
		for _, r := range v.ReplicationSettings {
			if r.SettingID == id {
				affected = append(affected, v)
				break
			}
		}
	}
	for _, v := range affected {
		if v.IsExported {
			m.teardownVolumeWorkers(v.ID, fmt.Sprintf("settings %s update", id))
		}
	}

	updated := types.Setting{ID: id, SystemID: opts.SystemID, Name: opts.Name, Type: opts.Type}
	switch opts.Type {
	case types.SettingTypeSnapshot:
		if opts.Value <= 0 {
			return types.Setting{}, errInvalid("value is required for non-replication settings")
		}
		updated.Value = opts.Value
		if opts.MaxSnapshots > 0 {
			updated.MaxSnapshots = opts.MaxSnapshots
		} else {
			updated.MaxSnapshots = defaultMaxSnapshots
		}
	case types.SettingTypeReplication:
		if err := validateReplicationSetting(opts, opts.SystemID); err != nil {
			return types.Setting{}, err
		}
		updated.ReplicationType = opts.ReplicationType
		updated.DelaySec = opts.DelaySec
		updated.ReplicationTarget = opts.ReplicationTarget
	default:
		return types.Setting{}, errInvalid("unknown setting type %q", opts.Type)
	}
	_ = existing

	if err := storage.Replace(m.store, "settings", id, updated, idOfSetting); err != nil {
		return types.Setting{}, errInternal("failed to update settings: %s", err)
	}

	for _, v := range affected {
		if v.IsExported {
			m.mu.Lock()
			m.spawnWorkersLocked(v)
			m.mu.Unlock()
		}
	}

	return updated, nil
}

func (m *Manager) DeleteSetting(id string) error {
	if _, err := m.GetSetting(id); err != nil {
		return err
	}
	if err := storage.Delete[types.Setting](m.store, "settings", &id, idOfSetting); err != nil {
		return errInternal("failed to delete settings: %s", err)
	}
	return nil
}

func (m *Manager) capacityUsed() float64 {
	var used float64
	for _, v := range storage.LoadList[types.Volume](m.store, "volume") {
		used += float64(v.Size)
	}
	for _, s := range storage.LoadList[types.Snapshot](m.store, "snapshots") {
		used += float64(s.Size)
	}
	return used
}

func idOfSnapshot(s types.Snapshot) string { return s.ID }

// WorkerCounts reports the number of live workers by role, for exposition
// on the metrics endpoint.
func (m *Manager) WorkerCounts() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := map[string]int{"workload": 0, "snapshot": 0, "replication": 0}
	for _, ws := range m.workers {
		if ws.workload != nil {
			counts["workload"]++
		}
		counts["snapshot"] += len(ws.snapshots)
		if ws.replication != nil {
			counts["replication"]++
		}
	}
	return counts
}
