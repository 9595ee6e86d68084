package types

import "time"

// System is the single array owned by an instance. Exactly one exists per
// running process once create_system has completed.
type System struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"` // fixed to the instance port at creation
	MaxThroughput float64   `json:"max_throughput"` // MB/s
	MaxCapacity   float64   `json:"max_capacity"`   // GB
	CreatedAt     time.Time `json:"created_at"`
}

// Host is a named client endpoint that volumes can be exported to.
type Host struct {
	ID              string `json:"id"`
	SystemID        string `json:"system_id"`
	Name            string `json:"name"`
	ApplicationType string `json:"application_type"`
	Protocol        string `json:"protocol"`
}

// Volume is a provisioned unit of storage, optionally exported to a host.
type Volume struct {
	ID       string `json:"id"`
	SystemID string `json:"system_id"`
	Name     string `json:"name"`
	Size     int    `json:"size"` // GB

	IsExported     bool    `json:"is_exported"`
	ExportedHostID *string `json:"exported_host_id,omitempty"`
	WorkloadSize   *int    `json:"workload_size,omitempty"` // KB per I/O, overrides IODefaultSizeKB

	// SnapshotSettings maps a snapshot setting id to the frequency (seconds)
	// it was applied with. SnapshotFrequencies is the same frequencies as a
	// flat list, kept independently so it round-trips as its own field the
	// way the source format stores it.
	SnapshotSettings    map[string]int `json:"snapshot_settings"`
	SnapshotFrequencies []int          `json:"snapshot_frequencies"`

	ReplicationSettings []ReplicationBinding `json:"replication_settings"`

	SnapshotCount int `json:"snapshot_count"`
}

// ReplicationBinding is one (target, type, delay) entry attached to a volume.
// It denormalizes the fields of the referenced replication Setting so the
// replication workers never have to join back to settings.json.
type ReplicationBinding struct {
	SettingID         string            `json:"setting_id"`
	ReplicationType   ReplicationType   `json:"replication_type"`
	DelaySec          int               `json:"delay_sec"`
	ReplicationTarget ReplicationTarget `json:"replication_target"`
}

// ReplicationTarget identifies the peer system a replication binding points at.
type ReplicationTarget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReplicationType enumerates the two replication modes.
type ReplicationType string

const (
	ReplicationSynchronous  ReplicationType = "synchronous"
	ReplicationAsynchronous ReplicationType = "asynchronous"
)

// Snapshot is a point-in-time record owned by a volume.
type Snapshot struct {
	ID                string    `json:"id"`
	VolumeID          string    `json:"volume_id"`
	SnapshotSettingID string    `json:"snapshot_setting_id"`
	CreatedAt         time.Time `json:"created_at"`
	FrequencySec      int       `json:"frequency_sec"`
	Size              int       `json:"size"` // parent volume size at creation time
}

// SettingType distinguishes the two Setting variants.
type SettingType string

const (
	SettingTypeSnapshot    SettingType = "snapshot"
	SettingTypeReplication SettingType = "replication"
)

// Setting is a tagged union: a snapshot policy or a replication policy for a
// system. Exactly the fields for its Type are meaningful; the others are
// zero-valued. The zero scalar fields are omitted from JSON; the struct-valued
// replication_target is always written, empty on a snapshot setting.
type Setting struct {
	ID       string      `json:"id"`
	SystemID string      `json:"system_id"`
	Name     string      `json:"name"`
	Type     SettingType `json:"type"`

	// Snapshot variant.
	Value        int `json:"value,omitempty"`         // frequency in seconds
	MaxSnapshots int `json:"max_snapshots,omitempty"` // retention; default 10

	// Replication variant.
	ReplicationType   ReplicationType   `json:"replication_type,omitempty"`
	DelaySec          int               `json:"delay_sec,omitempty"`
	ReplicationTarget ReplicationTarget `json:"replication_target,omitempty"`
}

// RegistryEntry is one row of the shared cross-instance registry
// (global_systems.json).
type RegistryEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Port int    `json:"port"`
}

// SystemMetrics is the derived-metrics singleton for a system. It is only
// ever written by the manager's recompute routine.
type SystemMetrics struct {
	ThroughputUsed     float64 `json:"throughput_used"`
	CapacityUsed       float64 `json:"capacity_used"`
	Saturation         float64 `json:"saturation"`
	CPUUsage           float64 `json:"cpu_usage"`
	VolumeCapacity     float64 `json:"volume_capacity"`
	SnapshotCapacity   float64 `json:"snapshot_capacity"`
	CapacityPercentage float64 `json:"capacity_percentage"`
	CurrentLatency     float64 `json:"current_latency"`
}

// IOSample is one emitted workload measurement, appended to the io_metrics
// collection.
type IOSample struct {
	Timestamp  time.Time `json:"timestamp"`
	VolumeID   string    `json:"volume_id"`
	HostID     string    `json:"host_id"`
	IOPS       int       `json:"iops"`
	Latency    float64   `json:"latency"`    // ms
	Throughput float64   `json:"throughput"` // MB/s
}

// ReplicationMetric is one (volume, target) sample overwritten on every
// replication worker iteration, keyed by volume id then target id (or
// "received_from_<sender>" on the receiving instance).
type ReplicationMetric struct {
	Throughput      float64         `json:"throughput"`
	Latency         float64         `json:"latency"`
	IOPS            int             `json:"iops"`
	ReplicationType ReplicationType `json:"replication_type"`
	Timestamp       time.Time       `json:"timestamp"`
	LastUpdated     time.Time       `json:"last_updated"`
}

// ReplicationMetrics is the full replication_metrics.json singleton: volume
// id -> target key -> metric record.
type ReplicationMetrics map[string]map[string]ReplicationMetric
