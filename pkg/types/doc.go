// Package types defines the resource model shared across the engine: the
// system/host/volume/snapshot/setting entities, the shared registry entry,
// and the derived metrics and sample records the workers produce.
package types
