package metrics

import (
	"time"

	"github.com/cuemby/arraysim/pkg/types"
)

// Source is the part of the manager the Collector polls; *manager.Manager
// satisfies it. Depending on this interface instead of pkg/manager keeps
// pkg/worker's import of this package free of an import cycle.
type Source interface {
	GetMetrics() types.SystemMetrics
	ListVolumes() []types.Volume
	WorkerCounts() map[string]int
}

// Collector periodically samples the manager's derived metrics and worker
// population into the Prometheus gauges so scrapes never trigger a
// synchronous recompute.
type Collector struct {
	manager Source
	stopCh  chan struct{}
}

// NewCollector creates a new metrics collector bound to one instance's manager.
func NewCollector(mgr Source) *Collector {
	return &Collector{
		manager: mgr,
		stopCh:  make(chan struct{}),
	}
}

// Start begins collecting metrics on a background ticker.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectSystemMetrics()
	c.collectVolumeMetrics()
	c.collectWorkerMetrics()
}

func (c *Collector) collectSystemMetrics() {
	m := c.manager.GetMetrics()
	ThroughputUsed.Set(m.ThroughputUsed)
	CapacityUsed.Set(m.CapacityUsed)
	Saturation.Set(m.Saturation)
	CPUUsage.Set(m.CPUUsage)
	CapacityPercentage.Set(m.CapacityPercentage)
	CurrentLatency.Set(m.CurrentLatency)
}

func (c *Collector) collectVolumeMetrics() {
	volumes := c.manager.ListVolumes()
	exported, notExported := 0, 0
	for _, v := range volumes {
		if v.IsExported {
			exported++
		} else {
			notExported++
		}
	}
	VolumesTotal.WithLabelValues("true").Set(float64(exported))
	VolumesTotal.WithLabelValues("false").Set(float64(notExported))
}

func (c *Collector) collectWorkerMetrics() {
	for role, count := range c.manager.WorkerCounts() {
		WorkersTotal.WithLabelValues(role).Set(float64(count))
	}
}
