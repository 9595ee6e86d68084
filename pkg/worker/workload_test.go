package worker

import (
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/arraysim/pkg/log"
	"github.com/cuemby/arraysim/pkg/storage"
	"github.com/cuemby/arraysim/pkg/types"
)

var sampleLineRe = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\]\[INFO\] Volume: v1, Host: h1, IOPS: \d+, Latency: [\d.]+ms, Throughput: [\d.]+ MB/s$`)

func TestRunWorkloadEmitsParseableSampleLineAndExitsOnStop(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.New(dir)
	require.NoError(t, err)
	events, err := log.NewEventLog(5000, dir)
	require.NoError(t, err)

	hostID := "h1"
	require.NoError(t, storage.Append(store, "volume", types.Volume{
		ID: "v1", IsExported: true, ExportedHostID: &hostID,
	}, idOfVolume))

	d := Deps{Store: store, Events: events, Logger: zerolog.Nop()}
	stop := make(chan struct{})

	done := make(chan struct{})
	go func() { defer close(done); RunWorkload(d, "v1", stop) }()

	// Unexport the volume, then signal stop. The worker is inside its 30s
	// sleep after the first sample, so it is the stop signal that ends the
	// loop here, not a reload that sees the volume unexported.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, storage.Overwrite(store, "volume", []types.Volume{{ID: "v1", IsExported: false}}))
	close(stop)
	<-done

	lines, err := events.LocalTail(100)
	require.NoError(t, err)
	require.NotEmpty(t, lines)
	assert.Regexp(t, sampleLineRe, lines[0])

	samples := storage.LoadList[types.IOSample](store, "io_metrics")
	require.NotEmpty(t, samples)
	assert.Equal(t, "v1", samples[0].VolumeID)
	assert.Equal(t, "h1", samples[0].HostID)
}
