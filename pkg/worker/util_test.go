package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/arraysim/pkg/storage"
	"github.com/cuemby/arraysim/pkg/types"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, round2(1.2345))
	assert.Equal(t, 1.24, round2(1.235))
	assert.Equal(t, 0.0, round2(0))
}

func TestRandIntRangeStaysInBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := randIntRange(5, 10)
		assert.GreaterOrEqual(t, v, 5)
		assert.LessOrEqual(t, v, 10)
	}
}

func TestRandFloatRangeStaysInBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := randFloatRange(1.5, 3.5)
		assert.GreaterOrEqual(t, v, 1.5)
		assert.Less(t, v, 3.5)
	}
}

func TestSleepOrStopReturnsTrueOnElapse(t *testing.T) {
	stop := make(chan struct{})
	assert.True(t, sleepOrStop(5*time.Millisecond, stop))
}

func TestSleepOrStopReturnsFalseOnSignal(t *testing.T) {
	stop := make(chan struct{})
	close(stop)
	assert.False(t, sleepOrStop(time.Second, stop))
}

func TestFindVolumeLocatesByID(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, storage.Append(store, "volume", types.Volume{ID: "v1"}, idOfVolume))

	got, ok := findVolume(store, "v1")
	require.True(t, ok)
	assert.Equal(t, "v1", got.ID)

	_, ok = findVolume(store, "missing")
	assert.False(t, ok)
}
