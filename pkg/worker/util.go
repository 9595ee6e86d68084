package worker

import (
	"math/rand"
	"time"

	"github.com/cuemby/arraysim/pkg/storage"
	"github.com/cuemby/arraysim/pkg/types"
)

func idOfVolume(v types.Volume) string { return v.ID }

func findVolume(store *storage.Store, id string) (types.Volume, bool) {
	for _, v := range storage.LoadList[types.Volume](store, "volume") {
		if v.ID == id {
			return v, true
		}
	}
	return types.Volume{}, false
}

func randIntRange(min, max int) int {
	return min + rand.Intn(max-min+1)
}

func randFloatRange(min, max float64) float64 {
	return min + rand.Float64()*(max-min)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

// sleepOrStop waits for d or the stop channel, whichever comes first. It
// reports whether the full duration elapsed (false means the caller should
// exit).
func sleepOrStop(d time.Duration, stop <-chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-stop:
		return false
	}
}
