package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewTimer tests timer creation
func TestNewTimer(t *testing.T) {
	timer := NewTimer()

	if timer == nil {
		t.Fatal("NewTimer() returned nil")
	}

	if timer.start.IsZero() {
		t.Error("NewTimer() start time is zero")
	}

	// Verify start time is recent (within last second)
	if time.Since(timer.start) > time.Second {
		t.Error("NewTimer() start time is not recent")
	}
}

// TestTimerDuration tests duration measurement
func TestTimerDuration(t *testing.T) {
	timer := NewTimer()

	// Sleep for a known duration
	sleepDuration := 100 * time.Millisecond
	time.Sleep(sleepDuration)

	duration := timer.Duration()

	// Verify duration is at least the sleep duration (allowing small overhead)
	if duration < sleepDuration {
		t.Errorf("Timer.Duration() = %v, want >= %v", duration, sleepDuration)
	}

	// Verify duration is reasonable (less than 2x sleep duration)
	if duration > 2*sleepDuration {
		t.Errorf("Timer.Duration() = %v, want < %v", duration, 2*sleepDuration)
	}
}

// TestTimerObserveDuration mirrors how the housekeeper's sweep timer feeds
// HousekeeperSweepDuration: a plain (unlabeled) histogram observation.
func TestTimerObserveDuration(t *testing.T) {
	sweepHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_housekeeper_sweep_duration_seconds",
		Help:    "Test housekeeper sweep duration histogram",
		Buckets: prometheus.DefBuckets,
	})

	timer := NewTimer()
	time.Sleep(50 * time.Millisecond)

	timer.ObserveDuration(sweepHistogram)

	duration := timer.Duration()
	if duration == 0 {
		t.Error("Timer.ObserveDuration() recorded zero duration")
	}
}

// TestTimerObserveDurationVec mirrors how pkg/api's request middleware feeds
// APIRequestDuration, labeled by route.
func TestTimerObserveDurationVec(t *testing.T) {
	requestHistogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "test_api_request_duration_seconds",
			Help:    "Test API request duration histogram",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	timer := NewTimer()
	time.Sleep(50 * time.Millisecond)

	timer.ObserveDurationVec(requestHistogram, "POST /volume")

	duration := timer.Duration()
	if duration == 0 {
		t.Error("Timer.ObserveDurationVec() recorded zero duration")
	}
}

// TestTimerMultipleCalls tests that Duration can be called multiple times
func TestTimerMultipleCalls(t *testing.T) {
	timer := NewTimer()

	time.Sleep(50 * time.Millisecond)
	duration1 := timer.Duration()

	time.Sleep(50 * time.Millisecond)
	duration2 := timer.Duration()

	// Second call should be longer
	if duration2 <= duration1 {
		t.Errorf("Second Duration() call should be longer: first=%v, second=%v", duration1, duration2)
	}

	// Both should be non-zero
	if duration1 == 0 || duration2 == 0 {
		t.Error("Duration() should return non-zero values")
	}
}

// TestTimerZeroDuration tests timer with minimal duration
func TestTimerZeroDuration(t *testing.T) {
	timer := NewTimer()

	// Don't sleep - check duration immediately
	duration := timer.Duration()

	if duration < 0 {
		t.Errorf("Timer.Duration() = %v, want >= 0", duration)
	}

	if duration > time.Millisecond {
		t.Errorf("Timer.Duration() = %v, want < 1ms for immediate call", duration)
	}
}

// TestConcurrentWorkerTimersAreIndependent mirrors the manager spawning one
// timer per worker (workload, snapshot, replication) concurrently — each
// must track its own elapsed time independently of the others.
func TestConcurrentWorkerTimersAreIndependent(t *testing.T) {
	workloadTimer := NewTimer()
	time.Sleep(50 * time.Millisecond)

	replicationTimer := NewTimer()
	time.Sleep(50 * time.Millisecond)

	workloadElapsed := workloadTimer.Duration()
	replicationElapsed := replicationTimer.Duration()

	if workloadElapsed <= replicationElapsed {
		t.Errorf("workload timer should be running longer: workload=%v, replication=%v", workloadElapsed, replicationElapsed)
	}

	if workloadElapsed == 0 || replicationElapsed == 0 {
		t.Error("both timers should have non-zero durations")
	}
}

// TestTimerConsistency tests that Duration returns consistent increasing values
func TestTimerConsistency(t *testing.T) {
	timer := NewTimer()

	var lastDuration time.Duration
	for i := 0; i < 5; i++ {
		time.Sleep(10 * time.Millisecond)
		duration := timer.Duration()

		if duration <= lastDuration {
			t.Errorf("Duration should be monotonically increasing: iteration %d, last=%v, current=%v", i, lastDuration, duration)
		}

		lastDuration = duration
	}
}
