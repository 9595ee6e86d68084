package api

import (
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// logLineRe matches the workload worker's sample line:
// "[2026-07-31 00:00:00][INFO] Volume: v1, Host: h1, IOPS: 500, Latency: 2.50ms, Throughput: 10.00 MB/s"
var logLineRe = regexp.MustCompile(`^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\]\[INFO\] Volume: ([^,]+), Host: ([^,]+), IOPS: (\d+), Latency: ([\d.]+)ms, Throughput: ([\d.]+) MB/s$`)

const logTimestampLayout = "2006-01-02 15:04:05"

const latencyWindow = 15 * time.Minute

type latencySample struct {
	volumeID string
	latency  float64
}

// recentLatencySamples parses every workload sample line from the instance
// log within the last 15 minutes (§6 GET /api/latency, /api/top-latency).
func (s *Server) recentLatencySamples() ([]latencySample, error) {
	lines, err := s.events.LocalTail(fullLogTailLines)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-latencyWindow)
	var out []latencySample
	for _, line := range lines {
		m := logLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		ts, err := time.ParseInLocation(logTimestampLayout, m[1], time.Local)
		if err != nil || ts.Before(cutoff) {
			continue
		}
		latency, err := strconv.ParseFloat(m[5], 64)
		if err != nil {
			continue
		}
		out = append(out, latencySample{volumeID: m[2], latency: latency})
	}
	return out, nil
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

type latencyResponse struct {
	SampleCount    int     `json:"sample_count"`
	AverageLatency float64 `json:"average_latency_ms"`
}

func (s *Server) latency(w http.ResponseWriter, r *http.Request) {
	samples, err := s.recentLatencySamples()
	if err != nil {
		writeError(w, err)
		return
	}
	if len(samples) == 0 {
		writeJSON(w, http.StatusOK, latencyResponse{})
		return
	}
	var total float64
	for _, smp := range samples {
		total += smp.latency
	}
	writeJSON(w, http.StatusOK, latencyResponse{
		SampleCount:    len(samples),
		AverageLatency: round2(total / float64(len(samples))),
	})
}

type topLatencyEntry struct {
	VolumeID       string  `json:"volume_id"`
	AverageLatency float64 `json:"average_latency_ms"`
	SampleCount    int     `json:"sample_count"`
}

func (s *Server) topLatency(w http.ResponseWriter, r *http.Request) {
	samples, err := s.recentLatencySamples()
	if err != nil {
		writeError(w, err)
		return
	}
	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, smp := range samples {
		totals[smp.volumeID] += smp.latency
		counts[smp.volumeID]++
	}
	entries := make([]topLatencyEntry, 0, len(totals))
	for volumeID, total := range totals {
		entries = append(entries, topLatencyEntry{
			VolumeID:       volumeID,
			AverageLatency: round2(total / float64(counts[volumeID])),
			SampleCount:    counts[volumeID],
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].AverageLatency > entries[j].AverageLatency })
	writeJSON(w, http.StatusOK, entries)
}
