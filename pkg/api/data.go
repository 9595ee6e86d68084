package api

import (
	"fmt"
	"net/http"

	"github.com/cuemby/arraysim/pkg/storage"
	"github.com/cuemby/arraysim/pkg/types"
)

// fullLogTailLines stands in for "the whole file" against EventLog's tail-N
// accessors — both instance logs are appended to at a sample-interval
// cadence, so a bound this high is a full read in practice.
const fullLogTailLines = 1_000_000

func (s *Server) systemMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.mgr.GetMetrics())
}

// dataCollection is the generic read-through accessor for the named
// collections (§6 GET /data/<collection>). The concrete record type has to be
// known at the call site since LoadList/LoadSingleton are generic, so this
// is a switch over a fixed set: every list collection plus the two metrics
// singletons. The system singleton is not served here (GET /system reads it).
func (s *Server) dataCollection(w http.ResponseWriter, r *http.Request) {
	switch r.PathValue("collection") {
	case "volume":
		writeJSON(w, http.StatusOK, storage.LoadList[types.Volume](s.store, "volume"))
	case "host":
		writeJSON(w, http.StatusOK, storage.LoadList[types.Host](s.store, "host"))
	case "settings":
		writeJSON(w, http.StatusOK, storage.LoadList[types.Setting](s.store, "settings"))
	case "snapshots":
		writeJSON(w, http.StatusOK, storage.LoadList[types.Snapshot](s.store, "snapshots"))
	case "io_metrics":
		writeJSON(w, http.StatusOK, storage.LoadList[types.IOSample](s.store, "io_metrics"))
	case "system_metrics":
		writeJSON(w, http.StatusOK, storage.LoadSingleton[types.SystemMetrics](s.store, "system_metrics"))
	case "replication_metrics":
		writeJSON(w, http.StatusOK, storage.LoadSingleton[types.ReplicationMetrics](s.store, "replication_metrics"))
	default:
		writeBadRequest(w, fmt.Sprintf("unknown collection %q", r.PathValue("collection")))
	}
}

func (s *Server) localLogs(w http.ResponseWriter, r *http.Request) {
	lines, err := s.events.LocalTail(fullLogTailLines)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) globalLogs(w http.ResponseWriter, r *http.Request) {
	lines, err := s.events.GlobalTail(fullLogTailLines)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) cleanup(w http.ResponseWriter, r *http.Request) {
	s.housekeeper.RunOnce()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleanup triggered"})
}
