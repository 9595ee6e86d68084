package api

import (
	"net/http"

	"github.com/cuemby/arraysim/pkg/manager"
	"github.com/cuemby/arraysim/pkg/types"
)

type sourceVolumeRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Size       int    `json:"size"`
	SystemName string `json:"system_name"`
}

type replicationReceiveRequest struct {
	VolumeID              string                `json:"volume_id"`
	ReplicationThroughput float64               `json:"replication_throughput"`
	Sender                string                `json:"sender"`
	Timestamp             string                `json:"timestamp"`
	ReplicationType       types.ReplicationType `json:"replication_type"`
	ShouldLog             bool                  `json:"should_log"`
	Latency               float64               `json:"latency"`
	SourceVolume          sourceVolumeRequest   `json:"source_volume"`
}

// replicationReceive is the internal endpoint a peer instance's replication
// worker POSTs to every sample interval (§4.5).
func (s *Server) replicationReceive(w http.ResponseWriter, r *http.Request) {
	var req replicationReceiveRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	payload := manager.ReplicationReceive{
		VolumeID:              req.VolumeID,
		ReplicationThroughput: req.ReplicationThroughput,
		Sender:                req.Sender,
		Timestamp:             req.Timestamp,
		ReplicationType:       req.ReplicationType,
		ShouldLog:             req.ShouldLog,
		Latency:               req.Latency,
		SourceVolume: manager.SourceVolume{
			ID:         req.SourceVolume.ID,
			Name:       req.SourceVolume.Name,
			Size:       req.SourceVolume.Size,
			SystemName: req.SourceVolume.SystemName,
		},
	}
	if err := s.mgr.ReceiveReplication(payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

type replicationStopRequest struct {
	VolumeID string `json:"volume_id"`
	Reason   string `json:"reason"`
	Sender   string `json:"sender"`
}

func (s *Server) replicationStop(w http.ResponseWriter, r *http.Request) {
	var req replicationStopRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	s.mgr.ReceiveReplicationStop(req.VolumeID, req.Reason, req.Sender)
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}
