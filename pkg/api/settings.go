package api

import (
	"net/http"

	"github.com/cuemby/arraysim/pkg/manager"
	"github.com/cuemby/arraysim/pkg/types"
)

type settingRequest struct {
	SystemID              string                `json:"system_id"`
	Name                  string                `json:"name"`
	Type                  types.SettingType     `json:"type"`
	Value                 int                   `json:"value,omitempty"`
	MaxSnapshots          int                   `json:"max_snapshots,omitempty"`
	ReplicationType       types.ReplicationType `json:"replication_type,omitempty"`
	DelaySec              int                   `json:"delay_sec,omitempty"`
	ReplicationTargetID   string                `json:"replication_target_id,omitempty"`
	ReplicationTargetName string                `json:"replication_target_name,omitempty"`
}

func (req settingRequest) toOpts() manager.CreateSettingOpts {
	return manager.CreateSettingOpts{
		SystemID:        req.SystemID,
		Name:            req.Name,
		Type:            req.Type,
		Value:           req.Value,
		MaxSnapshots:    req.MaxSnapshots,
		ReplicationType: req.ReplicationType,
		DelaySec:        req.DelaySec,
		ReplicationTarget: types.ReplicationTarget{
			ID:   req.ReplicationTargetID,
			Name: req.ReplicationTargetName,
		},
	}
}

func (s *Server) createSetting(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	setting, err := s.mgr.CreateSetting(req.toOpts())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, setting)
}

func (s *Server) getSetting(w http.ResponseWriter, r *http.Request) {
	setting, err := s.mgr.GetSetting(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

func (s *Server) updateSetting(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	setting, err := s.mgr.UpdateSetting(r.PathValue("id"), req.toOpts())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

func (s *Server) deleteSetting(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.DeleteSetting(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
