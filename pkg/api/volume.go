package api

import "net/http"

type createVolumeRequest struct {
	SystemID string `json:"system_id"`
	Name     string `json:"name"`
	Size     int    `json:"size"`
}

func (s *Server) createVolume(w http.ResponseWriter, r *http.Request) {
	var req createVolumeRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	vol, err := s.mgr.CreateVolume(req.SystemID, req.Name, req.Size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vol)
}

func (s *Server) getVolume(w http.ResponseWriter, r *http.Request) {
	vol, err := s.mgr.GetVolume(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vol)
}

type updateVolumeRequest struct {
	SettingIDs          []string `json:"setting_ids"`
	SnapshotFrequencies []int    `json:"snapshot_frequencies"`
}

func (s *Server) updateVolume(w http.ResponseWriter, r *http.Request) {
	var req updateVolumeRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	vol, err := s.mgr.UpdateVolume(r.PathValue("id"), req.SettingIDs, req.SnapshotFrequencies)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vol)
}

func (s *Server) deleteVolume(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.DeleteVolume(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportedVolumes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.mgr.ListExportedVolumes())
}

type exportVolumeRequest struct {
	VolumeID     string `json:"volume_id"`
	HostID       string `json:"host_id"`
	WorkloadSize int    `json:"workload_size,omitempty"`
}

func (s *Server) exportVolume(w http.ResponseWriter, r *http.Request) {
	var req exportVolumeRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	vol, err := s.mgr.ExportVolume(req.VolumeID, req.HostID, req.WorkloadSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vol)
}

type unexportVolumeRequest struct {
	VolumeID string `json:"volume_id"`
}

func (s *Server) unexportVolume(w http.ResponseWriter, r *http.Request) {
	var req unexportVolumeRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if err := s.mgr.UnexportVolume(req.VolumeID, "unexported via control plane"); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unexported"})
}
