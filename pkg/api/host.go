package api

import "net/http"

type createHostRequest struct {
	SystemID        string `json:"system_id"`
	Name            string `json:"name"`
	ApplicationType string `json:"application_type"`
	Protocol        string `json:"protocol"`
}

func (s *Server) createHost(w http.ResponseWriter, r *http.Request) {
	var req createHostRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	host, err := s.mgr.CreateHost(req.SystemID, req.Name, req.ApplicationType, req.Protocol)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, host)
}

func (s *Server) listHosts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.mgr.ListHosts())
}

func (s *Server) getHost(w http.ResponseWriter, r *http.Request) {
	host, err := s.mgr.GetHost(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, host)
}

type updateHostRequest struct {
	Name            *string `json:"name,omitempty"`
	ApplicationType *string `json:"application_type,omitempty"`
	Protocol        *string `json:"protocol,omitempty"`
}

func (s *Server) updateHost(w http.ResponseWriter, r *http.Request) {
	var req updateHostRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	host, err := s.mgr.UpdateHost(r.PathValue("id"), req.Name, req.ApplicationType, req.Protocol)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, host)
}

func (s *Server) deleteHost(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.DeleteHost(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
