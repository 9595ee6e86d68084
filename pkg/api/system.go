package api

import (
	"net/http"

	"github.com/cuemby/arraysim/pkg/manager"
)

type createSystemRequest struct {
	MaxThroughput *float64 `json:"max_throughput,omitempty"`
	MaxCapacity   *float64 `json:"max_capacity,omitempty"`
}

type createSystemResponse struct {
	SystemID string `json:"system_id"`
	Port     int    `json:"port"`
}

func (s *Server) createSystem(w http.ResponseWriter, r *http.Request) {
	var req createSystemRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	sys, err := s.mgr.CreateSystem(manager.CreateSystemOpts{
		MaxThroughput: req.MaxThroughput,
		MaxCapacity:   req.MaxCapacity,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createSystemResponse{SystemID: sys.ID, Port: s.port})
}

func (s *Server) getSystem(w http.ResponseWriter, r *http.Request) {
	sys, err := s.mgr.GetSystem()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sys)
}

type updateSystemRequest struct {
	Name          *string  `json:"name,omitempty"`
	MaxThroughput *float64 `json:"max_throughput,omitempty"`
	MaxCapacity   *float64 `json:"max_capacity,omitempty"`
}

// updateSystem rejects any attempt to touch the immutable max_* fields
// (§7 InvalidArgument); the name is fixed at creation so there is nothing
// else left for this route to change.
func (s *Server) updateSystem(w http.ResponseWriter, r *http.Request) {
	var req updateSystemRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	mutatesMax := req.MaxThroughput != nil || req.MaxCapacity != nil
	sys, err := s.mgr.UpdateSystem(mutatesMax)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sys)
}

func (s *Server) deleteSystem(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.DeleteSystem(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) allSystems(w http.ResponseWriter, r *http.Request) {
	entries, err := s.registry.All()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
