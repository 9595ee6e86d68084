// Package api is the Control Plane Adapter (§4.7): a plain net/http.ServeMux
// translating the JSON HTTP surface onto pkg/manager's resource operations.
// Every handler follows the same shape — decode, call the manager, map the
// result or *manager.Error to a JSON response — so the status-code taxonomy
// lives in exactly one place (errors.go).
package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/arraysim/pkg/housekeeper"
	"github.com/cuemby/arraysim/pkg/log"
	"github.com/cuemby/arraysim/pkg/manager"
	"github.com/cuemby/arraysim/pkg/metrics"
	"github.com/cuemby/arraysim/pkg/registry"
	"github.com/cuemby/arraysim/pkg/storage"
)

// Server owns the instance's HTTP surface. It holds no state of its own;
// every handler reads and writes through the manager, store, registry, and
// event log it was constructed with.
type Server struct {
	mgr         *manager.Manager
	store       *storage.Store
	events      *log.EventLog
	registry    *registry.Registry
	housekeeper *housekeeper.Housekeeper
	logger      zerolog.Logger
	port        int
	mux         *http.ServeMux
}

// NewServer builds the route table for one instance.
func NewServer(mgr *manager.Manager, store *storage.Store, events *log.EventLog, reg *registry.Registry, hk *housekeeper.Housekeeper, logger zerolog.Logger, port int) *Server {
	s := &Server{
		mgr:         mgr,
		store:       store,
		events:      events,
		registry:    reg,
		housekeeper: hk,
		logger:      logger.With().Str("component", "api").Logger(),
		port:        port,
		mux:         http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the server's http.Handler, for embedding or tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Start runs the HTTP server on addr until it errors or is shut down.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.Info().Str("addr", addr).Msg("control plane listening")
	return srv.ListenAndServe()
}

func (s *Server) routes() {
	route := func(pattern string, h http.HandlerFunc) {
		s.mux.HandleFunc(pattern, instrument(pattern, h))
	}

	route("POST /system", s.createSystem)
	route("GET /system", s.getSystem)
	route("PUT /system", s.updateSystem)
	route("DELETE /system", s.deleteSystem)
	route("GET /all-systems", s.allSystems)

	route("POST /host", s.createHost)
	route("GET /host", s.listHosts)
	route("GET /host/{id}", s.getHost)
	route("PUT /host/{id}", s.updateHost)
	route("DELETE /host/{id}", s.deleteHost)

	route("POST /volume", s.createVolume)
	route("GET /volume/{id}", s.getVolume)
	route("PUT /volume/{id}", s.updateVolume)
	route("DELETE /volume/{id}", s.deleteVolume)
	route("GET /data/exported-volumes", s.exportedVolumes)

	route("POST /export-volume", s.exportVolume)
	route("POST /unexport-volume", s.unexportVolume)

	route("POST /settings", s.createSetting)
	route("GET /settings/{id}", s.getSetting)
	route("PUT /settings/{id}", s.updateSetting)
	route("DELETE /settings/{id}", s.deleteSetting)

	route("POST /replication-receive", s.replicationReceive)
	route("POST /replication-stop", s.replicationStop)

	route("GET /system/metrics", s.systemMetrics)
	route("GET /data/{collection}", s.dataCollection)
	route("GET /logs/local", s.localLogs)
	route("GET /logs/global", s.globalLogs)

	route("POST /cleanup", s.cleanup)
	route("GET /api/latency", s.latency)
	route("GET /api/top-latency", s.topLatency)

	s.mux.Handle("GET /metrics", metrics.Handler())
	s.mux.HandleFunc("GET /healthz", metrics.HealthHandler())
	s.mux.HandleFunc("GET /ready", metrics.ReadyHandler())
	s.mux.HandleFunc("GET /live", metrics.LivenessHandler())
}
