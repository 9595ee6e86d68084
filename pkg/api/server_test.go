package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/arraysim/pkg/housekeeper"
	"github.com/cuemby/arraysim/pkg/log"
	"github.com/cuemby/arraysim/pkg/manager"
	"github.com/cuemby/arraysim/pkg/registry"
	"github.com/cuemby/arraysim/pkg/storage"
	"github.com/cuemby/arraysim/pkg/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.New(dir)
	require.NoError(t, err)
	reg, err := registry.New(filepath.Join(dir, "global_systems.json"))
	require.NoError(t, err)
	events, err := log.NewEventLog(5000, dir)
	require.NoError(t, err)
	logger := zerolog.Nop()
	mgr := manager.New(store, reg, events, logger, 5000)
	hk := housekeeper.New(store, mgr, events, logger)
	return NewServer(mgr, store, events, reg, hk, logger, 5000)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = httptest.NewRequest(method, path, bytes.NewReader(data))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestCreateSystem(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Handler(), "POST", "/system", map[string]any{"max_throughput": 200.0, "max_capacity": 1024.0})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp createSystemResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.SystemID)
	assert.Equal(t, 5000, resp.Port)
}

func TestCreateSystemTwiceConflicts(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s.Handler(), "POST", "/system", map[string]any{})
	w := doJSON(t, s.Handler(), "POST", "/system", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body errorBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.NotEmpty(t, body.Error)
}

func TestGetSystemNotFound(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Handler(), "GET", "/system", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVolumeLifecycle(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Handler(), "POST", "/system", map[string]any{"max_capacity": 1024.0})
	require.Equal(t, http.StatusCreated, w.Code)
	var sysResp createSystemResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&sysResp))

	w = doJSON(t, s.Handler(), "POST", "/host", map[string]any{
		"system_id": sysResp.SystemID, "name": "h1", "application_type": "db", "protocol": "iscsi",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var host types.Host
	require.NoError(t, json.NewDecoder(w.Body).Decode(&host))

	w = doJSON(t, s.Handler(), "POST", "/volume", map[string]any{"system_id": sysResp.SystemID, "name": "v1", "size": 10})
	require.Equal(t, http.StatusCreated, w.Code)
	var vol types.Volume
	require.NoError(t, json.NewDecoder(w.Body).Decode(&vol))
	assert.Equal(t, 10, vol.Size)

	w = doJSON(t, s.Handler(), "POST", "/export-volume", map[string]any{"volume_id": vol.ID, "host_id": host.ID, "workload_size": 8})
	require.Equal(t, http.StatusOK, w.Code)
	var exported types.Volume
	require.NoError(t, json.NewDecoder(w.Body).Decode(&exported))
	assert.True(t, exported.IsExported)

	w = doJSON(t, s.Handler(), "GET", "/data/volume", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var volumes []types.Volume
	require.NoError(t, json.NewDecoder(w.Body).Decode(&volumes))
	assert.Len(t, volumes, 1)

	w = doJSON(t, s.Handler(), "POST", "/unexport-volume", map[string]any{"volume_id": vol.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s.Handler(), "DELETE", "/volume/"+vol.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCreateVolumeExceedsCapacity(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Handler(), "POST", "/system", map[string]any{"max_capacity": 10.0})
	require.Equal(t, http.StatusCreated, w.Code)
	var sysResp createSystemResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&sysResp))

	w = doJSON(t, s.Handler(), "POST", "/volume", map[string]any{"system_id": sysResp.SystemID, "name": "v1", "size": 6})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s.Handler(), "POST", "/volume", map[string]any{"system_id": sysResp.SystemID, "name": "v2", "size": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body errorBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.NotEmpty(t, body.Error)
}

func TestDataCollectionUnknown(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Handler(), "GET", "/data/bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCleanupTriggersSweep(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Handler(), "POST", "/cleanup", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAllSystemsEmpty(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Handler(), "GET", "/all-systems", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []types.RegistryEntry
	require.NoError(t, json.NewDecoder(w.Body).Decode(&entries))
	assert.Empty(t, entries)
}

func TestReplicationReceiveMaterializesMirror(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Handler(), "POST", "/system", map[string]any{"max_capacity": 1024.0})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s.Handler(), "POST", "/replication-receive", map[string]any{
		"volume_id":              "src-vol",
		"replication_throughput": 12.5,
		"sender":                 "5000",
		"replication_type":       "asynchronous",
		"should_log":             true,
		"latency":                2.5,
		"source_volume": map[string]any{
			"id": "src-vol", "name": "v1", "size": 10, "system_name": "5000",
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s.Handler(), "GET", "/data/volume", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var volumes []types.Volume
	require.NoError(t, json.NewDecoder(w.Body).Decode(&volumes))
	require.Len(t, volumes, 1)
	assert.Equal(t, "v1_asynchronous5000", volumes[0].Name)
}

func TestHealthzAndMetricsEndpoints(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Handler(), "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s.Handler(), "GET", "/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
