package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cuemby/arraysim/pkg/manager"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps an engine error to its HTTP status per the NotFound/
// Conflict/InvalidArgument/CapacityExceeded/Precondition/Internal taxonomy
// and writes it as {"error": "..."}.
func writeError(w http.ResponseWriter, err error) {
	e := manager.AsError(err)
	status := http.StatusInternalServerError
	switch e.Kind {
	case manager.NotFound:
		status = http.StatusNotFound
	case manager.Conflict, manager.InvalidArgument, manager.CapacityExceeded, manager.Precondition:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorBody{Error: e.Message})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// decodeBody decodes a JSON request body into v, tolerating an empty body
// since every handler's request struct has every field optional or
// separately validated by the manager.
func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
