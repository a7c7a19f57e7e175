package handlers

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleDefault answers any request the tracking middleware let through.
// The tracker never defines a page of its own; a bare 204 keeps the
// response indistinguishable whether or not an event was logged.
func HandleDefault(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
