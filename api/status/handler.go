package status

import (
	"encoding/json"
	"net/http"
)

// Path is where NewStatusHandler is mounted.
const Path = "/api/status"

// NewStatusHandler returns an HTTP handler exposing monitor state via GET /api/status.
// The optional monitor query parameter narrows the result.
func NewStatusHandler(store *Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		entries := store.List(r.URL.Query().Get("monitor"))
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
