// ABOUTME: HTTP handler listing the access level reference data.
package api

import (
	"log/slog"
	"net/http"
)

// accessLevelResponseBody is the JSON response body for GET /access-levels.
type accessLevelResponseBody struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// listAccessLevelsHandler handles GET /api/v1/access-levels.
// Reads from the store rather than the in-memory table so callers always see
// the persisted reference data.
func (srv *Server) listAccessLevelsHandler(w http.ResponseWriter, r *http.Request) {
	levels, err := srv.store.ListAccessLevels(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list access levels", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := make([]accessLevelResponseBody, 0, len(levels))
	for _, l := range levels {
		out = append(out, accessLevelResponseBody{ID: l.ID.String(), Name: l.Name, Rank: l.Rank})
	}
	writeJSON(w, http.StatusOK, out)
}
