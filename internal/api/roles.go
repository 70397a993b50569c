// ABOUTME: HTTP handlers for role reference data: list, get, create, update.
// ABOUTME: Mutations are admin-only (enforced by RequireAdmin middleware).
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/docuvault/docuvault/internal/store"
)

// roleBody is the JSON request body for POST /roles and PUT /roles/{id}.
type roleBody struct {
	Title string `json:"title"`
}

// roleResponseBody is the JSON response body for role endpoints.
type roleResponseBody struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// writeJSON writes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writeJSON: encode failed", "error", err)
	}
}

// validRoleTitle enforces the 4-10 character title bound.
func validRoleTitle(title string) bool {
	return len(title) >= 4 && len(title) <= 10
}

// listRolesHandler handles GET /api/v1/roles.
func (srv *Server) listRolesHandler(w http.ResponseWriter, r *http.Request) {
	roles, err := srv.store.ListRoles(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list roles", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := make([]roleResponseBody, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleResponseBody{ID: role.ID.String(), Title: role.Title})
	}
	writeJSON(w, http.StatusOK, out)
}

// getRoleHandler handles GET /api/v1/roles/{id}.
func (srv *Server) getRoleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	role, err := srv.store.GetRoleByID(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "get role", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if role == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, roleResponseBody{ID: role.ID.String(), Title: role.Title})
}

// createRoleHandler handles POST /api/v1/roles (admin-only).
func (srv *Server) createRoleHandler(w http.ResponseWriter, r *http.Request) {
	var req roleBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !validRoleTitle(req.Title) {
		http.Error(w, "title must be 4-10 characters", http.StatusBadRequest)
		return
	}

	role, err := srv.store.CreateRole(r.Context(), req.Title)
	if err != nil {
		if store.IsUniqueViolation(err) {
			http.Error(w, "role already exists", http.StatusConflict)
			return
		}
		slog.ErrorContext(r.Context(), "create role", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, roleResponseBody{ID: role.ID.String(), Title: role.Title})
}

// updateRoleHandler handles PUT /api/v1/roles/{id} (admin-only).
// Note: renaming a role does not retroactively change document visibility;
// documents keep the owner_role_title snapshot taken at creation time.
func (srv *Server) updateRoleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	var req roleBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !validRoleTitle(req.Title) {
		http.Error(w, "title must be 4-10 characters", http.StatusBadRequest)
		return
	}

	role, err := srv.store.UpdateRole(r.Context(), id, req.Title)
	if err != nil {
		if store.IsUniqueViolation(err) {
			http.Error(w, "role already exists", http.StatusConflict)
			return
		}
		slog.ErrorContext(r.Context(), "update role", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if role == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, roleResponseBody{ID: role.ID.String(), Title: role.Title})
}
