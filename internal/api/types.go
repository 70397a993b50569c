// ABOUTME: HTTP handlers for document type reference data: list, get, create, update.
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

// docTypeBody is the JSON request body for POST /types and PUT /types/{id}.
type docTypeBody struct {
	Title string `json:"title"`
}

// docTypeResponseBody is the JSON response body for type endpoints.
type docTypeResponseBody struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// validDocTypeTitle enforces the 5-25 character title bound.
func validDocTypeTitle(title string) bool {
	return len(title) >= 5 && len(title) <= 25
}

// listDocTypesHandler handles GET /api/v1/types.
func (srv *Server) listDocTypesHandler(w http.ResponseWriter, r *http.Request) {
	types, err := srv.store.ListDocTypes(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list types", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := make([]docTypeResponseBody, 0, len(types))
	for _, t := range types {
		out = append(out, docTypeResponseBody{ID: t.ID.String(), Title: t.Title})
	}
	writeJSON(w, http.StatusOK, out)
}

// getDocTypeHandler handles GET /api/v1/types/{id}.
func (srv *Server) getDocTypeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	t, err := srv.store.GetDocTypeByID(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "get type", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if t == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, docTypeResponseBody{ID: t.ID.String(), Title: t.Title})
}

// createDocTypeHandler handles POST /api/v1/types (admin-only).
func (srv *Server) createDocTypeHandler(w http.ResponseWriter, r *http.Request) {
	var req docTypeBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !validDocTypeTitle(req.Title) {
		http.Error(w, "title must be 5-25 characters", http.StatusBadRequest)
		return
	}

	t, err := srv.store.CreateDocType(r.Context(), req.Title)
	if err != nil {
		if store.IsUniqueViolation(err) {
			http.Error(w, "type already exists", http.StatusConflict)
			return
		}
		slog.ErrorContext(r.Context(), "create type", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, docTypeResponseBody{ID: t.ID.String(), Title: t.Title})
}

// updateDocTypeHandler handles PUT /api/v1/types/{id} (admin-only).
func (srv *Server) updateDocTypeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	var req docTypeBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !validDocTypeTitle(req.Title) {
		http.Error(w, "title must be 5-25 characters", http.StatusBadRequest)
		return
	}

	t, err := srv.store.UpdateDocType(r.Context(), id, req.Title)
	if err != nil {
		if store.IsUniqueViolation(err) {
			http.Error(w, "type already exists", http.StatusConflict)
			return
		}
		slog.ErrorContext(r.Context(), "update type", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if t == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, docTypeResponseBody{ID: t.ID.String(), Title: t.Title})
}
