// ABOUTME: HTTP handlers for user management: list, get, update, soft delete.
// ABOUTME: Listing and deletion are admin-only; profile updates are self-or-admin.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/docuvault/docuvault/internal/auth"
	"github.com/docuvault/docuvault/internal/store"
)

// userResponseBody is the JSON response body for user endpoints.
type userResponseBody struct {
	ID        string `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	RoleID    string `json:"role_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

func userToResponse(u *store.User) userResponseBody {
	return userResponseBody{
		ID:        u.ID.String(),
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		RoleID:    u.RoleID.String(),
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// updateUserBody is the JSON request body for PUT /users/{id}.
// All fields are optional; password changes are re-hashed.
type updateUserBody struct {
	Firstname *string `json:"firstname,omitempty"`
	Lastname  *string `json:"lastname,omitempty"`
	Password  *string `json:"password,omitempty"`
}

// listUsersHandler handles GET /api/v1/users (admin-only).
func (srv *Server) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := srv.store.ListUsers(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list users", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := make([]userResponseBody, 0, len(users))
	for i := range users {
		out = append(out, userToResponse(&users[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// getUserHandler handles GET /api/v1/users/{id}.
func (srv *Server) getUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	user, err := srv.store.GetUserByID(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "get user", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}

// updateUserHandler handles PUT /api/v1/users/{id}.
// Callers may update their own profile; admins may update anyone's.
func (srv *Server) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(ctxUserID).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	isAdmin, _ := r.Context().Value(ctxIsAdmin).(bool)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if id != callerID && !isAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req updateUserBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	params := store.UpdateUserParams{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		if !srv.acquireArgon2() {
			http.Error(w, "server busy, please retry", http.StatusServiceUnavailable)
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		srv.releaseArgon2()
		if err != nil {
			slog.ErrorContext(r.Context(), "update user: hash password", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		params.PasswordHash = &hash
	}

	user, err := srv.store.UpdateUser(r.Context(), id, params)
	if err != nil {
		slog.ErrorContext(r.Context(), "update user", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}

// deleteUserHandler handles DELETE /api/v1/users/{id} (admin-only, soft delete).
func (srv *Server) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	user, err := srv.store.SoftDeleteUser(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "delete user", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}
