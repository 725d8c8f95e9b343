package user

import (
	"context"
	"net/http"

	"github.com/teryaq/pharmacy-backend/internal/transport"
)

type ServiceAPI interface {
	Me(ctx context.Context) (*ProfileResponse, error)
	GetByID(ctx context.Context, userID int64) (*User, error)
	Create(ctx context.Context, req CreateUserRequest) (*User, error)
	AssignRole(ctx context.Context, userID int64, req AssignRoleRequest) (*User, error)
	GrantPermission(ctx context.Context, userID int64, req GrantPermissionRequest) (*User, error)
	RevokePermission(ctx context.Context, userID, permissionID int64) (*User, error)
	Deactivate(ctx context.Context, userID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Service.Me(r.Context())
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, profile)
}

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	u, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	u, err := h.Service.Create(r.Context(), req)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, u)
}

// AssignRole handles PUT /users/{id}/role
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	var req AssignRoleRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	u, err := h.Service.AssignRole(r.Context(), id, req)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// GrantPermission handles POST /users/{id}/permissions
func (h *Handler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	var req GrantPermissionRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	u, err := h.Service.GrantPermission(r.Context(), id, req)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// RevokePermission handles DELETE /users/{id}/permissions/{permissionID}
func (h *Handler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	permissionID, err := h.PathInt64(r, "permissionID")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	u, err := h.Service.RevokePermission(r.Context(), id, permissionID)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// DeactivateUser handles DELETE /users/{id}
func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	if err := h.Service.Deactivate(r.Context(), id); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
