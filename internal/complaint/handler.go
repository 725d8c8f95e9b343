package complaint

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/teryaq/pharmacy-backend/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, req CreateComplaintRequest) (*Complaint, error)
	Get(ctx context.Context, id int64) (*Complaint, error)
	List(ctx context.Context, filter ListFilter) (*ListResponse, error)
	Update(ctx context.Context, id int64, req UpdateComplaintRequest) (*Complaint, error)
	Delete(ctx context.Context, id int64) error
	Statistics(ctx context.Context) (map[Status]int64, error)
	NeedingResponse(ctx context.Context) ([]*Complaint, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// CreateComplaint handles POST /complaints
func (h *Handler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	var req CreateComplaintRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	c, err := h.Service.Create(r.Context(), req)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

// GetComplaint handles GET /complaints/{id}
func (h *Handler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	c, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// ListComplaints handles GET /complaints and GET /complaints/status/{status}
func (h *Handler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Status: Status(r.URL.Query().Get("status"))}
	if status := chi.URLParam(r, "status"); status != "" {
		filter.Status = Status(status)
	}

	var err error
	if filter.Page, err = h.QueryInt(r, "page", 0); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if filter.PageSize, err = h.QueryInt(r, "size", DefaultPageSize); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	resp, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// UpdateComplaint handles PUT /complaints/{id}
func (h *Handler) UpdateComplaint(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	var req UpdateComplaintRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	c, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// DeleteComplaint handles DELETE /complaints/{id}
func (h *Handler) DeleteComplaint(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStatistics handles GET /complaints/statistics
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Statistics(r.Context())
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}

// GetNeedingResponse handles GET /complaints/needing-response
func (h *Handler) GetNeedingResponse(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.Service.NeedingResponse(r.Context())
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, NeedingResponse{Complaints: complaints})
}
