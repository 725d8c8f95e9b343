package audit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/transport"
)

type ServiceAPI interface {
	Timeline(ctx context.Context, filter Filter) (*TimelineResponse, error)
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

// GetTimeline handles GET /audit
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	resp, err := h.Service.Timeline(r.Context(), filter)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	filter := Filter{
		TargetType: q.Get("target_type"),
		TargetID:   q.Get("target_id"),
		Action:     q.Get("action"),
	}

	if raw := q.Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Filter{}, internal.NewValidationError("Invalid user_id", internal.ErrCodeValidationFailed)
		}
		filter.UserID = &id
	}

	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Filter{}, internal.NewValidationError("Invalid "+name+", expected RFC3339", internal.ErrCodeValidationFailed)
		}
		*dst = &t
	}

	var err error
	if filter.Page, err = h.QueryInt(r, "page", 0); err != nil {
		return Filter{}, err
	}
	if filter.PageSize, err = h.QueryInt(r, "size", DefaultPageSize); err != nil {
		return Filter{}, err
	}
	return filter, nil
}
