package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	auditDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/audit"
	"github.com/teryaq/pharmacy-backend/internal/core/events"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

type RepositoryAPI interface {
	Insert(ctx context.Context, log *auditDatamodel.AuditLog) error
	Timeline(ctx context.Context, filter Filter) ([]*auditDatamodel.AuditLog, error)
}

// Filter narrows the timeline. Zero values mean "any".
type Filter struct {
	UserID     *int64
	TargetType string
	TargetID   string
	Action     string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

func (f Filter) Normalize() Filter {
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.Page < 0 {
		f.Page = 0
	}
	return f
}

func (f Filter) Offset() int {
	return f.Page * f.PageSize
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Subscribe persists every recorded audit event published on bus.
func (s *Service) Subscribe(bus *events.EventBus) {
	bus.Subscribe(EventTypeRecorded, s.Handle)
}

func (s *Service) Handle(ctx context.Context, event events.Event) error {
	recorded, ok := event.(Event)
	if !ok {
		return fmt.Errorf("audit: unexpected event payload %T", event)
	}

	row, err := ToDataModel(recorded)
	if err != nil {
		return err
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist audit event", "event_id", recorded.ID, "error", err)
		return err
	}
	return nil
}

func (s *Service) Timeline(ctx context.Context, filter Filter) (*TimelineResponse, error) {
	filter = filter.Normalize()

	rows, err := s.repo.Timeline(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to read audit timeline", "error", err)
		return nil, err
	}

	resp := &TimelineResponse{
		Events:   make([]EventResponse, 0, len(rows)),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	for _, row := range rows {
		resp.Events = append(resp.Events, FromDataModel(row))
	}
	return resp, nil
}

func ToDataModel(e Event) (*auditDatamodel.AuditLog, error) {
	details := ""
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return nil, fmt.Errorf("audit: encode details: %w", err)
		}
		details = string(raw)
	}

	return &auditDatamodel.AuditLog{
		EventID:      e.ID,
		Action:       e.Action,
		TargetType:   e.TargetType,
		TargetID:     e.TargetID,
		UserID:       e.UserID,
		UserType:     e.UserType,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
		TraceID:      e.TraceID,
		Status:       string(e.Status),
		ErrorMessage: e.ErrorMessage,
		Details:      details,
		OccurredAt:   e.Timestamp,
	}, nil
}

func FromDataModel(row *auditDatamodel.AuditLog) EventResponse {
	resp := EventResponse{
		ID:           row.EventID,
		Action:       row.Action,
		TargetType:   row.TargetType,
		TargetID:     row.TargetID,
		UserID:       row.UserID,
		UserType:     row.UserType,
		IPAddress:    row.IPAddress,
		UserAgent:    row.UserAgent,
		TraceID:      row.TraceID,
		Status:       row.Status,
		ErrorMessage: row.ErrorMessage,
		OccurredAt:   row.OccurredAt,
	}
	if row.Details != "" {
		_ = json.Unmarshal([]byte(row.Details), &resp.Details)
	}
	return resp
}
