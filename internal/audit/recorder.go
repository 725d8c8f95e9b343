package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/core/events"
	"github.com/teryaq/pharmacy-backend/pkg/logger"
)

const EventTypeRecorded = "audit.recorded"

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Event is a single audit trail entry. It travels on the event bus as audit.recorded.
type Event struct {
	ID           string                 `json:"id"`
	Action       string                 `json:"action"`
	TargetType   string                 `json:"target_type"`
	TargetID     string                 `json:"target_id,omitempty"`
	UserID       int64                  `json:"user_id"`
	UserType     string                 `json:"user_type"`
	IPAddress    string                 `json:"ip_address,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	TraceID      string                 `json:"trace_id,omitempty"`
	Status       Status                 `json:"status"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

func (e Event) EventType() string {
	return EventTypeRecorded
}

func (e Event) EventID() string {
	return e.ID
}

func (e Event) OccurredAt() time.Time {
	return e.Timestamp
}

func (e Event) Payload() interface{} {
	return e
}

// Entry is what a caller knows about the action being audited.
type Entry struct {
	Action     string
	TargetType string
	TargetID   string
	Details    map[string]interface{}
	Err        error
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Recorder struct {
	resolver  AuditorResolver
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewRecorder(resolver AuditorResolver, publisher Publisher, logger *slog.Logger) *Recorder {
	return &Recorder{
		resolver:  resolver,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Record logs the entry and hands it to the publisher. Publishing problems are logged
// and never fail the audited operation.
func (r *Recorder) Record(ctx context.Context, entry Entry) Event {
	userID, err := r.resolver.CurrentAuditor(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "audit: could not resolve auditor", "action", entry.Action, "error", err)
		userID = 0
	}
	client := internal.ClientInfoFromContext(ctx)

	event := Event{
		ID:         uuid.NewString(),
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		UserID:     userID,
		UserType:   r.resolver.CurrentAuditorType(ctx),
		IPAddress:  client.IPAddress,
		UserAgent:  client.UserAgent,
		TraceID:    client.TraceID,
		Status:     StatusSuccess,
		Details:    redactDetails(entry.Details),
		Timestamp:  r.now().UTC(),
	}
	if entry.Err != nil {
		event.Status = StatusFailure
		event.ErrorMessage = entry.Err.Error()
	}

	level := slog.LevelInfo
	if event.Status == StatusFailure {
		level = slog.LevelWarn
	}
	r.logger.Log(ctx, level, "AUDIT",
		"event_id", event.ID,
		"action", event.Action,
		"target_type", event.TargetType,
		"target_id", event.TargetID,
		"user_id", event.UserID,
		"user_type", event.UserType,
		"ip_address", event.IPAddress,
		"trace_id", event.TraceID,
		"status", event.Status,
		"error", event.ErrorMessage)

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, event); err != nil {
			r.logger.ErrorContext(ctx, "audit: failed to publish event", "event_id", event.ID, "error", err)
		}
	}
	return event
}

func redactDetails(details map[string]interface{}) map[string]interface{} {
	if len(details) == 0 {
		return nil
	}
	if redacted, ok := logger.Redact(details).(map[string]interface{}); ok {
		return redacted
	}
	return nil
}
