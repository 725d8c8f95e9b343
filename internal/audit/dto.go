package audit

import "time"

type EventResponse struct {
	ID           string                 `json:"id"`
	Action       string                 `json:"action"`
	TargetType   string                 `json:"target_type"`
	TargetID     string                 `json:"target_id,omitempty"`
	UserID       int64                  `json:"user_id"`
	UserType     string                 `json:"user_type"`
	IPAddress    string                 `json:"ip_address,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	TraceID      string                 `json:"trace_id,omitempty"`
	Status       string                 `json:"status"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
	OccurredAt   time.Time              `json:"occurred_at"`
}

type TimelineResponse struct {
	Events   []EventResponse `json:"events"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}
