package complaint

import (
	"time"

	complaintDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/complaint"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
	StatusRejected   Status = "REJECTED"
)

var AllStatuses = []Status{StatusPending, StatusInProgress, StatusResolved, StatusClosed, StatusRejected}

func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// NeedsResponse reports whether management still owes an answer.
func (s Status) NeedsResponse() bool {
	return s == StatusPending || s == StatusInProgress
}

// MarksResponded reports whether moving to s records who responded and when.
func (s Status) MarksResponded() bool {
	return s == StatusResolved || s == StatusClosed
}

type Complaint struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	PharmacyID     int64      `json:"pharmacy_id"`
	Status         Status     `json:"status"`
	Response       *string    `json:"response,omitempty"`
	RespondedBy    *int64     `json:"responded_by,omitempty"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
	AdditionalData *string    `json:"additional_data,omitempty"`
	IPAddress      string     `json:"-"`
	UserAgent      string     `json:"-"`
	UserType       string     `json:"user_type,omitempty"`
	CreatedBy      int64      `json:"created_by"`
	UpdatedBy      int64      `json:"updated_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func ToDataModel(c *Complaint) *complaintDatamodel.Complaint {
	return &complaintDatamodel.Complaint{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		PharmacyID:     c.PharmacyID,
		Status:         string(c.Status),
		Response:       c.Response,
		RespondedBy:    c.RespondedBy,
		RespondedAt:    c.RespondedAt,
		IPAddress:      c.IPAddress,
		UserAgent:      c.UserAgent,
		UserType:       c.UserType,
		AdditionalData: c.AdditionalData,
	}
}

func FromDataModel(c *complaintDatamodel.Complaint) *Complaint {
	return &Complaint{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		PharmacyID:     c.PharmacyID,
		Status:         Status(c.Status),
		Response:       c.Response,
		RespondedBy:    c.RespondedBy,
		RespondedAt:    c.RespondedAt,
		AdditionalData: c.AdditionalData,
		IPAddress:      c.IPAddress,
		UserAgent:      c.UserAgent,
		UserType:       c.UserType,
		CreatedBy:      c.CreatedBy,
		UpdatedBy:      c.LastModifiedBy,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
