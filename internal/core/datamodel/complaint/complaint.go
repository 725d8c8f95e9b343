package complaint

import (
	"time"

	auditDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/audit"
)

type Complaint struct {
	ID             int64      `gorm:"primaryKey"`
	Title          string     `gorm:"column:title;size:255;not null"`
	Description    string     `gorm:"column:description;not null"`
	PharmacyID     int64      `gorm:"column:pharmacy_id;not null;index"`
	Status         string     `gorm:"column:status;size:20;not null;index"`
	Response       *string    `gorm:"column:response"`
	RespondedBy    *int64     `gorm:"column:responded_by"`
	RespondedAt    *time.Time `gorm:"column:responded_at"`
	IPAddress      string     `gorm:"column:ip_address;size:64"`
	UserAgent      string     `gorm:"column:user_agent;size:512"`
	UserType       string     `gorm:"column:user_type;size:50"`
	AdditionalData *string    `gorm:"column:additional_data"`
	auditDatamodel.AuditedEntity
}

func (Complaint) TableName() string {
	return "complaints"
}
