package audit

import "time"

// AuditedEntity is embedded by every business table. The fields are written by the
// audit gorm plugin only; CreatedBy and CreatedByUserType are create-only columns.
type AuditedEntity struct {
	CreatedAt              time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time `gorm:"column:updated_at;autoUpdateTime"`
	CreatedBy              int64     `gorm:"column:created_by;not null;<-:create"`
	LastModifiedBy         int64     `gorm:"column:last_modified_by;not null"`
	CreatedByUserType      string    `gorm:"column:created_by_user_type;size:50;<-:create"`
	LastModifiedByUserType string    `gorm:"column:last_modified_by_user_type;size:50"`
}

type AuditLog struct {
	ID           int64     `gorm:"primaryKey" db:"id"`
	EventID      string    `gorm:"column:event_id;uniqueIndex;size:36;not null" db:"event_id"`
	Action       string    `gorm:"column:action;size:100;not null;index" db:"action"`
	TargetType   string    `gorm:"column:target_type;size:100;not null" db:"target_type"`
	TargetID     string    `gorm:"column:target_id;size:64;not null" db:"target_id"`
	UserID       int64     `gorm:"column:user_id;not null;index" db:"user_id"`
	UserType     string    `gorm:"column:user_type;size:50;not null" db:"user_type"`
	IPAddress    string    `gorm:"column:ip_address;size:64;not null" db:"ip_address"`
	UserAgent    string    `gorm:"column:user_agent;size:512;not null" db:"user_agent"`
	TraceID      string    `gorm:"column:trace_id;size:64;not null" db:"trace_id"`
	Status       string    `gorm:"column:status;size:16;not null" db:"status"`
	ErrorMessage string    `gorm:"column:error_message;not null" db:"error_message"`
	Details      string    `gorm:"column:details;not null" db:"details"`
	OccurredAt   time.Time `gorm:"column:occurred_at;not null;index" db:"occurred_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
