package postgres

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/teryaq/pharmacy-backend/internal/audit"
	auditDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

const timelineColumns = `id, event_id, action, target_type, target_id, user_id, user_type,
	ip_address, user_agent, trace_id, status, error_message, details, occurred_at`

// AuditRepository writes through gorm and reads the timeline through sqlx.
type AuditRepository struct {
	db     *gorm.DB
	reader *sqlx.DB
}

func NewAuditRepository(db *gorm.DB, reader *sqlx.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db, reader: reader}
}

func (r *AuditRepository) Insert(ctx context.Context, log *auditDatamodel.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *AuditRepository) Timeline(ctx context.Context, filter audit.Filter) ([]*auditDatamodel.AuditLog, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.TargetType != "" {
		conditions = append(conditions, "target_type = ?")
		args = append(args, filter.TargetType)
	}
	if filter.TargetID != "" {
		conditions = append(conditions, "target_id = ?")
		args = append(args, filter.TargetID)
	}
	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.From != nil {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		conditions = append(conditions, "occurred_at <= ?")
		args = append(args, filter.To.UTC())
	}

	query := "SELECT " + timelineColumns + " FROM audit_logs"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY occurred_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, filter.Offset())

	var rows []*auditDatamodel.AuditLog
	if err := r.reader.SelectContext(ctx, &rows, r.reader.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}
