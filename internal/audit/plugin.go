package audit

import (
	"log/slog"

	"gorm.io/gorm"
)

const (
	fieldCreatedBy              = "CreatedBy"
	fieldLastModifiedBy         = "LastModifiedBy"
	fieldCreatedByUserType      = "CreatedByUserType"
	fieldLastModifiedByUserType = "LastModifiedByUserType"
)

// Plugin stamps the AuditedEntity columns of every model that embeds it. It runs
// right before gorm builds the INSERT or UPDATE statement, using the context the
// query was issued with (db.WithContext).
type Plugin struct {
	resolver AuditorResolver
	logger   *slog.Logger
}

func NewPlugin(resolver AuditorResolver, logger *slog.Logger) *Plugin {
	return &Plugin{resolver: resolver, logger: logger}
}

func (p *Plugin) Name() string {
	return "audit:stamp"
}

func (p *Plugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Create().Before("gorm:create").Register("audit:stamp_create", p.stampCreate); err != nil {
		return err
	}
	return db.Callback().Update().Before("gorm:update").Register("audit:stamp_update", p.stampUpdate)
}

func (p *Plugin) stampCreate(db *gorm.DB) {
	if !p.audited(db) {
		return
	}

	auditor, err := p.resolver.CurrentAuditor(db.Statement.Context)
	if err != nil {
		p.reject(db, err)
		return
	}
	userType := p.resolver.CurrentAuditorType(db.Statement.Context)

	db.Statement.SetColumn(fieldCreatedBy, auditor, true)
	db.Statement.SetColumn(fieldLastModifiedBy, auditor, true)
	db.Statement.SetColumn(fieldCreatedByUserType, userType, true)
	db.Statement.SetColumn(fieldLastModifiedByUserType, userType, true)
}

func (p *Plugin) stampUpdate(db *gorm.DB) {
	if !p.audited(db) {
		return
	}

	auditor, err := p.resolver.CurrentAuditor(db.Statement.Context)
	if err != nil {
		p.reject(db, err)
		return
	}

	db.Statement.SetColumn(fieldLastModifiedBy, auditor, true)
	db.Statement.SetColumn(fieldLastModifiedByUserType, p.resolver.CurrentAuditorType(db.Statement.Context), true)
}

func (p *Plugin) audited(db *gorm.DB) bool {
	if db.Error != nil || db.Statement.Schema == nil {
		return false
	}
	return db.Statement.Schema.LookUpField(fieldLastModifiedBy) != nil
}

func (p *Plugin) reject(db *gorm.DB, err error) {
	p.logger.ErrorContext(db.Statement.Context, "audit stamp rejected write",
		"table", db.Statement.Table,
		"error", err)
	_ = db.AddError(err)
}
