// Package testsupport opens throwaway sqlite databases carrying the production schema.
package testsupport

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	auditDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/audit"
	complaintDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/complaint"
	userDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Models() []interface{} {
	return []interface{}{
		&userDatamodel.Permission{},
		&userDatamodel.Role{},
		&userDatamodel.RolePermission{},
		&userDatamodel.User{},
		&userDatamodel.UserPermission{},
		&complaintDatamodel.Complaint{},
		&auditDatamodel.AuditLog{},
	}
}

// OpenSQLite returns a migrated in-memory database private to the caller.
func OpenSQLite(plugins ...gorm.Plugin) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	for _, p := range plugins {
		if err := db.Use(p); err != nil {
			return nil, err
		}
	}

	if err := db.SetupJoinTable(&userDatamodel.Role{}, "Permissions", &userDatamodel.RolePermission{}); err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, err
	}
	return db, nil
}

// Reader wraps db's pool for sqlx read models.
func Reader(db *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, "sqlite3"), nil
}

func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
