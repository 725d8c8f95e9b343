package user

import (
	"time"

	auditDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/audit"
)

type User struct {
	ID           int64  `gorm:"primaryKey"`
	Email        string `gorm:"column:email;uniqueIndex;size:255;not null"`
	FirstName    string `gorm:"column:first_name;size:100;not null"`
	LastName     string `gorm:"column:last_name;size:100"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	RoleID       int64  `gorm:"column:role_id;not null;index"`
	Role         *Role  `gorm:"foreignKey:RoleID"`
	PharmacyID   *int64 `gorm:"column:pharmacy_id;index"`
	IsActive     bool   `gorm:"column:is_active;not null"`
	auditDatamodel.AuditedEntity
}

func (User) TableName() string {
	return "users"
}

type Role struct {
	ID                int64        `gorm:"primaryKey"`
	Name              string       `gorm:"column:name;uniqueIndex;size:100;not null"`
	Description       string       `gorm:"column:description"`
	IsActive          bool         `gorm:"column:is_active;not null"`
	IsSystem          bool         `gorm:"column:is_system;not null"`
	IsSystemGenerated bool         `gorm:"column:is_system_generated;not null"`
	Permissions       []Permission `gorm:"many2many:role_permissions;"`
	auditDatamodel.AuditedEntity
}

func (Role) TableName() string {
	return "roles"
}

type Permission struct {
	ID                int64  `gorm:"primaryKey"`
	Name              string `gorm:"column:name;uniqueIndex;size:100;not null"`
	Description       string `gorm:"column:description"`
	Resource          string `gorm:"column:resource;size:100"`
	Action            string `gorm:"column:action;size:100"`
	IsActive          bool   `gorm:"column:is_active;not null"`
	IsSystemGenerated bool   `gorm:"column:is_system_generated;not null"`
	auditDatamodel.AuditedEntity
}

func (Permission) TableName() string {
	return "permissions"
}

type RolePermission struct {
	RoleID       int64 `gorm:"column:role_id;primaryKey"`
	PermissionID int64 `gorm:"column:permission_id;primaryKey"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

// UserPermission is an additional grant on top of the user's role.
type UserPermission struct {
	UserID       int64     `gorm:"column:user_id;primaryKey"`
	PermissionID int64     `gorm:"column:permission_id;primaryKey"`
	GrantedBy    *int64    `gorm:"column:granted_by"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (UserPermission) TableName() string {
	return "user_permissions"
}
