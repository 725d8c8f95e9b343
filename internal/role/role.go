package role

import (
	"time"

	userDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/user"
)

type Permission struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	Resource          string    `json:"resource,omitempty"`
	Action            string    `json:"action,omitempty"`
	IsActive          bool      `json:"is_active"`
	IsSystemGenerated bool      `json:"is_system_generated"`
	CreatedBy         int64     `json:"created_by"`
	LastModifiedBy    int64     `json:"last_modified_by"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Role struct {
	ID                int64        `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description,omitempty"`
	IsActive          bool         `json:"is_active"`
	IsSystem          bool         `json:"is_system"`
	IsSystemGenerated bool         `json:"is_system_generated"`
	Permissions       []Permission `json:"permissions"`
	CreatedBy         int64        `json:"created_by"`
	LastModifiedBy    int64        `json:"last_modified_by"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func (r *Role) IsImmutable() bool {
	return r.IsSystem || r.IsSystemGenerated
}

func (r *Role) PermissionNames() []string {
	names := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		names = append(names, p.Name)
	}
	return names
}

func NewRole(name, description string) *Role {
	return &Role{
		Name:        name,
		Description: description,
		IsActive:    true,
	}
}

func ToDataModel(r *Role) *userDatamodel.Role {
	return &userDatamodel.Role{
		ID:                r.ID,
		Name:              r.Name,
		Description:       r.Description,
		IsActive:          r.IsActive,
		IsSystem:          r.IsSystem,
		IsSystemGenerated: r.IsSystemGenerated,
	}
}

func FromDataModel(r *userDatamodel.Role) *Role {
	role := &Role{
		ID:                r.ID,
		Name:              r.Name,
		Description:       r.Description,
		IsActive:          r.IsActive,
		IsSystem:          r.IsSystem,
		IsSystemGenerated: r.IsSystemGenerated,
		Permissions:       make([]Permission, 0, len(r.Permissions)),
		CreatedBy:         r.CreatedBy,
		LastModifiedBy:    r.LastModifiedBy,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	for i := range r.Permissions {
		role.Permissions = append(role.Permissions, *PermissionFromDataModel(&r.Permissions[i]))
	}
	return role
}

func PermissionFromDataModel(p *userDatamodel.Permission) *Permission {
	return &Permission{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		Resource:          p.Resource,
		Action:            p.Action,
		IsActive:          p.IsActive,
		IsSystemGenerated: p.IsSystemGenerated,
		CreatedBy:         p.CreatedBy,
		LastModifiedBy:    p.LastModifiedBy,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
