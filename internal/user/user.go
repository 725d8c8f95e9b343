package user

import (
	"time"

	userDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/user"
)

// User represents the internal user model
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name,omitempty"`
	PasswordHash   string    `json:"-"` // Never expose password hash
	RoleID         int64     `json:"role_id"`
	RoleName       string    `json:"role,omitempty"`
	PharmacyID     *int64    `json:"pharmacy_id,omitempty"`
	IsActive       bool      `json:"is_active"`
	Permissions    []string  `json:"permissions,omitempty"`
	CreatedBy      int64     `json:"created_by"`
	LastModifiedBy int64     `json:"last_modified_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		RoleID:       u.RoleID,
		PharmacyID:   u.PharmacyID,
		IsActive:     u.IsActive,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	domainUser := &User{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		PasswordHash:   u.PasswordHash,
		RoleID:         u.RoleID,
		PharmacyID:     u.PharmacyID,
		IsActive:       u.IsActive,
		Permissions:    []string{},
		CreatedBy:      u.CreatedBy,
		LastModifiedBy: u.LastModifiedBy,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
	if u.Role != nil {
		domainUser.RoleName = u.Role.Name
	}
	return domainUser
}

func FromDataModelWithPermissions(u *userDatamodel.User, permissions []string) *User {
	domainUser := FromDataModel(u)
	domainUser.Permissions = permissions
	return domainUser
}
