package user

type CreateUserRequest struct {
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"max=100"`
	RoleID     int64  `json:"role_id" validate:"required,gt=0"`
	PharmacyID *int64 `json:"pharmacy_id" validate:"omitempty,gt=0"`
}

type AssignRoleRequest struct {
	RoleID int64 `json:"role_id" validate:"required,gt=0"`
}

type GrantPermissionRequest struct {
	PermissionID int64 `json:"permission_id" validate:"required,gt=0"`
}

// ProfileResponse is the current user with the union of role and additional permissions.
type ProfileResponse struct {
	ID                    int64    `json:"id"`
	Email                 string   `json:"email"`
	Name                  string   `json:"name"`
	Role                  string   `json:"role"`
	PharmacyID            *int64   `json:"pharmacy_id,omitempty"`
	Permissions           []string `json:"permissions"`
	AdditionalPermissions []string `json:"additional_permissions"`
}
