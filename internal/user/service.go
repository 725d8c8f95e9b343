package user

import (
	"context"
	"log/slog"
	"strings"

	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/access"
	"github.com/teryaq/pharmacy-backend/internal/audit"
	"github.com/teryaq/pharmacy-backend/internal/auth"
	userDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/user"
	"github.com/teryaq/pharmacy-backend/internal/core/operation"
)

const auditTarget = "USER"

type Repository interface {
	GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	Create(ctx context.Context, user *userDatamodel.User) error
	UpdateRole(ctx context.Context, userID, roleID int64) error
	SetActive(ctx context.Context, userID int64, active bool) error
	GetRole(ctx context.Context, roleID int64) (*userDatamodel.Role, error)
	GetPermission(ctx context.Context, permissionID int64) (*userDatamodel.Permission, error)
	GetPermissions(ctx context.Context, userID int64) ([]string, error)
	GrantPermission(ctx context.Context, grant *userDatamodel.UserPermission) error
	RevokePermission(ctx context.Context, userID, permissionID int64) error
}

// CurrentUserProvider resolves the subject behind the request.
type CurrentUserProvider interface {
	CurrentUser(ctx context.Context) (*access.Subject, error)
}

type Service struct {
	repo       Repository
	subjects   CurrentUserProvider
	auditor    audit.AuditorResolver
	decorators operation.Decorators
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, subjects CurrentUserProvider, auditor audit.AuditorResolver, decorators operation.Decorators, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		subjects:   subjects,
		auditor:    auditor,
		decorators: decorators,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) Me(ctx context.Context) (*ProfileResponse, error) {
	subject, err := s.subjects.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.load(ctx, subject.ID)
	if err != nil {
		return nil, err
	}

	additional := append([]string{}, subject.AdditionalPermissions...)
	return &ProfileResponse{
		ID:                    subject.ID,
		Email:                 subject.Email,
		Name:                  u.FullName(),
		Role:                  subject.RoleName,
		PharmacyID:            subject.PharmacyID,
		Permissions:           subject.EffectivePermissions(),
		AdditionalPermissions: additional,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	perms, err := s.repo.GetPermissions(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("Failed to get user permissions", err)
	}
	u.Permissions = perms
	return u, nil
}

func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	action := audit.Action[*User]{
		Name:       "CREATE_USER",
		TargetType: auditTarget,
		TargetOf:   func(u *User) string { return audit.ID(u.ID) },
		Details:    map[string]interface{}{"email": email, "role_id": req.RoleID, "pharmacy_id": req.PharmacyID},
	}
	return operation.Run(ctx, s.decorators, "user.create", action, func(ctx context.Context) (*User, error) {
		existing, err := s.repo.GetByEmail(ctx, email)
		if err != nil {
			return nil, internal.NewInternalError("Failed to look up user", err)
		}
		if existing != nil {
			return nil, internal.ErrUserAlreadyExists
		}
		if err := s.ensureRole(ctx, req.RoleID); err != nil {
			return nil, err
		}

		hash, err := auth.HashPassword(req.Password, s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("Failed to hash password", err)
		}

		row := ToDataModel(&User{
			Email:        email,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			PasswordHash: hash,
			RoleID:       req.RoleID,
			PharmacyID:   req.PharmacyID,
			IsActive:     true,
		})
		if err := s.repo.Create(ctx, row); err != nil {
			return nil, internal.NewInternalError("Failed to create user", err)
		}
		return s.GetByID(ctx, row.ID)
	})
}

func (s *Service) AssignRole(ctx context.Context, userID int64, req AssignRoleRequest) (*User, error) {
	action := audit.Action[*User]{
		Name:       "ASSIGN_ROLE",
		TargetType: auditTarget,
		TargetID:   audit.ID(userID),
		Details:    map[string]interface{}{"role_id": req.RoleID},
	}
	return operation.Run(ctx, s.decorators, "user.assign_role", action, func(ctx context.Context) (*User, error) {
		if _, err := s.load(ctx, userID); err != nil {
			return nil, err
		}
		if err := s.ensureRole(ctx, req.RoleID); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateRole(ctx, userID, req.RoleID); err != nil {
			return nil, internal.NewInternalError("Failed to assign role", err)
		}
		return s.GetByID(ctx, userID)
	})
}

// GrantPermission adds an additional permission on top of the user's role. Granting a
// permission the user already holds is a no-op.
func (s *Service) GrantPermission(ctx context.Context, userID int64, req GrantPermissionRequest) (*User, error) {
	action := audit.Action[*User]{
		Name:       "GRANT_PERMISSION",
		TargetType: auditTarget,
		TargetID:   audit.ID(userID),
		Details:    map[string]interface{}{"permission_id": req.PermissionID},
	}
	return operation.Run(ctx, s.decorators, "user.grant_permission", action, func(ctx context.Context) (*User, error) {
		if _, err := s.load(ctx, userID); err != nil {
			return nil, err
		}
		if err := s.ensurePermission(ctx, req.PermissionID); err != nil {
			return nil, err
		}

		grantedBy, err := s.auditor.CurrentAuditor(ctx)
		if err != nil {
			return nil, err
		}
		grant := &userDatamodel.UserPermission{
			UserID:       userID,
			PermissionID: req.PermissionID,
			GrantedBy:    &grantedBy,
		}
		if err := s.repo.GrantPermission(ctx, grant); err != nil {
			return nil, internal.NewInternalError("Failed to grant permission", err)
		}
		return s.GetByID(ctx, userID)
	})
}

func (s *Service) RevokePermission(ctx context.Context, userID, permissionID int64) (*User, error) {
	action := audit.Action[*User]{
		Name:       "REVOKE_PERMISSION",
		TargetType: auditTarget,
		TargetID:   audit.ID(userID),
		Details:    map[string]interface{}{"permission_id": permissionID},
	}
	return operation.Run(ctx, s.decorators, "user.revoke_permission", action, func(ctx context.Context) (*User, error) {
		if _, err := s.load(ctx, userID); err != nil {
			return nil, err
		}
		if err := s.repo.RevokePermission(ctx, userID, permissionID); err != nil {
			return nil, internal.NewInternalError("Failed to revoke permission", err)
		}
		return s.GetByID(ctx, userID)
	})
}

// Deactivate disables the account. Users are never hard deleted.
func (s *Service) Deactivate(ctx context.Context, userID int64) error {
	action := audit.Action[struct{}]{
		Name:       "DEACTIVATE_USER",
		TargetType: auditTarget,
		TargetID:   audit.ID(userID),
	}
	_, err := operation.Run(ctx, s.decorators, "user.deactivate", action, func(ctx context.Context) (struct{}, error) {
		current, err := s.subjects.CurrentUser(ctx)
		if err != nil {
			return struct{}{}, err
		}
		if current.ID == userID {
			return struct{}{}, internal.NewValidationError("Users cannot deactivate themselves", internal.ErrCodeValidationFailed)
		}
		if _, err := s.load(ctx, userID); err != nil {
			return struct{}{}, err
		}
		if err := s.repo.SetActive(ctx, userID, false); err != nil {
			return struct{}{}, internal.NewInternalError("Failed to deactivate user", err)
		}
		return struct{}{}, nil
	})
	return err
}

func (s *Service) load(ctx context.Context, userID int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to get user by id", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("Failed to get user", err)
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) ensureRole(ctx context.Context, roleID int64) error {
	role, err := s.repo.GetRole(ctx, roleID)
	if err != nil {
		return internal.NewInternalError("Failed to load role", err)
	}
	if role == nil {
		return internal.ErrRoleNotFound
	}
	return nil
}

func (s *Service) ensurePermission(ctx context.Context, permissionID int64) error {
	permission, err := s.repo.GetPermission(ctx, permissionID)
	if err != nil {
		return internal.NewInternalError("Failed to load permission", err)
	}
	if permission == nil {
		return internal.ErrPermissionNotFound
	}
	return nil
}
