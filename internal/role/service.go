package role

import (
	"context"
	"log/slog"

	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/audit"
	userDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/user"
	"github.com/teryaq/pharmacy-backend/internal/core/operation"
)

const auditTarget = "ROLE"

type RepositoryAPI interface {
	ListRoles(ctx context.Context) ([]*userDatamodel.Role, error)
	GetRoleByID(ctx context.Context, id int64) (*userDatamodel.Role, error)
	GetRoleByName(ctx context.Context, name string) (*userDatamodel.Role, error)
	CreateRole(ctx context.Context, role *userDatamodel.Role, permissionIDs []int64) error
	UpdateRole(ctx context.Context, role *userDatamodel.Role) error
	DeleteRole(ctx context.Context, id int64) error
	ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
	CountUsersWithRole(ctx context.Context, roleID int64) (int64, error)

	ListPermissions(ctx context.Context) ([]*userDatamodel.Permission, error)
	GetPermissionsByIDs(ctx context.Context, ids []int64) ([]*userDatamodel.Permission, error)
	GetPermissionByName(ctx context.Context, name string) (*userDatamodel.Permission, error)
	CreatePermission(ctx context.Context, permission *userDatamodel.Permission) error
}

type Service struct {
	repo       RepositoryAPI
	decorators operation.Decorators
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, decorators operation.Decorators, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		decorators: decorators,
		logger:     logger,
	}
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	rows, err := s.repo.ListRoles(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list roles", "error", err)
		return nil, internal.NewInternalError("Failed to list roles", err)
	}

	roles := make([]*Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, FromDataModel(row))
	}
	return roles, nil
}

func (s *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	row, err := s.loadRole(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) GetRolePermissions(ctx context.Context, id int64) ([]Permission, error) {
	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	return role.Permissions, nil
}

func (s *Service) CreateRole(ctx context.Context, req CreateRoleRequest) (*Role, error) {
	action := audit.Action[*Role]{
		Name:       "CREATE_ROLE",
		TargetType: auditTarget,
		TargetOf:   func(r *Role) string { return audit.ID(r.ID) },
		Details:    map[string]interface{}{"name": req.Name, "permission_ids": req.PermissionIDs},
	}
	return operation.Run(ctx, s.decorators, "role.create", action, func(ctx context.Context) (*Role, error) {
		if err := s.ensureRoleNameFree(ctx, req.Name, 0); err != nil {
			return nil, err
		}
		if err := s.ensurePermissionsExist(ctx, req.PermissionIDs); err != nil {
			return nil, err
		}

		row := ToDataModel(NewRole(req.Name, req.Description))
		if err := s.repo.CreateRole(ctx, row, dedupe(req.PermissionIDs)); err != nil {
			return nil, internal.NewInternalError("Failed to create role", err)
		}
		return s.GetRole(ctx, row.ID)
	})
}

func (s *Service) UpdateRole(ctx context.Context, id int64, req UpdateRoleRequest) (*Role, error) {
	action := audit.Action[*Role]{
		Name:       "UPDATE_ROLE",
		TargetType: auditTarget,
		TargetID:   audit.ID(id),
		Details:    map[string]interface{}{"name": req.Name},
	}
	return operation.Run(ctx, s.decorators, "role.update", action, func(ctx context.Context) (*Role, error) {
		row, err := s.loadMutableRole(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.ensureRoleNameFree(ctx, req.Name, id); err != nil {
			return nil, err
		}

		row.Name = req.Name
		row.Description = req.Description
		if req.IsActive != nil {
			row.IsActive = *req.IsActive
		}
		if err := s.repo.UpdateRole(ctx, row); err != nil {
			return nil, internal.NewInternalError("Failed to update role", err)
		}
		return s.GetRole(ctx, id)
	})
}

func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	action := audit.Action[struct{}]{
		Name:       "DELETE_ROLE",
		TargetType: auditTarget,
		TargetID:   audit.ID(id),
	}
	_, err := operation.Run(ctx, s.decorators, "role.delete", action, func(ctx context.Context) (struct{}, error) {
		if _, err := s.loadMutableRole(ctx, id); err != nil {
			return struct{}{}, err
		}

		inUse, err := s.repo.CountUsersWithRole(ctx, id)
		if err != nil {
			return struct{}{}, internal.NewInternalError("Failed to check role usage", err)
		}
		if inUse > 0 {
			return struct{}{}, internal.ErrRoleInUse.WithDetails(map[string]int64{"users": inUse})
		}

		if err := s.repo.DeleteRole(ctx, id); err != nil {
			return struct{}{}, internal.NewInternalError("Failed to delete role", err)
		}
		return struct{}{}, nil
	})
	return err
}

// ReplacePermissions swaps the role's whole permission set for permissionIDs.
func (s *Service) ReplacePermissions(ctx context.Context, id int64, req ReplacePermissionsRequest) (*Role, error) {
	action := audit.Action[*Role]{
		Name:       "UPDATE_ROLE_PERMISSIONS",
		TargetType: auditTarget,
		TargetID:   audit.ID(id),
		Details:    map[string]interface{}{"permission_ids": req.PermissionIDs},
	}
	return operation.Run(ctx, s.decorators, "role.replace_permissions", action, func(ctx context.Context) (*Role, error) {
		if _, err := s.loadMutableRole(ctx, id); err != nil {
			return nil, err
		}
		if err := s.ensurePermissionsExist(ctx, req.PermissionIDs); err != nil {
			return nil, err
		}

		if err := s.repo.ReplaceRolePermissions(ctx, id, dedupe(req.PermissionIDs)); err != nil {
			return nil, internal.NewInternalError("Failed to update role permissions", err)
		}
		return s.GetRole(ctx, id)
	})
}

func (s *Service) ListPermissions(ctx context.Context) ([]*Permission, error) {
	rows, err := s.repo.ListPermissions(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list permissions", "error", err)
		return nil, internal.NewInternalError("Failed to list permissions", err)
	}

	permissions := make([]*Permission, 0, len(rows))
	for _, row := range rows {
		permissions = append(permissions, PermissionFromDataModel(row))
	}
	return permissions, nil
}

func (s *Service) CreatePermission(ctx context.Context, req CreatePermissionRequest) (*Permission, error) {
	action := audit.Action[*Permission]{
		Name:       "CREATE_PERMISSION",
		TargetType: "PERMISSION",
		TargetOf:   func(p *Permission) string { return audit.ID(p.ID) },
		Details:    map[string]interface{}{"name": req.Name},
	}
	return operation.Run(ctx, s.decorators, "permission.create", action, func(ctx context.Context) (*Permission, error) {
		existing, err := s.repo.GetPermissionByName(ctx, req.Name)
		if err != nil {
			return nil, internal.NewInternalError("Failed to look up permission", err)
		}
		if existing != nil {
			return nil, internal.ErrPermissionExists
		}

		row := &userDatamodel.Permission{
			Name:        req.Name,
			Description: req.Description,
			Resource:    req.Resource,
			Action:      req.Action,
			IsActive:    true,
		}
		if err := s.repo.CreatePermission(ctx, row); err != nil {
			return nil, internal.NewInternalError("Failed to create permission", err)
		}
		return PermissionFromDataModel(row), nil
	})
}

func (s *Service) loadRole(ctx context.Context, id int64) (*userDatamodel.Role, error) {
	row, err := s.repo.GetRoleByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("Failed to load role", err)
	}
	if row == nil {
		return nil, internal.ErrRoleNotFound
	}
	return row, nil
}

func (s *Service) loadMutableRole(ctx context.Context, id int64) (*userDatamodel.Role, error) {
	row, err := s.loadRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if FromDataModel(row).IsImmutable() {
		return nil, internal.ErrSystemRoleImmutable
	}
	return row, nil
}

func (s *Service) ensureRoleNameFree(ctx context.Context, name string, selfID int64) error {
	existing, err := s.repo.GetRoleByName(ctx, name)
	if err != nil {
		return internal.NewInternalError("Failed to look up role", err)
	}
	if existing != nil && existing.ID != selfID {
		return internal.ErrRoleAlreadyExists
	}
	return nil
}

func (s *Service) ensurePermissionsExist(ctx context.Context, ids []int64) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}

	found, err := s.repo.GetPermissionsByIDs(ctx, ids)
	if err != nil {
		return internal.NewInternalError("Failed to load permissions", err)
	}
	if len(found) == len(ids) {
		return nil
	}

	known := make(map[int64]bool, len(found))
	for _, p := range found {
		known[p.ID] = true
	}
	missing := make([]int64, 0)
	for _, id := range ids {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	return internal.ErrPermissionNotFound.WithDetails(map[string][]int64{"permission_ids": missing})
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
