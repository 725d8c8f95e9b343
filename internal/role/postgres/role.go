package postgres

import (
	"context"
	"errors"
	"time"

	userDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/user"
	"github.com/teryaq/pharmacy-backend/internal/role"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) ListRoles(ctx context.Context) ([]*userDatamodel.Role, error) {
	var roles []*userDatamodel.Role
	err := r.db.WithContext(ctx).Preload("Permissions").Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) GetRoleByID(ctx context.Context, id int64) (*userDatamodel.Role, error) {
	var row userDatamodel.Role
	err := r.db.WithContext(ctx).Preload("Permissions").Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *RoleRepository) GetRoleByName(ctx context.Context, name string) (*userDatamodel.Role, error) {
	var row userDatamodel.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *RoleRepository) CreateRole(ctx context.Context, row *userDatamodel.Role, permissionIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
			return err
		}
		return insertRolePermissions(tx, row.ID, permissionIDs)
	})
}

func (r *RoleRepository) UpdateRole(ctx context.Context, row *userDatamodel.Role) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(row).Error
}

func (r *RoleRepository) DeleteRole(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&userDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&userDatamodel.Role{}).Error
	})
}

// ReplaceRolePermissions rewrites the join rows and bumps the role so its modifier is stamped.
func (r *RoleRepository) ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&userDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		if err := insertRolePermissions(tx, roleID, permissionIDs); err != nil {
			return err
		}
		return tx.Model(&userDatamodel.Role{}).Where("id = ?", roleID).Update("updated_at", time.Now()).Error
	})
}

func (r *RoleRepository) CountUsersWithRole(ctx context.Context, roleID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("role_id = ?", roleID).Count(&count).Error
	return count, err
}

func (r *RoleRepository) ListPermissions(ctx context.Context) ([]*userDatamodel.Permission, error) {
	var permissions []*userDatamodel.Permission
	err := r.db.WithContext(ctx).Order("resource ASC, name ASC").Find(&permissions).Error
	return permissions, err
}

func (r *RoleRepository) GetPermissionsByIDs(ctx context.Context, ids []int64) ([]*userDatamodel.Permission, error) {
	var permissions []*userDatamodel.Permission
	if len(ids) == 0 {
		return permissions, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&permissions).Error
	return permissions, err
}

func (r *RoleRepository) GetPermissionByName(ctx context.Context, name string) (*userDatamodel.Permission, error) {
	var row userDatamodel.Permission
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *RoleRepository) CreatePermission(ctx context.Context, row *userDatamodel.Permission) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func insertRolePermissions(tx *gorm.DB, roleID int64, permissionIDs []int64) error {
	if len(permissionIDs) == 0 {
		return nil
	}
	rows := make([]userDatamodel.RolePermission, 0, len(permissionIDs))
	for _, id := range permissionIDs {
		rows = append(rows, userDatamodel.RolePermission{RoleID: roleID, PermissionID: id})
	}
	return tx.Create(&rows).Error
}
