package postgres

import (
	"context"
	"errors"

	"github.com/teryaq/pharmacy-backend/internal/access"
	userDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository backs the user service and loads evaluator subjects.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Preload("Role").Where("id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Preload("Role").Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID, roleID int64) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Update("role_id", roleID).Error
}

func (r *UserRepository) SetActive(ctx context.Context, userID int64, active bool) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Update("is_active", active).Error
}

func (r *UserRepository) GetRole(ctx context.Context, roleID int64) (*userDatamodel.Role, error) {
	var role userDatamodel.Role
	err := r.db.WithContext(ctx).Where("id = ?", roleID).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *UserRepository) GetPermission(ctx context.Context, permissionID int64) (*userDatamodel.Permission, error) {
	var p userDatamodel.Permission
	err := r.db.WithContext(ctx).Where("id = ?", permissionID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// GetPermissions returns the user's effective permission names.
func (r *UserRepository) GetPermissions(ctx context.Context, userID int64) ([]string, error) {
	subject, err := r.LoadSubject(ctx, userID)
	if err != nil || subject == nil {
		return []string{}, err
	}
	return subject.EffectivePermissions(), nil
}

func (r *UserRepository) GrantPermission(ctx context.Context, grant *userDatamodel.UserPermission) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(grant).Error
}

func (r *UserRepository) RevokePermission(ctx context.Context, userID, permissionID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Delete(&userDatamodel.UserPermission{}).Error
}

// LoadSubject implements access.SubjectLoader.
func (r *UserRepository) LoadSubject(ctx context.Context, userID int64) (*access.Subject, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Preload("Role.Permissions").Where("id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var additional []string
	err = r.db.WithContext(ctx).
		Model(&userDatamodel.Permission{}).
		Joins("JOIN user_permissions up ON up.permission_id = permissions.id").
		Where("up.user_id = ?", userID).
		Order("permissions.name").
		Pluck("permissions.name", &additional).Error
	if err != nil {
		return nil, err
	}

	subject := &access.Subject{
		ID:                    u.ID,
		Email:                 u.Email,
		PharmacyID:            u.PharmacyID,
		RolePermissions:       []string{},
		AdditionalPermissions: additional,
		Deactivated:           !u.IsActive,
	}
	if u.Role != nil {
		subject.RoleName = u.Role.Name
		subject.Deactivated = subject.Deactivated || !u.Role.IsActive
		for _, p := range u.Role.Permissions {
			subject.RolePermissions = append(subject.RolePermissions, p.Name)
		}
	}
	if subject.AdditionalPermissions == nil {
		subject.AdditionalPermissions = []string{}
	}
	return subject, nil
}
