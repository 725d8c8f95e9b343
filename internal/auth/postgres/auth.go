package postgres

import (
	"context"
	"errors"

	"github.com/teryaq/pharmacy-backend/internal/auth"
	userDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	return r.credentials(r.db.WithContext(ctx).Where("email = ?", email))
}

func (r *Repository) GetCredentialsByID(ctx context.Context, userID int64) (*auth.Credentials, error) {
	return r.credentials(r.db.WithContext(ctx).Where("id = ?", userID))
}

func (r *Repository) credentials(scope *gorm.DB) (*auth.Credentials, error) {
	var u userDatamodel.User
	if err := scope.Preload("Role").First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	creds := &auth.Credentials{
		UserID:       u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
	}
	if u.Role != nil {
		creds.RoleName = u.Role.Name
		creds.IsActive = creds.IsActive && u.Role.IsActive
	}
	return creds, nil
}
