package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/access"
	"github.com/teryaq/pharmacy-backend/internal/auth"
	userDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/user"
	"github.com/teryaq/pharmacy-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the permission catalogue, system roles and system users",
	Long:  `Idempotently install the permission catalogue, the system roles with their default permissions and the platform administrators.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		logger.Init(cfg.Env, cfg.Observability.Logging.Level)
		lg := logger.LoggerWrapper()

		db, err := initDB(cfg.Database, lg)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer closeDB(db)

		// Anonymous so every row is stamped with the system user.
		ctx := internal.ContextWithAuthentication(context.Background(), internal.NewAnonymousAuthentication())
		if err := NewSeeder(db, cfg.Security.BCryptCost, lg).Seed(ctx, seedPassword); err != nil {
			log.Fatalf("failed to seed: %v", err)
		}
	},
}

func init() {
	defaultPassword := os.Getenv("SEED_PASSWORD")
	if defaultPassword == "" {
		defaultPassword = "Password!1"
	}
	seedCmd.Flags().StringVar(&seedPassword, "password", defaultPassword, "password given to newly created system users")
}

type seedUser struct {
	Email     string
	FirstName string
	LastName  string
	Role      string
}

// systemUsers are created in order; on an empty database the first becomes user 1, the
// id recorded for anonymous writes.
var systemUsers = []seedUser{
	{Email: "super.admin@teryaq.com", FirstName: "Super", LastName: "Admin", Role: access.RolePlatformAdmin},
	{Email: "admin@teryaq.com", FirstName: "Platform", LastName: "Admin", Role: access.RolePlatformAdmin},
}

type Seeder struct {
	db         *gorm.DB
	bcryptCost int
	logger     *slog.Logger
}

func NewSeeder(db *gorm.DB, bcryptCost int, logger *slog.Logger) *Seeder {
	return &Seeder{db: db, bcryptCost: bcryptCost, logger: logger}
}

func (s *Seeder) Seed(ctx context.Context, password string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		permissionIDs, err := s.seedPermissions(tx)
		if err != nil {
			return err
		}
		roleIDs, err := s.seedRoles(tx, permissionIDs)
		if err != nil {
			return err
		}
		return s.seedUsers(tx, roleIDs, password)
	})
}

func (s *Seeder) seedPermissions(tx *gorm.DB) (map[string]int64, error) {
	ids := make(map[string]int64, len(access.SystemPermissions))
	for _, def := range access.SystemPermissions {
		p := userDatamodel.Permission{
			Name:              def.Name,
			Description:       def.Description,
			Resource:          def.Resource,
			Action:            def.Action,
			IsActive:          true,
			IsSystemGenerated: true,
		}
		if err := tx.Where(userDatamodel.Permission{Name: def.Name}).Attrs(p).FirstOrCreate(&p).Error; err != nil {
			return nil, fmt.Errorf("seed permission %s: %w", def.Name, err)
		}
		ids[def.Name] = p.ID
	}
	s.logger.Info("permissions seeded", "count", len(ids))
	return ids, nil
}

func (s *Seeder) seedRoles(tx *gorm.DB, permissionIDs map[string]int64) (map[string]int64, error) {
	ids := make(map[string]int64, len(access.SystemRoles))
	for _, def := range access.SystemRoles {
		r := userDatamodel.Role{
			Name:              def.Name,
			Description:       def.Description,
			IsActive:          true,
			IsSystem:          true,
			IsSystemGenerated: true,
		}
		if err := tx.Omit(clause.Associations).Where(userDatamodel.Role{Name: def.Name}).Attrs(r).FirstOrCreate(&r).Error; err != nil {
			return nil, fmt.Errorf("seed role %s: %w", def.Name, err)
		}
		ids[def.Name] = r.ID

		granted := def.PermissionsFor()
		if len(granted) == 0 {
			continue
		}
		rows := make([]userDatamodel.RolePermission, 0, len(granted))
		for _, name := range granted {
			pid, ok := permissionIDs[name]
			if !ok {
				return nil, fmt.Errorf("seed role %s: unknown permission %s", def.Name, name)
			}
			rows = append(rows, userDatamodel.RolePermission{RoleID: r.ID, PermissionID: pid})
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return nil, fmt.Errorf("seed role %s permissions: %w", def.Name, err)
		}
	}
	s.logger.Info("roles seeded", "count", len(ids))
	return ids, nil
}

func (s *Seeder) seedUsers(tx *gorm.DB, roleIDs map[string]int64, password string) error {
	var hash string
	for _, su := range systemUsers {
		var existing userDatamodel.User
		err := tx.Where("email = ?", su.Email).First(&existing).Error
		if err == nil {
			s.logger.Info("system user already exists", "email", su.Email)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("look up %s: %w", su.Email, err)
		}

		if hash == "" {
			if hash, err = auth.HashPassword(password, s.bcryptCost); err != nil {
				return fmt.Errorf("hash seed password: %w", err)
			}
		}
		u := userDatamodel.User{
			Email:        su.Email,
			FirstName:    su.FirstName,
			LastName:     su.LastName,
			PasswordHash: hash,
			RoleID:       roleIDs[su.Role],
			IsActive:     true,
		}
		if err := tx.Omit(clause.Associations).Create(&u).Error; err != nil {
			return fmt.Errorf("create %s: %w", su.Email, err)
		}
		s.logger.Info("system user seeded", "email", su.Email, "user_id", u.ID)
	}
	return nil
}
