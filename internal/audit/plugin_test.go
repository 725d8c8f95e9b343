package audit_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/audit"
	userDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/user"
	"github.com/teryaq/pharmacy-backend/internal/testsupport"
	"gorm.io/gorm"
)

var _ = Describe("Plugin", func() {
	var db *gorm.DB

	BeforeEach(func() {
		var err error
		db, err = testsupport.OpenSQLite(audit.NewPlugin(audit.NewResolver(), silentLogger()))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(testsupport.Close, db)
	})

	reload := func(id int64) userDatamodel.Permission {
		var p userDatamodel.Permission
		Expect(db.First(&p, id).Error).To(Succeed())
		return p
	}

	It("should stamp creator and modifier on insert", func() {
		// Given
		p := &userDatamodel.Permission{Name: "REPORT_VIEW", IsActive: true}

		// When
		err := db.WithContext(asUser(42, "PLATFORM_ADMIN")).Create(p).Error

		// Then
		Expect(err).NotTo(HaveOccurred())
		stored := reload(p.ID)
		Expect(stored.CreatedBy).To(Equal(int64(42)))
		Expect(stored.LastModifiedBy).To(Equal(int64(42)))
		Expect(stored.CreatedByUserType).To(Equal("PLATFORM_ADMIN"))
		Expect(stored.LastModifiedByUserType).To(Equal("PLATFORM_ADMIN"))
		Expect(stored.CreatedAt).NotTo(BeZero())
	})

	It("should stamp every row of a batch insert", func() {
		perms := []userDatamodel.Permission{{Name: "A_READ"}, {Name: "B_READ"}}

		Expect(db.WithContext(asUser(7, "PHARMACY_MANAGER")).Create(&perms).Error).To(Succeed())

		for _, p := range perms {
			Expect(reload(p.ID).CreatedBy).To(Equal(int64(7)))
		}
	})

	It("should fall back to the system user without authentication", func() {
		p := &userDatamodel.Permission{Name: "SYSTEM_SEEDED"}

		Expect(db.WithContext(context.Background()).Create(p).Error).To(Succeed())

		stored := reload(p.ID)
		Expect(stored.CreatedBy).To(Equal(audit.SystemUserID))
		Expect(stored.CreatedByUserType).To(Equal(audit.SystemUserType))
	})

	It("should refresh only the modifier on save", func() {
		// Given
		p := &userDatamodel.Permission{Name: "USER_READ", Description: "v1"}
		Expect(db.WithContext(asUser(42, "PLATFORM_ADMIN")).Create(p).Error).To(Succeed())

		// When
		p.Description = "v2"
		Expect(db.WithContext(asUser(77, "PHARMACY_MANAGER")).Save(p).Error).To(Succeed())

		// Then
		stored := reload(p.ID)
		Expect(stored.Description).To(Equal("v2"))
		Expect(stored.CreatedBy).To(Equal(int64(42)))
		Expect(stored.CreatedByUserType).To(Equal("PLATFORM_ADMIN"))
		Expect(stored.LastModifiedBy).To(Equal(int64(77)))
		Expect(stored.LastModifiedByUserType).To(Equal("PHARMACY_MANAGER"))
	})

	It("should stamp column updates", func() {
		p := &userDatamodel.Permission{Name: "SALE_MANAGE", IsActive: true}
		Expect(db.WithContext(asUser(42, "PLATFORM_ADMIN")).Create(p).Error).To(Succeed())

		err := db.WithContext(asUser(5, "PHARMACY_EMPLOYEE")).
			Model(&userDatamodel.Permission{}).
			Where("id = ?", p.ID).
			Update("is_active", false).Error

		Expect(err).NotTo(HaveOccurred())
		stored := reload(p.ID)
		Expect(stored.IsActive).To(BeFalse())
		Expect(stored.LastModifiedBy).To(Equal(int64(5)))
		Expect(stored.CreatedBy).To(Equal(int64(42)))
	})

	It("should abort the write when the principal is malformed", func() {
		// Given
		ctx := internal.ContextWithAuthentication(context.Background(), &internal.Authentication{
			Principal:     struct{ Name string }{"robot"},
			Authenticated: true,
		})

		// When
		err := db.WithContext(ctx).Create(&userDatamodel.Permission{Name: "NEVER_WRITTEN"}).Error

		// Then
		Expect(errors.Is(err, internal.ErrInvalidPrincipal)).To(BeTrue())
		var count int64
		Expect(db.Model(&userDatamodel.Permission{}).Where("name = ?", "NEVER_WRITTEN").Count(&count).Error).To(Succeed())
		Expect(count).To(BeZero())
	})

	It("should leave tables without audited columns alone", func() {
		Expect(db.WithContext(asUser(42, "PLATFORM_ADMIN")).Create(&userDatamodel.RolePermission{RoleID: 1, PermissionID: 2}).Error).To(Succeed())
	})
})
