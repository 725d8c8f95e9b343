package access_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/access"
)

var _ = Describe("Evaluator", func() {
	var (
		loader     *MockLoader
		evaluator  *access.Evaluator
		pharmacist *access.Subject
	)

	BeforeEach(func() {
		pharmacist = &access.Subject{
			ID:                    10,
			Email:                 "pharmacist@teryaq.com",
			RoleName:              "PHARMACIST",
			RolePermissions:       []string{"sale:manage"},
			AdditionalPermissions: []string{"report:view"},
			PharmacyID:            pharmacy(3),
		}
		loader = NewMockLoader(
			pharmacist,
			&access.Subject{ID: 1, RoleName: access.RolePlatformAdmin, RolePermissions: []string{"USER_CREATE"}},
			&access.Subject{ID: 2, RoleName: access.RolePharmacyManager, PharmacyID: pharmacy(3)},
			&access.Subject{ID: 4, RoleName: access.RolePharmacyEmployee},
		)
		evaluator = access.NewEvaluator(loader, silentLogger())
	})

	Describe("HasPermission", func() {
		It("should union role and additional permissions", func() {
			ctx := asUser(10)

			sale, err := evaluator.HasPermission(ctx, "sale:manage")
			Expect(err).NotTo(HaveOccurred())
			Expect(sale).To(BeTrue())

			report, err := evaluator.HasPermission(ctx, "report:view")
			Expect(err).NotTo(HaveOccurred())
			Expect(report).To(BeTrue())

			manage, err := evaluator.HasPermission(ctx, "user:manage")
			Expect(err).NotTo(HaveOccurred())
			Expect(manage).To(BeFalse())
		})

		It("should match names exactly", func() {
			granted, err := evaluator.HasPermission(asUser(10), "SALE:MANAGE")

			Expect(err).NotTo(HaveOccurred())
			Expect(granted).To(BeFalse())
		})

		It("should return the same answer on repeated calls", func() {
			ctx := asUser(10)
			for i := 0; i < 3; i++ {
				granted, err := evaluator.HasPermission(ctx, "report:view")
				Expect(err).NotTo(HaveOccurred())
				Expect(granted).To(BeTrue())
			}
			Expect(loader.calls).To(Equal(3))
		})

		It("should not assume the role set covers the additional set", func() {
			// Given
			pharmacist.RolePermissions = nil

			// When
			granted, err := evaluator.HasPermission(asUser(10), "report:view")

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(granted).To(BeTrue())
		})
	})

	Describe("IsInRole", func() {
		It("should compare role names exactly", func() {
			yes, err := evaluator.IsInRole(asUser(10), "PHARMACIST")
			Expect(err).NotTo(HaveOccurred())
			Expect(yes).To(BeTrue())

			no, err := evaluator.IsInRole(asUser(10), "pharmacist")
			Expect(err).NotTo(HaveOccurred())
			Expect(no).To(BeFalse())
		})

		It("should expose the system role shortcuts", func() {
			Expect(evaluator.IsAdmin(asUser(1))).To(BeTrue())
			Expect(evaluator.IsPharmacyManager(asUser(2))).To(BeTrue())
			Expect(evaluator.IsPharmacist(asUser(4))).To(BeTrue())
			Expect(evaluator.IsTrainee(asUser(4))).To(BeFalse())
			Expect(evaluator.IsAdmin(asUser(10))).To(BeFalse())
		})
	})

	Describe("failure modes", func() {
		It("should report unauthenticated for a bare context", func() {
			_, err := evaluator.HasPermission(context.Background(), "sale:manage")

			Expect(errors.Is(err, internal.ErrUnauthenticated)).To(BeTrue())
			Expect(loader.calls).To(BeZero())
		})

		It("should report unauthenticated for anonymous authentication", func() {
			ctx := internal.ContextWithAuthentication(context.Background(), internal.NewAnonymousAuthentication())

			_, err := evaluator.IsInRole(ctx, access.RolePlatformAdmin)

			Expect(errors.Is(err, internal.ErrUnauthenticated)).To(BeTrue())
		})

		It("should report a missing current user instead of false", func() {
			// When
			granted, err := evaluator.HasPermission(asUser(999), "sale:manage")

			// Then
			Expect(granted).To(BeFalse())
			Expect(errors.Is(err, internal.ErrCurrentUserMissing)).To(BeTrue())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeCurrentUserMissing))
			Expect(appErr.StatusCode).To(Equal(500))
		})

		It("should refuse a user deactivated after authenticating", func() {
			pharmacist.Deactivated = true

			granted, err := evaluator.HasPermission(asUser(10), "sale:manage")

			Expect(granted).To(BeFalse())
			Expect(errors.Is(err, internal.ErrUserInactive)).To(BeTrue())
			Expect(errors.Is(err, internal.ErrCurrentUserMissing)).To(BeFalse())
		})

		It("should reject a principal of another shape", func() {
			ctx := internal.ContextWithAuthentication(context.Background(), &internal.Authentication{
				Principal:     "api-key",
				Authenticated: true,
			})

			_, err := evaluator.IsInRole(ctx, access.RolePlatformAdmin)

			Expect(errors.Is(err, internal.ErrInvalidPrincipal)).To(BeTrue())
		})

		It("should wrap store failures as internal errors", func() {
			loader.err = errors.New("connection refused")

			_, err := evaluator.HasPermission(asUser(10), "sale:manage")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
			Expect(errors.Unwrap(err)).To(MatchError("connection refused"))
		})
	})

	Describe("pharmacy scope", func() {
		It("should return the current pharmacy", func() {
			id, err := evaluator.CurrentPharmacyID(asUser(10))

			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(int64(3)))
		})

		It("should refuse users outside any pharmacy", func() {
			_, err := evaluator.CurrentPharmacyID(asUser(4))

			Expect(errors.Is(err, internal.ErrNoPharmacy)).To(BeTrue())
		})

		It("should validate access to a pharmacy", func() {
			Expect(evaluator.ValidatePharmacyAccess(asUser(10), 3)).To(Succeed())
			Expect(errors.Is(evaluator.ValidatePharmacyAccess(asUser(10), 4), internal.ErrPharmacyAccess)).To(BeTrue())
		})

		It("should identify the current user", func() {
			Expect(evaluator.IsCurrentUser(asUser(10), 10)).To(BeTrue())
			Expect(evaluator.IsCurrentUser(asUser(10), 11)).To(BeFalse())
		})
	})
})

var _ = Describe("Subject", func() {
	It("should list effective permissions once, sorted", func() {
		s := &access.Subject{
			RolePermissions:       []string{"SALE_READ", "USER_READ"},
			AdditionalPermissions: []string{"USER_READ", "REPORT_VIEW"},
		}

		Expect(s.EffectivePermissions()).To(Equal([]string{"REPORT_VIEW", "SALE_READ", "USER_READ"}))
		Expect(s.HasAnyPermission("NOPE", "REPORT_VIEW")).To(BeTrue())
	})

	Describe("pharmacy rules", func() {
		admin := &access.Subject{ID: 1, RoleName: access.RolePlatformAdmin}
		manager := &access.Subject{ID: 2, RoleName: access.RolePharmacyManager, PharmacyID: pharmacy(3)}
		employee := &access.Subject{ID: 5, RoleName: access.RolePharmacyEmployee, PharmacyID: pharmacy(3)}

		It("should let admins read any pharmacy", func() {
			Expect(access.CanAccessPharmacy(admin, 99)).To(Succeed())
			Expect(access.CanAccessPharmacy(employee, 3)).To(Succeed())
			Expect(access.CanAccessPharmacy(employee, 99)).To(MatchError(internal.ErrPharmacyAccess))
		})

		It("should limit management to admins and managers of the pharmacy", func() {
			Expect(access.CanManagePharmacyResource(admin, 99)).To(Succeed())
			Expect(access.CanManagePharmacyResource(manager, 3)).To(Succeed())
			Expect(access.CanManagePharmacyResource(manager, 4)).To(MatchError(internal.ErrPharmacyAccess))
			Expect(access.CanManagePharmacyResource(employee, 3)).To(MatchError(internal.ErrAccessDenied))
		})

		It("should limit removal to the owner or an admin", func() {
			Expect(access.CanRemoveOwnedResource(admin, 5, 99)).To(Succeed())
			Expect(access.CanRemoveOwnedResource(employee, 5, 3)).To(Succeed())
			Expect(access.CanRemoveOwnedResource(manager, 5, 3)).To(MatchError(internal.ErrAccessDenied))
		})
	})
})

var _ = Describe("Catalogue", func() {
	It("should grant every permission to the platform admin", func() {
		var admin access.RoleDef
		for _, r := range access.SystemRoles {
			if r.Name == access.RolePlatformAdmin {
				admin = r
			}
		}

		Expect(admin.PermissionsFor()).To(HaveLen(len(access.SystemPermissions)))
	})

	It("should keep permission names unique", func() {
		seen := map[string]bool{}
		for _, p := range access.SystemPermissions {
			Expect(seen[p.Name]).To(BeFalse(), p.Name)
			seen[p.Name] = true
		}
	})
})
