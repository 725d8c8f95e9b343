package audit_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/audit"
)

var _ = Describe("ContextResolver", func() {
	var resolver audit.ContextResolver

	BeforeEach(func() {
		resolver = audit.NewResolver()
	})

	Describe("CurrentAuditor", func() {
		It("should return the system user when no authentication is present", func() {
			id, err := resolver.CurrentAuditor(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(audit.SystemUserID))
			Expect(id).To(Equal(int64(1)))
		})

		It("should return the system user for anonymous authentication", func() {
			ctx := internal.ContextWithAuthentication(context.Background(), internal.NewAnonymousAuthentication())

			id, err := resolver.CurrentAuditor(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(int64(1)))
		})

		It("should return the system user when authentication is not completed", func() {
			ctx := internal.ContextWithAuthentication(context.Background(), &internal.Authentication{
				Principal:     internal.UserPrincipal{UserID: 42},
				Authenticated: false,
			})

			id, err := resolver.CurrentAuditor(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(int64(1)))
		})

		It("should return the authenticated user's id", func() {
			id, err := resolver.CurrentAuditor(asUser(42, "PHARMACY_MANAGER"))

			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(int64(42)))
		})

		It("should accept a pointer principal", func() {
			ctx := internal.ContextWithAuthentication(context.Background(), &internal.Authentication{
				Principal:     &internal.UserPrincipal{UserID: 9},
				Authenticated: true,
			})

			id, err := resolver.CurrentAuditor(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(int64(9)))
		})

		It("should fail loudly on a principal of an unexpected shape", func() {
			// Given
			ctx := internal.ContextWithAuthentication(context.Background(), &internal.Authentication{
				Principal:     "service-account",
				Authenticated: true,
			})

			// When
			_, err := resolver.CurrentAuditor(ctx)

			// Then
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, internal.ErrInvalidPrincipal)).To(BeTrue())
		})

		It("should fail on a user principal without an id", func() {
			_, err := resolver.CurrentAuditor(asUser(0, "PLATFORM_ADMIN"))

			Expect(errors.Is(err, internal.ErrInvalidPrincipal)).To(BeTrue())
		})

		It("should be idempotent", func() {
			ctx := asUser(42, "PHARMACY_EMPLOYEE")
			first, _ := resolver.CurrentAuditor(ctx)
			second, _ := resolver.CurrentAuditor(ctx)
			Expect(first).To(Equal(second))
		})
	})

	Describe("CurrentAuditorType", func() {
		It("should report the role name of the user", func() {
			Expect(resolver.CurrentAuditorType(asUser(42, "PHARMACY_MANAGER"))).To(Equal("PHARMACY_MANAGER"))
		})

		It("should report SYSTEM without a user", func() {
			Expect(resolver.CurrentAuditorType(context.Background())).To(Equal(audit.SystemUserType))
		})

		It("should not label a real user without a role as SYSTEM", func() {
			Expect(resolver.CurrentAuditorType(asUser(42, ""))).To(Equal(audit.UnknownUserType))
		})
	})
})
