package complaint_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/audit"
	"github.com/teryaq/pharmacy-backend/internal/complaint"
	complaintPostgres "github.com/teryaq/pharmacy-backend/internal/complaint/postgres"
	"github.com/teryaq/pharmacy-backend/internal/core/operation"
	"github.com/teryaq/pharmacy-backend/internal/testsupport"
	"gorm.io/gorm"
)

var _ = Describe("Complaint Service", func() {
	var (
		db      *gorm.DB
		dir     Directory
		service *complaint.Service
	)

	BeforeEach(func() {
		var err error
		db, err = testsupport.OpenSQLite(audit.NewPlugin(audit.NewResolver(), silentLogger()))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(testsupport.Close, db)

		dir = newDirectory()
		service = complaint.NewService(complaintPostgres.NewComplaintRepository(db), dir, operation.Decorators{}, silentLogger())
	})

	file := func(by int64, title string) *complaint.Complaint {
		c, err := service.Create(dir.As(by), complaint.CreateComplaintRequest{Title: title, Description: "details"})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	Describe("Create", func() {
		It("should file against the creator's pharmacy with client details", func() {
			// When
			c := file(employeeID, "Printer jammed")

			// Then
			Expect(c.PharmacyID).To(Equal(homePharmacy))
			Expect(c.Status).To(Equal(complaint.StatusPending))
			Expect(c.CreatedBy).To(Equal(employeeID))
			Expect(c.UserType).To(Equal("PHARMACY_EMPLOYEE"))
			Expect(c.IPAddress).To(Equal("203.0.113.9"))
			Expect(c.UserAgent).To(Equal("teryaq-pos/2.1"))
		})

		It("should require a pharmacy", func() {
			_, err := service.Create(dir.As(adminID), complaint.CreateComplaintRequest{Title: "t", Description: "d"})

			Expect(errors.Is(err, internal.ErrNoPharmacy)).To(BeTrue())
		})
	})

	Describe("Get", func() {
		It("should allow the same pharmacy and admins", func() {
			c := file(employeeID, "Slow tills")

			_, err := service.Get(dir.As(colleagueID), c.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Get(dir.As(adminID), c.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should deny other pharmacies", func() {
			c := file(employeeID, "Slow tills")

			_, err := service.Get(dir.As(outsiderID), c.ID)

			Expect(errors.Is(err, internal.ErrPharmacyAccess)).To(BeTrue())
		})

		It("should report a missing complaint", func() {
			_, err := service.Get(dir.As(employeeID), 9999)

			Expect(errors.Is(err, internal.ErrComplaintNotFound)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		It("should let the pharmacy manager resolve and record the responder", func() {
			// Given
			c := file(employeeID, "Broken scanner")
			answer := "Replaced the scanner"

			// When
			updated, err := service.Update(dir.As(managerID), c.ID, complaint.UpdateComplaintRequest{
				Status:   complaint.StatusResolved,
				Response: &answer,
			})

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(complaint.StatusResolved))
			Expect(*updated.RespondedBy).To(Equal(managerID))
			Expect(updated.RespondedAt).NotTo(BeNil())

			stored, err := service.Get(dir.As(managerID), c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.CreatedBy).To(Equal(employeeID))
			Expect(stored.UpdatedBy).To(Equal(managerID))
			Expect(*stored.Response).To(Equal(answer))
		})

		It("should not record a responder for intermediate states", func() {
			c := file(employeeID, "Broken scanner")

			updated, err := service.Update(dir.As(managerID), c.ID, complaint.UpdateComplaintRequest{Status: complaint.StatusInProgress})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.RespondedBy).To(BeNil())
		})

		It("should deny employees", func() {
			c := file(employeeID, "Broken scanner")

			_, err := service.Update(dir.As(colleagueID), c.ID, complaint.UpdateComplaintRequest{Status: complaint.StatusClosed})

			Expect(errors.Is(err, internal.ErrAccessDenied)).To(BeTrue())
		})

		It("should deny managers of another pharmacy", func() {
			c := file(employeeID, "Broken scanner")

			_, err := service.Update(dir.As(outsiderID), c.ID, complaint.UpdateComplaintRequest{Status: complaint.StatusClosed})

			Expect(errors.Is(err, internal.ErrPharmacyAccess)).To(BeTrue())
		})

		It("should reject an unknown status", func() {
			c := file(employeeID, "Broken scanner")

			_, err := service.Update(dir.As(adminID), c.ID, complaint.UpdateComplaintRequest{Status: "ESCALATED"})

			Expect(errors.Is(err, internal.ErrInvalidComplaintStatus)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("should let the creator delete", func() {
			c := file(employeeID, "Typo")

			Expect(service.Delete(dir.As(employeeID), c.ID)).To(Succeed())

			_, err := service.Get(dir.As(employeeID), c.ID)
			Expect(errors.Is(err, internal.ErrComplaintNotFound)).To(BeTrue())
		})

		It("should deny a colleague who did not file it", func() {
			c := file(employeeID, "Typo")

			err := service.Delete(dir.As(colleagueID), c.ID)

			Expect(errors.Is(err, internal.ErrAccessDenied)).To(BeTrue())
		})

		It("should let an admin delete anywhere", func() {
			c := file(employeeID, "Typo")

			Expect(service.Delete(dir.As(adminID), c.ID)).To(Succeed())
		})
	})

	Describe("Reporting", func() {
		BeforeEach(func() {
			first := file(employeeID, "one")
			file(employeeID, "two")
			third := file(colleagueID, "three")
			file(outsiderID, "elsewhere")

			_, err := service.Update(dir.As(managerID), first.ID, complaint.UpdateComplaintRequest{Status: complaint.StatusClosed})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Update(dir.As(managerID), third.ID, complaint.UpdateComplaintRequest{Status: complaint.StatusInProgress})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should count every status for the current pharmacy", func() {
			stats, err := service.Statistics(dir.As(managerID))

			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(HaveLen(len(complaint.AllStatuses)))
			Expect(stats[complaint.StatusPending]).To(Equal(int64(1)))
			Expect(stats[complaint.StatusInProgress]).To(Equal(int64(1)))
			Expect(stats[complaint.StatusClosed]).To(Equal(int64(1)))
			Expect(stats[complaint.StatusRejected]).To(BeZero())
		})

		It("should list complaints needing a response", func() {
			open, err := service.NeedingResponse(dir.As(managerID))

			Expect(err).NotTo(HaveOccurred())
			Expect(open).To(HaveLen(2))
			for _, c := range open {
				Expect(c.Status.NeedsResponse()).To(BeTrue())
				Expect(c.PharmacyID).To(Equal(homePharmacy))
			}
		})

		It("should page and filter the pharmacy's complaints", func() {
			page, err := service.List(dir.As(employeeID), complaint.ListFilter{PageSize: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(int64(3)))
			Expect(page.Complaints).To(HaveLen(2))

			closed, err := service.List(dir.As(employeeID), complaint.ListFilter{Status: complaint.StatusClosed})
			Expect(err).NotTo(HaveOccurred())
			Expect(closed.Complaints).To(HaveLen(1))
			Expect(closed.PageSize).To(Equal(complaint.DefaultPageSize))
		})

		It("should cap the page size", func() {
			page, err := service.List(dir.As(employeeID), complaint.ListFilter{PageSize: 500})

			Expect(err).NotTo(HaveOccurred())
			Expect(page.PageSize).To(Equal(complaint.MaxPageSize))
		})

		It("should reject an unknown status filter", func() {
			_, err := service.List(dir.As(employeeID), complaint.ListFilter{Status: "LOST"})

			Expect(errors.Is(err, internal.ErrInvalidComplaintStatus)).To(BeTrue())
		})
	})
})
