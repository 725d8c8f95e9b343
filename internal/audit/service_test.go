package audit_test

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/teryaq/pharmacy-backend/internal/audit"
	auditPostgres "github.com/teryaq/pharmacy-backend/internal/audit/postgres"
	"github.com/teryaq/pharmacy-backend/internal/core/events"
	"github.com/teryaq/pharmacy-backend/internal/testsupport"
	"gorm.io/gorm"
)

var _ = Describe("Audit trail", func() {
	var (
		db       *gorm.DB
		reader   *sqlx.DB
		bus      *events.EventBus
		service  *audit.Service
		recorder *audit.Recorder
	)

	BeforeEach(func() {
		var err error
		db, err = testsupport.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(testsupport.Close, db)

		reader, err = testsupport.Reader(db)
		Expect(err).NotTo(HaveOccurred())

		bus = events.NewEventBus(silentLogger())
		service = audit.NewService(auditPostgres.NewAuditRepository(db, reader), silentLogger())
		service.Subscribe(bus)
		recorder = audit.NewRecorder(audit.NewResolver(), bus, silentLogger())
	})

	record := func(ctx context.Context, action, targetType, targetID string) {
		recorder.Record(ctx, audit.Entry{Action: action, TargetType: targetType, TargetID: targetID})
		bus.Drain()
	}

	It("should persist published events and return them newest first", func() {
		// Given
		record(asUser(42, "PLATFORM_ADMIN"), "CREATE_ROLE", "ROLE", "1")
		time.Sleep(2 * time.Millisecond)
		record(asUser(42, "PLATFORM_ADMIN"), "UPDATE_ROLE", "ROLE", "1")

		// When
		timeline, err := service.Timeline(context.Background(), audit.Filter{})

		// Then
		Expect(err).NotTo(HaveOccurred())
		Expect(timeline.Events).To(HaveLen(2))
		Expect(timeline.Events[0].Action).To(Equal("UPDATE_ROLE"))
		Expect(timeline.Events[1].Action).To(Equal("CREATE_ROLE"))
		Expect(timeline.PageSize).To(Equal(audit.DefaultPageSize))
	})

	It("should filter by actor, target and action", func() {
		record(asUser(42, "PLATFORM_ADMIN"), "CREATE_ROLE", "ROLE", "1")
		record(asUser(7, "PHARMACY_MANAGER"), "CREATE_COMPLAINT", "COMPLAINT", "3")
		record(asUser(7, "PHARMACY_MANAGER"), "DELETE_COMPLAINT", "COMPLAINT", "3")

		actor := int64(7)
		byActor, err := service.Timeline(context.Background(), audit.Filter{UserID: &actor})
		Expect(err).NotTo(HaveOccurred())
		Expect(byActor.Events).To(HaveLen(2))

		byAction, err := service.Timeline(context.Background(), audit.Filter{TargetType: "COMPLAINT", TargetID: "3", Action: "DELETE_COMPLAINT"})
		Expect(err).NotTo(HaveOccurred())
		Expect(byAction.Events).To(HaveLen(1))
		Expect(byAction.Events[0].UserType).To(Equal("PHARMACY_MANAGER"))
	})

	It("should filter by date range", func() {
		record(context.Background(), "SEED", "SYSTEM", "")

		future := time.Now().Add(time.Hour)
		none, err := service.Timeline(context.Background(), audit.Filter{From: &future})
		Expect(err).NotTo(HaveOccurred())
		Expect(none.Events).To(BeEmpty())

		past := time.Now().Add(-time.Hour)
		some, err := service.Timeline(context.Background(), audit.Filter{From: &past, To: &future})
		Expect(err).NotTo(HaveOccurred())
		Expect(some.Events).To(HaveLen(1))
		Expect(some.Events[0].UserID).To(Equal(audit.SystemUserID))
	})

	It("should cap the page size", func() {
		filter := audit.Filter{PageSize: 500, Page: -3}.Normalize()

		Expect(filter.PageSize).To(Equal(audit.MaxPageSize))
		Expect(filter.Page).To(BeZero())
		Expect(filter.Offset()).To(BeZero())
	})

	It("should page through results", func() {
		for i := 0; i < 3; i++ {
			record(asUser(42, "PLATFORM_ADMIN"), "LOGIN", "USER", "42")
		}

		page, err := service.Timeline(context.Background(), audit.Filter{PageSize: 2, Page: 1})

		Expect(err).NotTo(HaveOccurred())
		Expect(page.Events).To(HaveLen(1))
	})
})
