package audit_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/audit"
	"github.com/teryaq/pharmacy-backend/pkg/logger"
)

type created struct {
	ID int64
}

var _ = Describe("Recorder", func() {
	var (
		publisher *capturingPublisher
		recorder  *audit.Recorder
	)

	BeforeEach(func() {
		publisher = &capturingPublisher{}
		recorder = audit.NewRecorder(audit.NewResolver(), publisher, silentLogger())
	})

	It("should capture actor, client and redacted details", func() {
		// Given
		ctx := internal.ContextWithClientInfo(asUser(42, "PHARMACY_MANAGER"), internal.ClientInfo{
			IPAddress: "10.0.0.7",
			UserAgent: "curl/8",
			TraceID:   "trace-1",
		})

		// When
		event := recorder.Record(ctx, audit.Entry{
			Action:     "CREATE_USER",
			TargetType: "USER",
			TargetID:   "9",
			Details:    map[string]interface{}{"email": "new@teryaq.com", "password": "Password!1"},
		})

		// Then
		Expect(event.ID).NotTo(BeEmpty())
		Expect(event.UserID).To(Equal(int64(42)))
		Expect(event.UserType).To(Equal("PHARMACY_MANAGER"))
		Expect(event.IPAddress).To(Equal("10.0.0.7"))
		Expect(event.UserAgent).To(Equal("curl/8"))
		Expect(event.TraceID).To(Equal("trace-1"))
		Expect(event.Status).To(Equal(audit.StatusSuccess))
		Expect(event.Details["email"]).To(Equal("new@teryaq.com"))
		Expect(event.Details["password"]).To(Equal(logger.Filtered))
		Expect(publisher.Published()).To(HaveLen(1))
		Expect(publisher.Published()[0].EventType()).To(Equal(audit.EventTypeRecorded))
	})

	It("should not fail when publishing fails", func() {
		publisher.err = errors.New("bus closed")

		event := recorder.Record(context.Background(), audit.Entry{Action: "LOGIN", TargetType: "USER"})

		Expect(event.UserID).To(Equal(audit.SystemUserID))
		Expect(publisher.Published()).To(HaveLen(1))
	})

	Describe("WithAudit", func() {
		It("should record success with the target taken from the result", func() {
			op := audit.WithAudit(recorder, audit.Action[created]{
				Name:       "CREATE_COMPLAINT",
				TargetType: "COMPLAINT",
				TargetOf:   func(c created) string { return audit.ID(c.ID) },
			}, func(ctx context.Context) (created, error) {
				return created{ID: 15}, nil
			})

			result, err := op(asUser(3, "PHARMACY_EMPLOYEE"))

			Expect(err).NotTo(HaveOccurred())
			Expect(result.ID).To(Equal(int64(15)))
			events := publisher.Published()
			Expect(events).To(HaveLen(1))
			recorded := events[0].(audit.Event)
			Expect(recorded.TargetID).To(Equal("15"))
			Expect(recorded.Status).To(Equal(audit.StatusSuccess))
		})

		It("should record failure and return the error unchanged", func() {
			op := audit.WithAudit(recorder, audit.Action[created]{
				Name:       "DELETE_COMPLAINT",
				TargetType: "COMPLAINT",
				TargetID:   "8",
			}, func(ctx context.Context) (created, error) {
				return created{}, internal.ErrAccessDenied
			})

			_, err := op(asUser(3, "PHARMACY_EMPLOYEE"))

			Expect(errors.Is(err, internal.ErrAccessDenied)).To(BeTrue())
			recorded := publisher.Published()[0].(audit.Event)
			Expect(recorded.Status).To(Equal(audit.StatusFailure))
			Expect(recorded.TargetID).To(Equal("8"))
			Expect(recorded.ErrorMessage).To(Equal("Access denied"))
		})

		It("should attribute a successful call to the actor it authenticated", func() {
			op := audit.WithAudit(recorder, audit.Action[created]{
				Name:       "LOGIN",
				TargetType: "USER",
				TargetID:   "pharmacist@teryaq.com",
				ActorOf: func(c created) (internal.UserPrincipal, bool) {
					return internal.UserPrincipal{UserID: c.ID, RoleName: "PHARMACY_EMPLOYEE"}, c.ID > 0
				},
			}, func(ctx context.Context) (created, error) {
				return created{ID: 7}, nil
			})

			_, err := op(internal.ContextWithAuthentication(context.Background(), internal.NewAnonymousAuthentication()))

			Expect(err).NotTo(HaveOccurred())
			recorded := publisher.Published()[0].(audit.Event)
			Expect(recorded.UserID).To(Equal(int64(7)))
			Expect(recorded.UserType).To(Equal("PHARMACY_EMPLOYEE"))
		})

		It("should keep the context actor when the call fails", func() {
			op := audit.WithAudit(recorder, audit.Action[created]{
				Name:       "LOGIN",
				TargetType: "USER",
				ActorOf: func(c created) (internal.UserPrincipal, bool) {
					return internal.UserPrincipal{UserID: 7}, true
				},
			}, func(ctx context.Context) (created, error) {
				return created{}, internal.ErrInvalidCredentials
			})

			_, _ = op(context.Background())

			recorded := publisher.Published()[0].(audit.Event)
			Expect(recorded.UserID).To(Equal(audit.SystemUserID))
			Expect(recorded.UserType).To(Equal(audit.SystemUserType))
		})

		It("should pass through without a recorder", func() {
			op := audit.WithAudit(nil, audit.Action[int]{Name: "NOOP"}, func(ctx context.Context) (int, error) {
				return 1, nil
			})

			Expect(op(context.Background())).To(Equal(1))
		})
	})
})
