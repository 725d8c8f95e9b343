package complaint_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/teryaq/pharmacy-backend/internal/audit"
	"github.com/teryaq/pharmacy-backend/internal/complaint"
	complaintPostgres "github.com/teryaq/pharmacy-backend/internal/complaint/postgres"
	"github.com/teryaq/pharmacy-backend/internal/core/operation"
	"github.com/teryaq/pharmacy-backend/internal/testsupport"
	"github.com/teryaq/pharmacy-backend/internal/transport"
)

var _ = Describe("Complaint Handler", func() {
	var (
		dir    Directory
		router chi.Router
	)

	BeforeEach(func() {
		db, err := testsupport.OpenSQLite(audit.NewPlugin(audit.NewResolver(), silentLogger()))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(testsupport.Close, db)

		dir = newDirectory()
		service := complaint.NewService(complaintPostgres.NewComplaintRepository(db), dir, operation.Decorators{}, silentLogger())
		handler := complaint.NewHandler(transport.NewBaseHandler(silentLogger()), service)

		router = chi.NewRouter()
		router.Route("/complaints", func(r chi.Router) {
			r.Post("/", handler.CreateComplaint)
			r.Get("/", handler.ListComplaints)
			r.Get("/statistics", handler.GetStatistics)
			r.Get("/needing-response", handler.GetNeedingResponse)
			r.Get("/status/{status}", handler.ListComplaints)
			r.Get("/{id}", handler.GetComplaint)
			r.Put("/{id}", handler.UpdateComplaint)
			r.Delete("/{id}", handler.DeleteComplaint)
		})
	})

	serve := func(as int64, method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf).WithContext(dir.As(as))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	create := func(title string) complaint.Complaint {
		w := serve(employeeID, http.MethodPost, "/complaints/", complaint.CreateComplaintRequest{Title: title, Description: "d"})
		Expect(w.Code).To(Equal(http.StatusCreated))
		var c complaint.Complaint
		Expect(json.NewDecoder(w.Body).Decode(&c)).To(Succeed())
		return c
	}

	It("should create and read back a complaint", func() {
		c := create("Fridge alarm")

		w := serve(managerID, http.MethodGet, "/complaints/"+strconv.FormatInt(c.ID, 10), nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("Fridge alarm"))
		Expect(w.Body.String()).NotTo(ContainSubstring("203.0.113.9"))
	})

	It("should reject a complaint without a title", func() {
		w := serve(employeeID, http.MethodPost, "/complaints/", map[string]string{"description": "d"})

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should reject an unknown status on update", func() {
		c := create("Fridge alarm")

		w := serve(managerID, http.MethodPut, "/complaints/"+strconv.FormatInt(c.ID, 10), map[string]string{"status": "LOST"})

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should forbid employees from updating", func() {
		c := create("Fridge alarm")

		w := serve(colleagueID, http.MethodPut, "/complaints/"+strconv.FormatInt(c.ID, 10), complaint.UpdateComplaintRequest{Status: complaint.StatusClosed})

		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should filter by status from the path", func() {
		create("one")
		create("two")

		w := serve(managerID, http.MethodGet, "/complaints/status/PENDING?size=1", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp complaint.ListResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Total).To(Equal(int64(2)))
		Expect(resp.Complaints).To(HaveLen(1))
	})

	It("should report statistics with every status", func() {
		create("one")

		w := serve(managerID, http.MethodGet, "/complaints/statistics", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		var stats map[string]int64
		Expect(json.NewDecoder(w.Body).Decode(&stats)).To(Succeed())
		Expect(stats).To(HaveKeyWithValue("PENDING", int64(1)))
		Expect(stats).To(HaveKeyWithValue("REJECTED", int64(0)))
	})

	It("should answer 403 for an admin without a pharmacy on statistics", func() {
		w := serve(adminID, http.MethodGet, "/complaints/statistics", nil)

		Expect(w.Code).To(Equal(http.StatusForbidden))
	})
})
