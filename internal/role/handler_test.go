package role_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/core/operation"
	"github.com/teryaq/pharmacy-backend/internal/role"
	"github.com/teryaq/pharmacy-backend/internal/transport"
)

var _ = Describe("Role Handler", func() {
	var (
		repo   *MockRepository
		router chi.Router
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		service := role.NewService(repo, operation.Decorators{}, silentLogger())
		handler := role.NewHandler(transport.NewBaseHandler(silentLogger()), service)

		router = chi.NewRouter()
		router.Get("/roles", handler.ListRoles)
		router.Post("/roles", handler.CreateRole)
		router.Get("/roles/{id}", handler.GetRole)
		router.Delete("/roles/{id}", handler.DeleteRole)
		router.Get("/roles/{id}/permissions", handler.GetRolePermissions)
		router.Put("/roles/{id}/permissions", handler.ReplacePermissions)
		router.Post("/permissions", handler.CreatePermission)
	})

	serve := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf).WithContext(asAdmin())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decodeError := func(w *httptest.ResponseRecorder) map[string]interface{} {
		var body map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body["error"]
	}

	It("should create and fetch a role", func() {
		perm := repo.AddPermission("REPORT_VIEW")

		w := serve(http.MethodPost, "/roles", role.CreateRoleRequest{Name: "ANALYST", PermissionIDs: []int64{perm.ID}})
		Expect(w.Code).To(Equal(http.StatusCreated))
		var created role.Role
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())

		w = serve(http.MethodGet, "/roles/"+itoa(created.ID)+"/permissions", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp role.PermissionsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Permissions).To(HaveLen(1))
		Expect(resp.Permissions[0].Name).To(Equal("REPORT_VIEW"))
	})

	It("should reject an invalid body with field errors", func() {
		w := serve(http.MethodPost, "/roles", map[string]string{"description": "no name"})

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decodeError(w)["code"]).To(Equal(string(internal.ErrCodeValidationFailed)))
	})

	It("should reject a malformed id", func() {
		w := serve(http.MethodGet, "/roles/abc", nil)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 404 for a missing role", func() {
		w := serve(http.MethodGet, "/roles/9999", nil)

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(decodeError(w)["code"]).To(Equal(string(internal.ErrCodeRoleNotFound)))
	})

	It("should answer 403 when deleting a system role", func() {
		system := repo.AddRole("PLATFORM_ADMIN", true)

		w := serve(http.MethodDelete, "/roles/"+itoa(system.ID), nil)

		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should answer 204 when deleting a custom role", func() {
		custom := repo.AddRole("ANALYST", false)

		w := serve(http.MethodDelete, "/roles/"+itoa(custom.ID), nil)

		Expect(w.Code).To(Equal(http.StatusNoContent))
	})

	It("should answer 409 for a duplicate permission", func() {
		repo.AddPermission("REPORT_VIEW")

		w := serve(http.MethodPost, "/permissions", role.CreatePermissionRequest{Name: "REPORT_VIEW"})

		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("should list roles", func() {
		repo.AddRole("B_ROLE", false)
		repo.AddRole("A_ROLE", false)

		w := serve(http.MethodGet, "/roles", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp role.RolesResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Roles).To(HaveLen(2))
		Expect(resp.Roles[0].Name).To(Equal("A_ROLE"))
	})
})
