package access_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/access"
	"github.com/teryaq/pharmacy-backend/internal/observability"
)

var _ = Describe("Guard", func() {
	var (
		guard   *access.Guard
		reached bool
	)

	BeforeEach(func() {
		reached = false
		loader := NewMockLoader(&access.Subject{
			ID:              10,
			RoleName:        access.RolePharmacyManager,
			RolePermissions: []string{access.PermEmployeeRead},
		})
		guard = access.NewGuard(access.NewEvaluator(loader, silentLogger()), observability.NewMetrics(), silentLogger())
	})

	serve := func(mw func(http.Handler) http.Handler, ctx context.Context) *httptest.ResponseRecorder {
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			w.WriteHeader(http.StatusNoContent)
		}))
		req := httptest.NewRequest(http.MethodGet, "/employees", nil).WithContext(ctx)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	errorCode := func(rr *httptest.ResponseRecorder) string {
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())
		return body.Error.Code
	}

	It("should pass a granted permission through", func() {
		rr := serve(guard.RequirePermission(access.PermEmployeeRead), asUser(10))

		Expect(rr.Code).To(Equal(http.StatusNoContent))
		Expect(reached).To(BeTrue())
	})

	It("should answer 403 for a missing permission", func() {
		rr := serve(guard.RequirePermission(access.PermUserCreate), asUser(10))

		Expect(rr.Code).To(Equal(http.StatusForbidden))
		Expect(errorCode(rr)).To(Equal(string(internal.ErrCodeAccessDenied)))
		Expect(reached).To(BeFalse())
	})

	It("should answer 401 without authentication", func() {
		rr := serve(guard.RequireRole(access.RolePlatformAdmin), context.Background())

		Expect(rr.Code).To(Equal(http.StatusUnauthorized))
		Expect(errorCode(rr)).To(Equal(string(internal.ErrCodeUnauthenticated)))
	})

	It("should answer 500 when the authenticated user vanished", func() {
		rr := serve(guard.RequirePermission(access.PermEmployeeRead), asUser(404))

		Expect(rr.Code).To(Equal(http.StatusInternalServerError))
		Expect(errorCode(rr)).To(Equal(string(internal.ErrCodeCurrentUserMissing)))
	})

	It("should check roles", func() {
		Expect(serve(guard.RequireRole(access.RolePharmacyManager), asUser(10)).Code).To(Equal(http.StatusNoContent))
		Expect(serve(guard.RequireRole(access.RolePlatformAdmin), asUser(10)).Code).To(Equal(http.StatusForbidden))
	})

	It("should accept any of several permissions", func() {
		rr := serve(guard.RequireAnyPermission(access.PermUserRead, access.PermEmployeeRead), asUser(10))

		Expect(rr.Code).To(Equal(http.StatusNoContent))
	})
})
