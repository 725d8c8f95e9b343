package middleware

import (
	"net/http"

	"github.com/teryaq/pharmacy-backend/internal"
)

// Anonymous marks public routes as unauthenticated so writes they trigger are attributed
// to the system user.
func Anonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := internal.AuthenticationFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		ctx := internal.ContextWithAuthentication(r.Context(), internal.NewAnonymousAuthentication())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
