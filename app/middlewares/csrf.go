package middlewares

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/gorilla/csrf"
	"github.com/unrolled/render"
)

// CSRF protects requests that authenticate through the session cookie. Requests without a
// session cookie, or carrying a bearer token, cannot be forged by a browser and skip the check.
func CSRF(authKey []byte, secure bool, store sessions.SessionStore, rnd *render.Render) func(http.Handler) http.Handler {
	protect := csrf.Protect(
		authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.RequestHeader("X-CSRFToken"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason := "CSRF token missing or incorrect."
			if err := csrf.FailureReason(r); err != nil {
				reason = err.Error()
			}
			rnd.JSON(w, http.StatusForbidden, map[string]string{"detail": "CSRF Failed: " + reason})
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "" || !store.HasSession(r) {
				r = csrf.UnsafeSkipCheck(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}
