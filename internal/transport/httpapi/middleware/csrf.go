package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// CSRF token names on the wire. The token is issued as a cookie and must be
// echoed back as a request header on every mutating request.
const (
	CSRFCookieName = "csrftoken"
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRF returns a double-submit CSRF middleware: safe requests are issued a
// token cookie when they have none; unsafe requests must carry a header
// matching the cookie.
func CSRF() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CSRFCookieName)

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				if err != nil || cookie.Value == "" {
					http.SetCookie(w, &http.Cookie{
						Name:     CSRFCookieName,
						Value:    uuid.NewString(),
						Path:     "/",
						SameSite: http.SameSiteLaxMode,
					})
				}
			default:
				if err != nil || cookie.Value == "" || r.Header.Get(CSRFHeaderName) != cookie.Value {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusForbidden)
					w.Write([]byte(`{"error":"CSRF token missing or incorrect.","success":false}`))
					return
				}
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
