package server

import (
	"fmt"
	"net/http"
	"time"
)

const authRealm = `Basic realm="alexandria", charset="UTF-8"`

// withAuth asks for the UI password when one is configured. The user name is ignored.
// Clients sending too many wrong passwords are answered 429 without a bcrypt check.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.verifier == nil || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		now := time.Now()
		client := requestClientIP(r)
		if !s.authLimiter.Allow(client, now) {
			s.writeErrorReq(w, r, http.StatusTooManyRequests,
				makeAPIError(http.StatusTooManyRequests, "resource_exhausted", ErrCodeResourceExhausted,
					fmt.Errorf("too many failed password attempts; retry later")))
			return
		}

		_, password, ok := r.BasicAuth()
		if ok && s.verifier.Verify(password) {
			s.authLimiter.Reset(client)
			next.ServeHTTP(w, r)
			return
		}
		if ok {
			s.authLimiter.RegisterFailure(client, now)
		}
		w.Header().Set("WWW-Authenticate", authRealm)
		s.writeErrorReq(w, r, http.StatusUnauthorized,
			makeAPIError(http.StatusUnauthorized, "unauthorized", ErrCodeUnauthorized, fmt.Errorf("password required")))
	})
}
