package api

import (
	"net/http"
	"strings"
	"time"

	"roomstatus/pkg/config"
	"roomstatus/pkg/staffauth"
)

// StaffAuth identifies the staff member behind a request.
//
// Expected header:
// - Authorization: Bearer <JWT> signed with STAFF_JWT_SECRET
//
// Outside prod, a request without a valid token may name the actor with
// X-Staff-Id (and optionally X-Staff-Name) to keep local testing simple.
func StaffAuth(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				staff, err := staffauth.Verify(strings.TrimSpace(authz[7:]), cfg.Auth.StaffTokenSecret, time.Now())
				if err == nil {
					next.ServeHTTP(w, r.WithContext(WithStaff(r.Context(), staff)))
					return
				}
				if cfg.IsProd() || devStaff(r) == nil {
					WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid staff token")
					return
				}
			}

			if !cfg.IsProd() {
				if staff := devStaff(r); staff != nil {
					next.ServeHTTP(w, r.WithContext(WithStaff(r.Context(), staff)))
					return
				}
			}

			WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing staff identity")
		})
	}
}

func devStaff(r *http.Request) *staffauth.Staff {
	id := strings.TrimSpace(r.Header.Get("X-Staff-Id"))
	if id == "" {
		return nil
	}
	return &staffauth.Staff{ID: id, Name: strings.TrimSpace(r.Header.Get("X-Staff-Name"))}
}
