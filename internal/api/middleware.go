package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"outingpass/internal/directory"
	"outingpass/pkg/config"
	"outingpass/pkg/session"
)

// StaffLookup reloads a staff profile on every request so role and hostel
// scope always come from the directory, never from the token.
type StaffLookup interface {
	GetStaffByUsername(ctx context.Context, username string) (*directory.Staff, error)
}

func bearer(r *http.Request) string {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}

// StudentAuth validates a student session token.
//
// Expected header:
// - Authorization: Bearer <JWT>
func StudentAuth(cfg config.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := session.Verify(bearer(r), cfg.SessionSecret, time.Now())
			if err != nil || s.Kind != session.KindStudent {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session token")
				return
			}
			// The domain is checked at sign-in; check again in case the policy changed.
			if cfg.AllowedEmailDomain != "" && !strings.HasSuffix(strings.ToLower(s.Subject), strings.ToLower(cfg.AllowedEmailDomain)) {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "email domain not allowed")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithStudent(r.Context(), &Student{Email: s.Subject, Name: s.Name})))
		})
	}
}

// StaffAuth validates a staff session token and attaches the current profile.
func StaffAuth(cfg config.AuthConfig, staff StaffLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := session.Verify(bearer(r), cfg.SessionSecret, time.Now())
			if err != nil || s.Kind != session.KindStaff {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session token")
				return
			}
			profile, err := staff.GetStaffByUsername(r.Context(), s.Subject)
			if err != nil {
				if errors.Is(err, directory.ErrNotFound) {
					WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown staff account")
					return
				}
				log.Printf("staff auth lookup failed user=%s err=%v", s.Subject, err)
				WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithStaff(r.Context(), profile)))
		})
	}
}

// RequireRole must run after StaffAuth.
func RequireRole(roles ...directory.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !StaffFromContext(r.Context()).HasRole(roles...) {
				WriteError(w, http.StatusForbidden, "FORBIDDEN", "not allowed for this role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
