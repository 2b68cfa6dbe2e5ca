package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"outingpass/internal/api"
	"outingpass/internal/directory"
	"outingpass/pkg/config"
	"outingpass/pkg/session"
)

type StaffAuthenticator interface {
	Authenticate(ctx context.Context, username, password string) (*directory.Staff, error)
}

type Handlers struct {
	Cfg      config.AuthConfig
	Verifier IDTokenVerifier
	Staff    StaffAuthenticator
}

type sessionResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Kind      session.Kind     `json:"kind"`
	Email     string           `json:"email,omitempty"`
	Name      string           `json:"name,omitempty"`
	Staff     *directory.Staff `json:"staff,omitempty"`
}

func (h Handlers) issue(w http.ResponseWriter, s session.Session) (string, time.Time, bool) {
	now := time.Now()
	tok, err := session.Issue(h.Cfg.SessionSecret, s, h.Cfg.SessionTTL, now)
	if err != nil {
		log.Printf("session issue failed subject=%s err=%v", s.Subject, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return "", time.Time{}, false
	}
	return tok, now.Add(h.Cfg.SessionTTL), true
}

type GoogleRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// GoogleLogin signs a student in with a Google ID token from the
// institution's domain.
func (h Handlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req GoogleRequest
	if !api.DecodeAndValidate(w, r, &req) {
		return
	}

	id, err := h.Verifier.Verify(req.IDToken)
	if err != nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid google id token")
		return
	}
	email := strings.ToLower(strings.TrimSpace(id.Email))
	if !AllowedEmail(email, h.Cfg.AllowedEmailDomain) {
		log.Printf("student sign-in rejected email=%s reason=domain", email)
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", ErrDomain.Error())
		return
	}

	tok, exp, ok := h.issue(w, session.Session{Subject: email, Kind: session.KindStudent, Name: id.Name})
	if !ok {
		return
	}
	api.WriteJSON(w, http.StatusOK, sessionResponse{Token: tok, ExpiresAt: exp, Kind: session.KindStudent, Email: email, Name: id.Name})
}

type StaffRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

// StaffLogin signs in wardens, administrators and gate kiosks.
func (h Handlers) StaffLogin(w http.ResponseWriter, r *http.Request) {
	var req StaffRequest
	if !api.DecodeAndValidate(w, r, &req) {
		return
	}

	s, err := h.Staff.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, directory.ErrBadCredentials) {
			api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid username or password")
			return
		}
		log.Printf("staff login failed user=%s err=%v", req.Username, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	tok, exp, ok := h.issue(w, session.Session{Subject: s.Username, Kind: session.KindStaff, Name: s.Username})
	if !ok {
		return
	}
	log.Printf("staff login user=%s role=%s", s.Username, s.Role)
	api.WriteJSON(w, http.StatusOK, sessionResponse{Token: tok, ExpiresAt: exp, Kind: session.KindStaff, Email: s.Email, Staff: s})
}
