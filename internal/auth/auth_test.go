package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"outingpass/internal/directory"
	"outingpass/pkg/config"
	"outingpass/pkg/session"
)

func TestAllowedEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"ab1234@srmist.edu.in", true},
		{"AB1234@SRMIST.EDU.IN", true},
		{"ab1234@gmail.com", false},
		{"ab1234@evil-srmist.edu.in", false},
		{"@srmist.edu.in", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := AllowedEmail(tt.email, "@srmist.edu.in"); got != tt.want {
			t.Fatalf("AllowedEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
	if AllowedEmail("ab1234@srmist.edu.in", "") {
		t.Fatalf("empty suffix must allow nothing")
	}
}

type stubVerifier struct {
	id  *Identity
	err error
}

func (s stubVerifier) Verify(string) (*Identity, error) { return s.id, s.err }

type stubStaff struct{ hash string }

func (s stubStaff) Authenticate(_ context.Context, username, password string) (*directory.Staff, error) {
	if username != "warden1" || directory.CheckPassword(s.hash, password) != nil {
		return nil, directory.ErrBadCredentials
	}
	return &directory.Staff{Username: "warden1", Role: directory.RoleWarden, PasswordHash: s.hash}, nil
}

var cfg = config.AuthConfig{SessionSecret: "secret", SessionTTL: time.Hour, AllowedEmailDomain: "@srmist.edu.in"}

func call(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestGoogleLogin(t *testing.T) {
	h := Handlers{Cfg: cfg, Verifier: stubVerifier{id: &Identity{Email: "AB1234@srmist.edu.in", Name: "Asha"}}}
	rec := call(h.GoogleLogin, `{"idToken":"tok"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	s, err := session.Verify(resp.Token, cfg.SessionSecret, time.Now())
	if err != nil || s.Kind != session.KindStudent || s.Subject != "ab1234@srmist.edu.in" {
		t.Fatalf("unexpected session %+v (%v)", s, err)
	}

	h.Verifier = stubVerifier{id: &Identity{Email: "someone@gmail.com"}}
	if rec := call(h.GoogleLogin, `{"idToken":"tok"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign domain, got %d", rec.Code)
	}

	h.Verifier = stubVerifier{err: ErrInvalidIDToken}
	if rec := call(h.GoogleLogin, `{"idToken":"tok"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}
	if rec := call(h.GoogleLogin, `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing token, got %d", rec.Code)
	}
}

func TestStaffLogin(t *testing.T) {
	hash, err := directory.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h := Handlers{Cfg: cfg, Staff: stubStaff{hash: hash}}

	rec := call(h.StaffLogin, `{"username":"warden1","password":"correct horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), hash) {
		t.Fatalf("password hash must not be returned")
	}

	rec = call(h.StaffLogin, `{"username":"warden1","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
