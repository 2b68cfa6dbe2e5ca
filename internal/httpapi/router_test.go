package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"outingpass/pkg/config"
)

func testRouter() http.Handler {
	cfg := config.Config{
		Auth:           config.AuthConfig{SessionSecret: "secret", AllowedEmailDomain: "@srmist.edu.in"},
		AllowedOrigins: []string{"http://localhost:5173"},
		MetricsEnabled: true,
		TimeZone:       "UTC",
	}
	return NewRouter(Dependencies{Cfg: cfg})
}

func TestRouter_PublicEndpoints(t *testing.T) {
	h := testRouter()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Fatalf("metrics: %d", rec.Code)
	}
}

func TestRouter_ProtectedRoutesRequireSession(t *testing.T) {
	h := testRouter()
	routes := []struct{ method, path string }{
		{http.MethodGet, "/v1/me/bookings"},
		{http.MethodPost, "/v1/me/bookings"},
		{http.MethodGet, "/v1/me/ban"},
		{http.MethodGet, "/v1/bookings"},
		{http.MethodGet, "/v1/bookings/export.xlsx"},
		{http.MethodPost, "/v1/bookings/abc/transitions"},
		{http.MethodPost, "/v1/gate/verify"},
		{http.MethodGet, "/v1/bans"},
		{http.MethodGet, "/v1/slots"},
		{http.MethodPost, "/v1/admin/staff"},
	}
	for _, rt := range routes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", rt.method, rt.path, rec.Code)
		}
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := testRouter()
	req := httptest.NewRequest(http.MethodOptions, "/v1/auth/staff", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}
}
