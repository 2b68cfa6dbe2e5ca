package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9090")
	t.Setenv("CONFIRM_WINDOW", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg := Load()
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.HTTPAddr)
	}
	if cfg.Guard.ConfirmWindow != 300*time.Millisecond {
		t.Fatalf("expected 300ms confirm window, got %s", cfg.Guard.ConfirmWindow)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("expected 2 default origins, got %v", cfg.AllowedOrigins)
	}
}

func TestEnvList_TrimsAndSkipsEmpty(t *testing.T) {
	t.Setenv("X_LIST", " https://a.example , ,http://b.example ")
	got := envList("X_LIST", "")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "http://b.example" {
		t.Fatalf("unexpected list: %#v", got)
	}
}

func TestEnvDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("X_DUR", "soon")
	if got := envDuration("X_DUR", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestLocation_UnknownZoneFallsBackToUTC(t *testing.T) {
	if got := (Config{TimeZone: "Mars/Olympus"}).Location(); got != time.UTC {
		t.Fatalf("expected UTC, got %s", got)
	}
	if got := (Config{TimeZone: "UTC"}).Location(); got.String() != "UTC" {
		t.Fatalf("expected UTC zone, got %s", got)
	}
}
