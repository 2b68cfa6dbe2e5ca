package gate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"outingpass/internal/api"
	"outingpass/internal/booking"
	"outingpass/internal/directory"
)

type memCodes struct {
	mu   sync.Mutex
	rows map[string]*booking.Booking
}

func (m *memCodes) ConsumeCode(_ context.Context, code, _ string, _ time.Time) (*booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.rows {
		if b.OTP == code && !b.OTPUsed {
			b.OTPUsed = true
			cp := *b
			return &cp, nil
		}
	}
	return nil, booking.ErrNotFound
}

func newCodes() *memCodes {
	return &memCodes{rows: map[string]*booking.Booking{
		"b1": {ID: "b1", Name: "Asha", Email: "ab1234@srmist.edu.in", HostelName: "Paari",
			OutDate: "2024-05-01", InDate: "2024-05-01", Status: booking.StatusConfirmed, OTP: "482913"},
	}}
}

func TestVerify_CodeResolvesOnce(t *testing.T) {
	svc := Service{Codes: newCodes()}
	ctx := context.Background()

	pass, err := svc.Verify(ctx, " 482913 ", "gate1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if pass.BookingID != "b1" || pass.Name != "Asha" || pass.HostelName != "Paari" {
		t.Fatalf("unexpected pass: %+v", pass)
	}

	if _, err := svc.Verify(ctx, "482913", "gate1"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode on reuse, got %v", err)
	}
	if _, err := svc.Verify(ctx, "000000", "gate1"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode for unknown code, got %v", err)
	}
	if _, err := svc.Verify(ctx, "48291", "gate1"); !errors.Is(err, ErrMalformedCode) {
		t.Fatalf("expected ErrMalformedCode, got %v", err)
	}
}

func TestVerify_ConcurrentSubmissionsResolveOnce(t *testing.T) {
	svc := Service{Codes: newCodes()}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Verify(context.Background(), "482913", "gate1"); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if ok != 1 {
		t.Fatalf("expected exactly one successful verification, got %d", ok)
	}
}

func TestVerifyHandler(t *testing.T) {
	h := Handlers{Service: Service{Codes: newCodes()}}
	kiosk := &directory.Staff{Username: "gate1", Role: directory.RoleGate}

	call := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/gate/verify", strings.NewReader(body))
		req = req.WithContext(api.WithStaff(req.Context(), kiosk))
		rec := httptest.NewRecorder()
		h.Verify(rec, req)
		return rec
	}

	rec := call(`{"code":"482913"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var pass Pass
	if err := json.Unmarshal(rec.Body.Bytes(), &pass); err != nil || pass.BookingID != "b1" {
		t.Fatalf("unexpected body %s (%v)", rec.Body.String(), err)
	}

	if rec := call(`{"code":"482913"}`); rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "INVALID_CODE") {
		t.Fatalf("expected 404 INVALID_CODE, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := call(`{"code":"abc"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
