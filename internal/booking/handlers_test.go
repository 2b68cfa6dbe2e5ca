package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"outingpass/internal/api"
	"outingpass/internal/directory"
	"outingpass/internal/events"
	"outingpass/internal/guard"
)

type noEvents struct{}

func (noEvents) ListByBooking(context.Context, string) ([]events.Event, error) {
	return []events.Event{{ID: "e1", EventType: events.TypeCreated}}, nil
}

func staffRouter(h Handlers, staff *directory.Staff) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(api.WithStaff(req.Context(), staff)))
		})
	})
	r.Get("/bookings/{id}", h.Get)
	r.Get("/bookings/{id}/events", h.Events)
	r.Post("/bookings/{id}/transitions", h.Transition)
	return r
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env api.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, rec.Body.String())
	}
	return env.Error.Code
}

func TestTransitionHandler_TwoPressConfirm(t *testing.T) {
	store := newMemStore(sampleBooking())
	g := &guard.Guard{
		Confirm:      guard.NewMemoryConfirmer(time.Minute),
		Lock:         guard.NewMemoryLock(time.Minute),
		ReleaseDelay: 0,
	}
	h := Handlers{Service: newService(store, &recordingNotifier{}), Guard: g, Timeline: noEvents{}}
	warden := &directory.Staff{Username: "warden1", Role: directory.RoleWarden, Hostels: []string{"paari"}}
	srv := staffRouter(h, warden)

	rec := post(t, srv, "/bookings/b1/transitions", `{"status":"confirmed"}`)
	if rec.Code != http.StatusAccepted || errorCode(t, rec) != "CONFIRMATION_REQUIRED" {
		t.Fatalf("expected 202 CONFIRMATION_REQUIRED, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.applied != 0 {
		t.Fatalf("single press must not transition")
	}

	rec = post(t, srv, "/bookings/b1/transitions", `{"status":"confirmed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res TransitionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Booking.Status != StatusConfirmed || !ValidCode(res.Booking.OTP) || !res.Notification.Sent {
		t.Fatalf("unexpected result: %+v", res)
	}
	if store.applied != 1 {
		t.Fatalf("expected exactly one transition, got %d", store.applied)
	}
}

func TestTransitionHandler_ErrorMapping(t *testing.T) {
	rejected := sampleBooking()
	rejected.Status = StatusRejected
	store := newMemStore(rejected)
	h := Handlers{Service: newService(store, nil)}
	srv := staffRouter(h, &directory.Staff{Username: "admin", Role: directory.RoleSuperadmin})

	rec := post(t, srv, "/bookings/b1/transitions", `{"status":"still_out"}`)
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "INVALID_STATE_TRANSITION" {
		t.Fatalf("expected 409 INVALID_STATE_TRANSITION, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = post(t, srv, "/bookings/nope/transitions", `{"status":"still_out"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = post(t, srv, "/bookings/b1/transitions", `{"status":"waiting"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown target, got %d", rec.Code)
	}
}

func TestTransitionHandler_RejectWithoutReason(t *testing.T) {
	h := Handlers{Service: newService(newMemStore(sampleBooking()), nil)}
	srv := staffRouter(h, &directory.Staff{Username: "admin", Role: directory.RoleSuperadmin})

	rec := post(t, srv, "/bookings/b1/transitions", `{"status":"rejected"}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "VALIDATION_FAILED" {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestStaffHandlers_HostelScope(t *testing.T) {
	h := Handlers{Service: newService(newMemStore(sampleBooking()), nil), Timeline: noEvents{}}
	other := &directory.Staff{Username: "w2", Role: directory.RoleWarden, Hostels: []string{"Kalpana"}}
	srv := staffRouter(h, other)

	for _, path := range []string{"/bookings/b1", "/bookings/b1/events"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", path, rec.Code)
		}
	}
	rec := post(t, srv, "/bookings/b1/transitions", `{"status":"still_out"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for transition, got %d", rec.Code)
	}

	own := staffRouter(h, &directory.Staff{Username: "w1", Role: directory.RoleWarden, Hostels: []string{"Paari"}})
	rec = httptest.NewRecorder()
	own.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings/b1/events", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateHandler_BannedAndActive(t *testing.T) {
	store := newMemStore()
	svc := newService(store, nil)
	svc.Students = studentMap{"ab1234@srmist.edu.in": {HostelName: "Paari", ParentEmail: "mom@example.com"}}
	h := Handlers{Service: svc}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			st := &api.Student{Email: "ab1234@srmist.edu.in", Name: "Asha"}
			next.ServeHTTP(w, req.WithContext(api.WithStudent(req.Context(), st)))
		})
	})
	r.Post("/me/bookings", h.Create)

	body := `{"outDate":"2024-05-05","outTime":"10:00","inDate":"2024-05-05","inTime":"18:00","reason":"Dentist"}`
	rec := post(t, r, "/me/bookings", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = post(t, r, "/me/bookings", body)
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "ACTIVE_BOOKING_EXISTS" {
		t.Fatalf("expected ACTIVE_BOOKING_EXISTS, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = post(t, r, "/me/bookings", `{"outDate":"05/05/2024","outTime":"10:00","inDate":"2024-05-05","inTime":"18:00","reason":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}
}
