package listing

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"outingpass/internal/api"
	"outingpass/internal/booking"
	"outingpass/internal/export"
)

type Lister interface {
	List(ctx context.Context, q booking.ListQuery) ([]booking.Booking, error)
}

type Handlers struct {
	Bookings Lister
	Location *time.Location
	Now      func() time.Time
}

func (h Handlers) now() time.Time {
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	if h.Location != nil {
		now = now.In(h.Location)
	}
	return now
}

// rows loads and filters the board for the signed-in staff member. Hostel
// scope comes from the directory profile, never from the query string alone.
func (h Handlers) rows(w http.ResponseWriter, r *http.Request) ([]Row, bool) {
	staff := api.StaffFromContext(r.Context())
	if staff == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing staff identity")
		return nil, false
	}

	qs := r.URL.Query()
	f := Filter{
		From:    qs.Get("from"),
		To:      qs.Get("to"),
		Query:   qs.Get("q"),
		Hostels: staff.Scope(),
	}
	if s := qs.Get("status"); s != "" {
		st, err := booking.ParseStatus(s)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status")
			return nil, false
		}
		f.Status = st
	}
	for _, d := range []string{f.From, f.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(booking.DateLayout, d); err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "dates must match 2006-01-02")
			return nil, false
		}
	}
	if hostel := qs.Get("hostel"); hostel != "" {
		if !staff.CanActOn(hostel) {
			api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "hostel not assigned to you")
			return nil, false
		}
		f.Hostels = []string{hostel}
	}

	items, err := h.Bookings.List(r.Context(), booking.ListQuery{Status: f.Status, Hostels: f.Hostels})
	if err != nil {
		log.Printf("booking list failed user=%s err=%v", staff.Username, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return nil, false
	}
	return Apply(items, f, h.now()), true
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.rows(w, r)
	if !ok {
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": rows})
}

func (h Handlers) Export(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.rows(w, r)
	if !ok {
		return
	}

	records := make([]export.Record, len(rows))
	for i, row := range rows {
		records[i] = export.Record{Booking: row.Booking, Overdue: row.Overdue}
	}
	f, err := export.Workbook(records)
	if err != nil {
		log.Printf("export failed err=%v", err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	defer f.Close()

	name := fmt.Sprintf("outings-%s.xlsx", h.now().Format("20060102-1504"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		log.Printf("export write failed err=%v", err)
	}
}
