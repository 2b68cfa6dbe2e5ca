package listing

import (
	"sort"
	"strings"
	"time"

	"outingpass/internal/booking"
)

// Filter narrows the staff board. Zero values mean "no restriction".
type Filter struct {
	Status  booking.Status
	Hostels []string
	// From and To bound out_date inclusively (YYYY-MM-DD).
	From  string
	To    string
	Query string
}

// Row is a booking with its derived presentation flags.
type Row struct {
	booking.Booking
	Overdue bool `json:"overdue"`
	Anomaly bool `json:"anomaly,omitempty"`
}

// Apply filters items and, for the still_out tab, moves overdue bookings to
// the front while keeping the incoming order otherwise.
func Apply(items []booking.Booking, f Filter, now time.Time) []Row {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Row, 0, len(items))
	for _, b := range items {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.Hostels != nil && !inHostels(b.HostelName, f.Hostels) {
			continue
		}
		if f.From != "" && b.OutDate < f.From {
			continue
		}
		if f.To != "" && b.OutDate > f.To {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(b.Email), q) {
			continue
		}
		out = append(out, Row{Booking: b, Overdue: b.Overdue(now), Anomaly: b.SameDayInverted()})
	}

	if f.Status == booking.StatusStillOut {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Overdue && !out[j].Overdue
		})
	}
	return out
}

func inHostels(h string, hostels []string) bool {
	for _, x := range hostels {
		if strings.EqualFold(x, h) {
			return true
		}
	}
	return false
}
