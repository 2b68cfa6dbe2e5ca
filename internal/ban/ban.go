package ban

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("ban not found")

const DateLayout = "2006-01-02"

type Ban struct {
	ID           string    `json:"id"`
	StudentEmail string    `json:"studentEmail"`
	FromDate     string    `json:"fromDate"`
	TillDate     string    `json:"tillDate"`
	Reason       string    `json:"reason,omitempty"`
	BannedBy     string    `json:"bannedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Standing is the outcome of evaluating the authoritative ban for a student.
type Standing struct {
	Blocked bool   `json:"blocked"`
	Stale   bool   `json:"stale,omitempty"`
	BanID   string `json:"banId,omitempty"`
	From    string `json:"from,omitempty"`
	Till    string `json:"till,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Evaluate decides whether b blocks new bookings on today. Both ends of the
// range are inclusive. A ban past its till date is stale and never blocks;
// deleting it is left to the sweeper.
func Evaluate(b *Ban, today time.Time) Standing {
	if b == nil {
		return Standing{}
	}
	day := today.Format(DateLayout)
	st := Standing{BanID: b.ID, From: b.FromDate, Till: b.TillDate, Reason: b.Reason}
	switch {
	case day > b.TillDate:
		return Standing{Stale: true, BanID: b.ID}
	case day < b.FromDate:
		return st
	default:
		st.Blocked = true
		return st
	}
}

// Latest picks the most recently created ban; it is authoritative when a
// student has several.
func Latest(bans []Ban) *Ban {
	var out *Ban
	for i := range bans {
		if out == nil || bans[i].CreatedAt.After(out.CreatedAt) {
			out = &bans[i]
		}
	}
	return out
}
