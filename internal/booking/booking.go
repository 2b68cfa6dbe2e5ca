package booking

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrReasonRequired    = errors.New("rejection reason is required")
	ErrConflict          = errors.New("booking was changed concurrently")
	ErrActiveBooking     = errors.New("an active booking already exists")
	ErrNotDeletable      = errors.New("only waiting bookings can be deleted")
	ErrCodeSpace         = errors.New("could not allocate a unique code")
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Booking struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	HostelName      string     `json:"hostelName"`
	RoomNumber      string     `json:"roomNumber"`
	OutDate         string     `json:"outDate"`
	OutTime         string     `json:"outTime"`
	InDate          string     `json:"inDate"`
	InTime          string     `json:"inTime"`
	Reason          string     `json:"reason"`
	ParentEmail     string     `json:"parentEmail"`
	ParentPhone     string     `json:"parentPhone"`
	Status          Status     `json:"status"`
	OTP             string     `json:"otp,omitempty"`
	OTPUsed         bool       `json:"otpUsed"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	HandledBy       string     `json:"handledBy,omitempty"`
	HandledAt       *time.Time `json:"handledAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// OutAt and InAt interpret the requested window in loc.
func (b *Booking) OutAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, b.OutDate+" "+b.OutTime, loc)
}

func (b *Booking) InAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, b.InDate+" "+b.InTime, loc)
}

// SameDayInverted flags a same-day window whose out time is after its in
// time. Such rows are data-entry mistakes, not lateness.
func (b *Booking) SameDayInverted() bool {
	return b.OutDate == b.InDate && b.OutTime > b.InTime
}

// Overdue reports whether a still-out booking is past its requested return.
func (b *Booking) Overdue(now time.Time) bool {
	if b.Status != StatusStillOut || b.SameDayInverted() {
		return false
	}
	in, err := b.InAt(now.Location())
	if err != nil {
		return false
	}
	return now.After(in)
}
