package gate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"outingpass/internal/booking"
	"outingpass/internal/metrics"
)

var (
	ErrInvalidCode   = errors.New("invalid or already used code")
	ErrMalformedCode = errors.New("code must be 6 digits")
)

// CodeStore resolves a one-time code at most once.
type CodeStore interface {
	ConsumeCode(ctx context.Context, code, actor string, at time.Time) (*booking.Booking, error)
}

// Pass is what the kiosk shows after a successful verification.
type Pass struct {
	BookingID  string    `json:"bookingId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	HostelName string    `json:"hostelName"`
	RoomNumber string    `json:"roomNumber"`
	OutDate    string    `json:"outDate"`
	OutTime    string    `json:"outTime"`
	InDate     string    `json:"inDate"`
	InTime     string    `json:"inTime"`
	Reason     string    `json:"reason"`
	VerifiedAt time.Time `json:"verifiedAt"`
}

type Service struct {
	Codes CodeStore
	Now   func() time.Time
}

// Verify consumes code and returns the outing it belonged to.
func (s Service) Verify(ctx context.Context, code, actor string) (*Pass, error) {
	code = strings.TrimSpace(code)
	if !booking.ValidCode(code) {
		metrics.CodeVerifications.WithLabelValues("malformed").Inc()
		return nil, ErrMalformedCode
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	b, err := s.Codes.ConsumeCode(ctx, code, actor, now)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			metrics.CodeVerifications.WithLabelValues("invalid").Inc()
			return nil, ErrInvalidCode
		}
		metrics.CodeVerifications.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("consume code: %w", err)
	}

	metrics.CodeVerifications.WithLabelValues("verified").Inc()
	log.Printf("gate code verified booking=%s actor=%s", b.ID, actor)
	return &Pass{
		BookingID:  b.ID,
		Name:       b.Name,
		Email:      b.Email,
		HostelName: b.HostelName,
		RoomNumber: b.RoomNumber,
		OutDate:    b.OutDate,
		OutTime:    b.OutTime,
		InDate:     b.InDate,
		InTime:     b.InTime,
		Reason:     b.Reason,
		VerifiedAt: now,
	}, nil
}
