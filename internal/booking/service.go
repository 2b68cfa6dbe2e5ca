package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"outingpass/internal/ban"
	"outingpass/internal/directory"
	"outingpass/internal/metrics"
)

// Store is the persistence the booking service needs. The Postgres
// Repository implements it; tests use an in-memory fake.
type Store interface {
	Get(ctx context.Context, id string) (*Booking, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	// ApplyTransition persists b only if the stored status still equals prev.
	ApplyTransition(ctx context.Context, prev Status, b *Booking, actor string) error
	Insert(ctx context.Context, b *Booking) error
	ActiveFor(ctx context.Context, email string) (*Booking, error)
	ListByEmail(ctx context.Context, email string) ([]Booking, error)
	DeleteWaiting(ctx context.Context, id, email string) error
	// RecordNotification appends the parent email outcome to the timeline.
	RecordNotification(ctx context.Context, bookingID, actor string, n Notification, at time.Time) error
}

// Notifier delivers the parent email for a handled booking.
type Notifier interface {
	Notify(ctx context.Context, b *Booking, actor Actor) error
}

type StudentLookup interface {
	GetStudent(ctx context.Context, email string) (*directory.Student, error)
}

type BanChecker interface {
	Standing(ctx context.Context, email string, today time.Time) (ban.Standing, error)
}

// Actor is the staff member handling a booking.
type Actor struct {
	Username string
	Role     directory.Role
}

type Service struct {
	Store    Store
	Notifier Notifier
	Students StudentLookup
	Bans     BanChecker

	Codes    CodeSource
	Now      func() time.Time
	Location *time.Location
}

func (s *Service) now() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

type TransitionRequest struct {
	BookingID string
	Next      Status
	Actor     Actor
	Reason    string
}

// Notification is the secondary outcome of a transition. A failed email never
// fails the transition itself.
type Notification struct {
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

type TransitionResult struct {
	Booking      *Booking     `json:"booking"`
	Notification Notification `json:"notification"`
	// Unchanged is set when a confirmed booking was confirmed again.
	Unchanged bool `json:"unchanged,omitempty"`
}

// Transition advances a booking along waiting → still_out → confirmed, or
// straight from waiting to confirmed or rejected.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	cur, err := s.Store.Get(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	// Re-confirmation reuses the stored code and changes nothing.
	if req.Next == StatusConfirmed && cur.Status == StatusConfirmed && cur.OTP != "" {
		return &TransitionResult{Booking: cur, Unchanged: true}, nil
	}

	if !CanTransition(cur.Status, req.Next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, req.Next)
	}

	next := *cur
	next.Status = req.Next

	switch req.Next {
	case StatusRejected:
		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			return nil, ErrReasonRequired
		}
		next.RejectionReason = reason
	case StatusConfirmed:
		if next.OTP == "" {
			code, err := s.allocateCode(ctx)
			if err != nil {
				return nil, err
			}
			next.OTP = code
			next.OTPUsed = false
		}
	}

	now := s.now()
	next.HandledBy = req.Actor.Username
	next.HandledAt = &now
	next.UpdatedAt = now

	if err := s.Store.ApplyTransition(ctx, cur.Status, &next, req.Actor.Username); err != nil {
		return nil, err
	}
	metrics.Transitions.WithLabelValues(string(cur.Status), string(next.Status)).Inc()
	log.Printf("booking transition id=%s from=%s to=%s actor=%s", next.ID, cur.Status, next.Status, req.Actor.Username)

	note := s.notify(ctx, &next, req.Actor)
	if err := s.Store.RecordNotification(ctx, next.ID, req.Actor.Username, note, s.now()); err != nil {
		log.Printf("notification event failed booking=%s err=%v", next.ID, err)
	}

	return &TransitionResult{
		Booking:      &next,
		Notification: note,
	}, nil
}

func (s *Service) allocateCode(ctx context.Context) (string, error) {
	gen := s.Codes
	if gen == nil {
		gen = RandomCode
	}
	for i := 0; i < codeAttempts; i++ {
		code, err := gen()
		if err != nil {
			return "", err
		}
		taken, err := s.Store.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpace
}

func (s *Service) notify(ctx context.Context, b *Booking, actor Actor) Notification {
	if s.Notifier == nil {
		metrics.Notifications.WithLabelValues("disabled").Inc()
		return Notification{Error: "notifications are not configured"}
	}
	if err := s.Notifier.Notify(ctx, b, actor); err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		log.Printf("parent notification failed booking=%s err=%v", b.ID, err)
		return Notification{Error: err.Error()}
	}
	metrics.Notifications.WithLabelValues("sent").Inc()
	return Notification{Sent: true}
}

// BannedError blocks creation while a ban is in force.
type BannedError struct {
	Standing ban.Standing
}

func (e *BannedError) Error() string {
	msg := fmt.Sprintf("banned from %s till %s", e.Standing.From, e.Standing.Till)
	if e.Standing.Reason != "" {
		msg += ": " + e.Standing.Reason
	}
	return msg
}

// ValidationError is a field-level problem with a request.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

type Requester struct {
	Email string
	Name  string
}

type CreateRequest struct {
	Name        string `json:"name" validate:"omitempty,max=120"`
	HostelName  string `json:"hostelName" validate:"omitempty,max=80"`
	RoomNumber  string `json:"roomNumber" validate:"omitempty,max=20"`
	OutDate     string `json:"outDate" validate:"required,datetime=2006-01-02"`
	OutTime     string `json:"outTime" validate:"required,datetime=15:04"`
	InDate      string `json:"inDate" validate:"required,datetime=2006-01-02"`
	InTime      string `json:"inTime" validate:"required,datetime=15:04"`
	Reason      string `json:"reason" validate:"required,max=500"`
	ParentEmail string `json:"parentEmail" validate:"omitempty,email"`
	ParentPhone string `json:"parentPhone" validate:"omitempty,max=20"`
}

// Create submits a new outing request in the waiting state.
func (s *Service) Create(ctx context.Context, who Requester, req CreateRequest) (*Booking, error) {
	email := strings.ToLower(strings.TrimSpace(who.Email))
	now := s.now()

	if s.Bans != nil {
		st, err := s.Bans.Standing(ctx, email, now)
		if err != nil {
			return nil, fmt.Errorf("ban lookup: %w", err)
		}
		if st.Blocked {
			return nil, &BannedError{Standing: st}
		}
	}

	active, err := s.Store.ActiveFor(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("active booking lookup: %w", err)
	}
	if active != nil {
		return nil, ErrActiveBooking
	}

	b := &Booking{
		Name:        firstNonEmpty(req.Name, who.Name),
		Email:       email,
		HostelName:  strings.TrimSpace(req.HostelName),
		RoomNumber:  strings.TrimSpace(req.RoomNumber),
		OutDate:     req.OutDate,
		OutTime:     req.OutTime,
		InDate:      req.InDate,
		InTime:      req.InTime,
		Reason:      strings.TrimSpace(req.Reason),
		ParentEmail: strings.ToLower(strings.TrimSpace(req.ParentEmail)),
		ParentPhone: strings.TrimSpace(req.ParentPhone),
		Status:      StatusWaiting,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if s.Students != nil {
		p, err := s.Students.GetStudent(ctx, email)
		switch {
		case err == nil:
			b.Name = firstNonEmpty(b.Name, p.Name)
			b.HostelName = firstNonEmpty(b.HostelName, p.HostelName)
			b.RoomNumber = firstNonEmpty(b.RoomNumber, p.RoomNumber)
			b.ParentEmail = firstNonEmpty(b.ParentEmail, p.ParentEmail)
			b.ParentPhone = firstNonEmpty(b.ParentPhone, p.ParentPhone)
		case errors.Is(err, directory.ErrNotFound):
		default:
			return nil, fmt.Errorf("student lookup: %w", err)
		}
	}

	if err := validateWindow(b, now.Location()); err != nil {
		return nil, err
	}
	switch {
	case b.Name == "":
		return nil, ValidationError{"name is required"}
	case b.HostelName == "":
		return nil, ValidationError{"hostelName is required"}
	case b.ParentEmail == "":
		return nil, ValidationError{"parentEmail is required"}
	}

	if err := s.Store.Insert(ctx, b); err != nil {
		return nil, err
	}
	metrics.BookingsCreated.Inc()
	return b, nil
}

func validateWindow(b *Booking, loc *time.Location) error {
	out, err := b.OutAt(loc)
	if err != nil {
		return ValidationError{"invalid out date/time"}
	}
	in, err := b.InAt(loc)
	if err != nil {
		return ValidationError{"invalid in date/time"}
	}
	if !in.After(out) {
		return ValidationError{"return must be after departure"}
	}
	return nil
}

func (s *Service) ListMine(ctx context.Context, email string) ([]Booking, error) {
	return s.Store.ListByEmail(ctx, strings.ToLower(email))
}

// DeleteMine removes a requester's own booking while it is still waiting.
func (s *Service) DeleteMine(ctx context.Context, email, id string) error {
	return s.Store.DeleteWaiting(ctx, id, strings.ToLower(email))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
