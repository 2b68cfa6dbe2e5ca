package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"outingpass/internal/audit"
	"outingpass/internal/events"
	"outingpass/pkg/db"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const columns = `id, name, email, hostel_name, room_number, out_date, out_time, in_date, in_time,
       reason, parent_email, parent_phone, status, COALESCE(otp, ''), otp_used,
       COALESCE(rejection_reason, ''), COALESCE(handled_by, ''), handled_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID, &b.Name, &b.Email, &b.HostelName, &b.RoomNumber, &b.OutDate, &b.OutTime, &b.InDate, &b.InTime,
		&b.Reason, &b.ParentEmail, &b.ParentPhone, &b.Status, &b.OTP, &b.OTPUsed,
		&b.RejectionReason, &b.HandledBy, &b.HandledAt, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Booking, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+columns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE otp = $1)`, code).Scan(&exists)
	return exists, err
}

func (r *Repository) ApplyTransition(ctx context.Context, prev Status, b *Booking, actor string) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		const q = `
UPDATE bookings
SET status = $3,
    otp = NULLIF($4, ''),
    otp_used = $5,
    rejection_reason = NULLIF($6, ''),
    handled_by = $7,
    handled_at = $8,
    updated_at = $9
WHERE id = $1 AND status = $2
`
		tag, err := tx.Exec(ctx, q, b.ID, string(prev), string(b.Status), b.OTP, b.OTPUsed,
			b.RejectionReason, b.HandledBy, b.HandledAt, b.UpdatedAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("%w: code collision", ErrConflict)
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, b.ID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrConflict
		}

		data := map[string]any{"from": prev, "to": b.Status}
		if b.Status == StatusRejected {
			data["reason"] = b.RejectionReason
		}
		bookingID := b.ID
		if err := audit.Insert(ctx, tx, &bookingID, audit.ActionStatusChanged, actor, data); err != nil {
			return err
		}
		if err := events.Insert(ctx, tx, b.ID, events.TypeStatusChanged, "Status changed to "+string(b.Status), actor, b.UpdatedAt, data); err != nil {
			return err
		}
		if b.Status == StatusConfirmed && b.OTP != "" {
			return events.Insert(ctx, tx, b.ID, events.TypeCodeIssued, "Gate code issued", actor, b.UpdatedAt, nil)
		}
		return nil
	})
}

func (r *Repository) Insert(ctx context.Context, b *Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		const q = `
INSERT INTO bookings (id, name, email, hostel_name, room_number, out_date, out_time, in_date, in_time,
                      reason, parent_email, parent_phone, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`
		if _, err := tx.Exec(ctx, q, b.ID, b.Name, b.Email, b.HostelName, b.RoomNumber, b.OutDate, b.OutTime,
			b.InDate, b.InTime, b.Reason, b.ParentEmail, b.ParentPhone, string(b.Status), b.CreatedAt, b.UpdatedAt); err != nil {
			if db.IsUniqueViolation(err) {
				return ErrActiveBooking
			}
			return err
		}
		id := b.ID
		if err := audit.Insert(ctx, tx, &id, audit.ActionBookingCreated, b.Email, nil); err != nil {
			return err
		}
		return events.Insert(ctx, tx, b.ID, events.TypeCreated, "Outing requested", b.Email, b.CreatedAt, nil)
	})
}

func (r *Repository) ActiveFor(ctx context.Context, email string) (*Booking, error) {
	q := `SELECT ` + columns + ` FROM bookings WHERE email = $1 AND status IN ('waiting', 'still_out') LIMIT 1`
	b, err := scanBooking(r.db.QueryRow(ctx, q, email))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func (r *Repository) ListByEmail(ctx context.Context, email string) ([]Booking, error) {
	return r.query(ctx, `SELECT `+columns+` FROM bookings WHERE email = $1 ORDER BY created_at DESC`, email)
}

// ListQuery narrows the staff board at the store; finer filtering happens in
// the listing package.
type ListQuery struct {
	Status  Status
	Hostels []string
}

func (r *Repository) List(ctx context.Context, lq ListQuery) ([]Booking, error) {
	var (
		where []string
		args  []any
	)
	if lq.Status != "" {
		args = append(args, string(lq.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if lq.Hostels != nil {
		lowered := make([]string, len(lq.Hostels))
		for i, h := range lq.Hostels {
			lowered[i] = strings.ToLower(h)
		}
		args = append(args, lowered)
		where = append(where, fmt.Sprintf("lower(hostel_name) = ANY($%d)", len(args)))
	}
	q := `SELECT ` + columns + ` FROM bookings`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, out_date DESC`
	return r.query(ctx, q, args...)
}

func (r *Repository) query(ctx context.Context, q string, args ...any) ([]Booking, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteWaiting(ctx context.Context, id, email string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var status Status
		err := tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1 AND email = $2 FOR UPDATE`, id, email).Scan(&status)
		if err != nil {
			if db.IsNoRows(err) {
				return ErrNotFound
			}
			return err
		}
		if status != StatusWaiting {
			return ErrNotDeletable
		}
		if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id); err != nil {
			return err
		}
		return audit.Insert(ctx, tx, nil, audit.ActionBookingDeleted, email, map[string]any{"bookingId": id})
	})
}

func (r *Repository) RecordNotification(ctx context.Context, bookingID, actor string, n Notification, at time.Time) error {
	summary := "Parent notified"
	if !n.Sent {
		summary = "Parent notification failed"
	}
	return events.Insert(ctx, r.db, bookingID, events.TypeNotification, summary, actor, at, n)
}

// ConsumeCode marks an unused code as used and returns its booking. The
// match and the mark happen in one statement, so a code resolves once.
func (r *Repository) ConsumeCode(ctx context.Context, code, actor string, at time.Time) (*Booking, error) {
	var out *Booking
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		q := `
UPDATE bookings
SET otp_used = TRUE, updated_at = $2
WHERE otp = $1 AND otp_used = FALSE
RETURNING ` + columns
		b, err := scanBooking(tx.QueryRow(ctx, q, code, at))
		if err != nil {
			if db.IsNoRows(err) {
				return ErrNotFound
			}
			return err
		}
		id := b.ID
		if err := audit.Insert(ctx, tx, &id, audit.ActionCodeConsumed, actor, nil); err != nil {
			return err
		}
		if err := events.Insert(ctx, tx, b.ID, events.TypeCodeConsumed, "Gate code verified", actor, at, nil); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}
