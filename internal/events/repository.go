package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is satisfied by pgx.Tx and *pgxpool.Pool.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	TypeCreated       = "BOOKING_CREATED"
	TypeStatusChanged = "STATUS_CHANGED"
	TypeCodeIssued    = "CODE_ISSUED"
	TypeCodeConsumed  = "CODE_CONSUMED"
	TypeNotification  = "NOTIFICATION"
)

func Insert(ctx context.Context, db Execer, bookingID, eventType, summary, actor string, occurredAt time.Time, data any) error {
	var s *string
	if data != nil {
		b, _ := json.Marshal(data)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO booking_events (booking_id, event_type, summary, actor, occurred_at, data)
VALUES ($1, $2, $3, $4, $5, CAST($6 AS jsonb))
`
	_, err := db.Exec(ctx, q, bookingID, eventType, summary, actor, occurredAt, s)
	return err
}
