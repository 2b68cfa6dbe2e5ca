package audit

import (
	"context"
	"encoding/json"

	"outingpass/internal/events"
)

const (
	ActionBookingCreated = "BOOKING_CREATED"
	ActionBookingDeleted = "BOOKING_DELETED"
	ActionStatusChanged  = "STATUS_CHANGED"
	ActionCodeConsumed   = "CODE_CONSUMED"
)

func Insert(ctx context.Context, db events.Execer, bookingID *string, action, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, _ := json.Marshal(metadata)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (booking_id, action, actor, metadata)
VALUES ($1, $2, $3, CAST($4 AS jsonb))
`
	_, err := db.Exec(ctx, q, bookingID, action, actor, s)
	return err
}
