package adminaction

import (
	"context"
	"encoding/json"

	"outingpass/internal/events"
)

func Insert(ctx context.Context, db events.Execer, actionType ActionType, target, reason, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, _ := json.Marshal(metadata)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO admin_actions (action_type, target, reason, actor, metadata)
VALUES ($1, $2, $3, $4, CAST($5 AS jsonb))
`
	_, err := db.Exec(ctx, q, string(actionType), target, reason, actor, s)
	return err
}
