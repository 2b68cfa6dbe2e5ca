package guard

import (
	"context"
	"log"
	"time"

	"outingpass/internal/metrics"
)

type Decision string

const (
	// Armed: first press recorded, nothing happens yet.
	Armed Decision = "armed"
	// Busy: another action of the same actor is in flight.
	Busy Decision = "busy"
	// Proceed: confirmed and the in-flight slot is held.
	Proceed Decision = "proceed"
)

// Guard combines the two-press confirmation with the one-in-flight rule.
type Guard struct {
	Confirm      Confirmations
	Lock         Locker
	ReleaseDelay time.Duration
}

// Begin decides what a press on (bookingID, action) by actor does. When the
// decision is Proceed the caller must call release once the action finished,
// whether it succeeded or not.
func (g *Guard) Begin(ctx context.Context, actor, bookingID, action string) (Decision, func(), error) {
	held, err := g.Lock.Held(ctx, actor)
	if err != nil {
		return "", nil, err
	}
	if held {
		metrics.GuardDecisions.WithLabelValues(string(Busy)).Inc()
		return Busy, nil, nil
	}

	confirmed, err := g.Confirm.Press(ctx, Key(actor, bookingID, action))
	if err != nil {
		return "", nil, err
	}
	if !confirmed {
		metrics.GuardDecisions.WithLabelValues(string(Armed)).Inc()
		return Armed, nil, nil
	}

	ok, err := g.Lock.TryAcquire(ctx, actor)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		metrics.GuardDecisions.WithLabelValues(string(Busy)).Inc()
		return Busy, nil, nil
	}

	metrics.GuardDecisions.WithLabelValues(string(Proceed)).Inc()
	release := func() {
		// The request context may already be cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := g.Lock.ReleaseAfter(ctx, actor, g.ReleaseDelay); err != nil {
			log.Printf("action lock release failed actor=%s err=%v", actor, err)
		}
	}
	return Proceed, release, nil
}
