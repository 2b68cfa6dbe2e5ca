package ban

import (
	"context"
	"time"
)

type Store interface {
	LatestFor(ctx context.Context, email string) (*Ban, error)
}

type Service struct {
	Store Store
}

// Standing evaluates the authoritative ban for email on today.
func (s Service) Standing(ctx context.Context, email string, today time.Time) (Standing, error) {
	b, err := s.Store.LatestFor(ctx, email)
	if err != nil {
		return Standing{}, err
	}
	return Evaluate(b, today), nil
}
