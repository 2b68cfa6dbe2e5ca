package ban

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"outingpass/internal/metrics"
)

type expiredDeleter interface {
	DeleteExpired(ctx context.Context, today time.Time) (int64, error)
}

// StartSweeper schedules deletion of expired bans. The schedule and the ban
// dates are read in loc. The returned cron must be stopped on shutdown.
func StartSweeper(schedule string, repo expiredDeleter, loc *time.Location) (*cron.Cron, error) {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, sweepJob(repo, loc, time.Now))
	if err != nil {
		return nil, err
	}
	log.Printf("ban sweeper started schedule=%q", schedule)
	c.Start()
	return c, nil
}

func sweepJob(repo expiredDeleter, loc *time.Location, now func() time.Time) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := Sweep(ctx, repo, now().In(loc)); err != nil {
			log.Printf("ban sweep failed err=%v", err)
		}
	}
}

// Sweep deletes bans that ended before the calendar day of now. now must
// already be in the zone ban dates are written in.
func Sweep(ctx context.Context, repo expiredDeleter, now time.Time) (int64, error) {
	n, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.BansSwept.Add(float64(n))
		log.Printf("ban sweep removed=%d", n)
	}
	return n, nil
}
