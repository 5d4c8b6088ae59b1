package stream

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/Alias1177/FraudStream/models"
)

// Scheduler paces a loop with a uniformly random pause in [min, max]
// between ticks.
type Scheduler struct {
	min time.Duration
	max time.Duration
}

// NewScheduler validates the interval bounds
func NewScheduler(min, max time.Duration) (*Scheduler, error) {
	if min < 0 {
		return nil, models.NewConfigError("stream_min_interval", "must not be negative, got %s", min)
	}
	if max < min {
		return nil, models.NewConfigError("stream_max_interval", "must be >= stream_min_interval (%s), got %s", min, max)
	}
	return &Scheduler{min: min, max: max}, nil
}

// Next draws the next pause
func (s *Scheduler) Next(rng *rand.Rand) time.Duration {
	if s.max == s.min {
		return s.min
	}
	return s.min + time.Duration(rng.Int64N(int64(s.max-s.min)+1))
}

// Run calls tick, then pauses, until ctx is cancelled. It returns ctx's error.
func (s *Scheduler) Run(ctx context.Context, rng *rand.Rand, tick func(context.Context)) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tick(ctx)

		timer.Reset(s.Next(rng))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}
