package stream

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/FraudStream/internal/generator"
	"github.com/Alias1177/FraudStream/internal/sink"
	"github.com/Alias1177/FraudStream/models"
)

// Stats counts what the streamer has done so far
type Stats struct {
	Generated  int64
	Unscored   int64
	Failed     int64
	SinkErrors int64
	Delivered  int64
}

// Streamer generates one transaction per scheduler tick and publishes it
// to the hub and the sinks.
type Streamer struct {
	gen       *generator.Generator
	scheduler *Scheduler
	hub       *Hub
	sink      sink.Publisher
	opts      generator.Options
	rng       *rand.Rand
	logger    zerolog.Logger

	generated  atomic.Int64
	unscored   atomic.Int64
	failed     atomic.Int64
	sinkErrors atomic.Int64
	delivered  atomic.Int64
}

// StreamerOptions configures a Streamer
type StreamerOptions struct {
	// FraudPrior overrides the synthesizer's prior for streamed transactions
	FraudPrior *float64
	// Sink receives every event after the hub. Optional.
	Sink sink.Publisher
}

// NewStreamer wires a streamer. rng is owned by the streamer from now on.
func NewStreamer(gen *generator.Generator, scheduler *Scheduler, hub *Hub, rng *rand.Rand, opts StreamerOptions) (*Streamer, error) {
	if gen == nil || scheduler == nil || hub == nil || rng == nil {
		return nil, errors.New("stream: generator, scheduler, hub and rng are required")
	}
	if p := opts.FraudPrior; p != nil && !(*p >= 0 && *p <= 1) {
		return nil, models.NewConfigError("stream_fraud_prior", "must be in [0,1], got %v", *p)
	}
	return &Streamer{
		gen:       gen,
		scheduler: scheduler,
		hub:       hub,
		sink:      opts.Sink,
		opts:      generator.Options{FraudPrior: opts.FraudPrior},
		rng:       rng,
		logger:    log.With().Str("component", "streamer").Logger(),
	}, nil
}

// Run streams until ctx is done. Cancellation is a clean stop and returns nil.
func (s *Streamer) Run(ctx context.Context) error {
	s.logger.Info().Msg("Streaming started")
	err := s.scheduler.Run(ctx, s.rng, func(ctx context.Context) {
		if err := s.Tick(ctx); err != nil {
			s.failed.Add(1)
			s.logger.Error().Err(err).Msg("Stream tick failed")
		}
	})

	st := s.Stats()
	s.logger.Info().
		Int64("generated", st.Generated).
		Int64("unscored", st.Unscored).
		Int64("failed", st.Failed).
		Msg("Streaming stopped")

	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Tick generates and publishes one event. A panic inside the tick is
// recovered and returned as an error. Tick shares the streamer's rng and
// must not run concurrently with Run.
func (s *Streamer) Tick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic: %v", r)
		}
	}()

	tx, genErr := s.gen.Generate(ctx, s.rng, s.opts)
	if genErr != nil {
		if !errors.Is(genErr, models.ErrClassifierUnavailable) {
			return genErr
		}
		s.unscored.Add(1)
		s.logger.Debug().Err(genErr).Str("id", tx.ID).Msg("Streaming unscored transaction")
	}
	s.generated.Add(1)

	ev := models.NewEvent(tx)
	s.delivered.Add(int64(s.hub.Publish(ev)))

	if s.sink != nil {
		if err := s.sink.Publish(ctx, ev); err != nil {
			s.sinkErrors.Add(1)
			s.logger.Warn().Err(err).Str("id", ev.ID).Msg("Sink delivery failed")
		}
	}

	s.logger.Debug().
		Str("id", ev.ID).
		Str("status", string(ev.Status)).
		Float64("amount", ev.Amount).
		Int("subscribers", s.hub.Subscribers()).
		Msg("Transaction streamed")
	return nil
}

// Stats returns a snapshot of the counters
func (s *Streamer) Stats() Stats {
	return Stats{
		Generated:  s.generated.Load(),
		Unscored:   s.unscored.Load(),
		Failed:     s.failed.Load(),
		SinkErrors: s.sinkErrors.Load(),
		Delivered:  s.delivered.Load(),
	}
}
