// Package sink delivers streamed transaction events to external systems.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/FraudStream/models"
)

// Publisher accepts events for delivery
type Publisher interface {
	Name() string
	Publish(ctx context.Context, ev models.TransactionEvent) error
	Close() error
}

// Encode renders an event as the JSON payload every sink sends
func Encode(ev models.TransactionEvent) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encoding event %s: %w", ev.ID, err)
	}
	return data, nil
}

// Multi publishes to several sinks. A failing sink does not stop the others.
type Multi struct {
	publishers []Publisher
	logger     zerolog.Logger
}

// NewMulti combines publishers. Nil entries are skipped.
func NewMulti(publishers ...Publisher) *Multi {
	m := &Multi{logger: log.With().Str("component", "sink").Logger()}
	for _, p := range publishers {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
	return m
}

// Name implements Publisher
func (m *Multi) Name() string {
	return "multi"
}

// Len returns the number of wrapped sinks
func (m *Multi) Len() int {
	return len(m.publishers)
}

// Publish sends ev to every sink and joins their errors
func (m *Multi) Publish(ctx context.Context, ev models.TransactionEvent) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, ev); err != nil {
			m.logger.Warn().Err(err).Str("sink", p.Name()).Str("id", ev.ID).Msg("Publish failed")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink
func (m *Multi) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}
