// Package generator composes the synthesizer, the geo pairer and the scorer
// into scored synthetic transactions.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/Alias1177/FraudStream/internal/geo"
	"github.com/Alias1177/FraudStream/internal/scoring"
	"github.com/Alias1177/FraudStream/internal/synth"
	"github.com/Alias1177/FraudStream/models"
)

// Options adjusts a single generation call. Zero value uses the configured prior.
type Options struct {
	ClassOverride *bool
	FraudPrior    *float64
}

// Generator is stateless apart from its immutable collaborators
type Generator struct {
	synth  *synth.Synthesizer
	pairer *geo.Pairer
	scorer *scoring.Scorer

	now   func() time.Time
	newID func() string
}

// New builds a Generator
func New(s *synth.Synthesizer, p *geo.Pairer, sc *scoring.Scorer) (*Generator, error) {
	if s == nil || p == nil || sc == nil {
		return nil, errors.New("generator: synthesizer, pairer and scorer are required")
	}
	return &Generator{
		synth:  s,
		pairer: p,
		scorer: sc,
		now:    time.Now,
		newID:  func() string { return "TX-" + uuid.NewString() },
	}, nil
}

// Scorer returns the scorer in use
func (g *Generator) Scorer() *scoring.Scorer {
	return g.scorer
}

// Catalog returns the region catalog in use
func (g *Generator) Catalog() *geo.Catalog {
	return g.pairer.Catalog()
}

// Synthesize builds one unscored record
func (g *Generator) Synthesize(rng *rand.Rand, opts Options) models.TransactionRecord {
	var isFraud bool
	var features models.FeatureVector
	if opts.FraudPrior != nil {
		isFraud, features = g.synth.Synthesize(rng, opts.ClassOverride, *opts.FraudPrior)
	} else {
		isFraud, features = g.synth.Draw(rng, opts.ClassOverride)
	}

	pair := g.pairer.Pair(rng, isFraud)

	return models.TransactionRecord{
		IsFraud:            isFraud,
		Features:           features,
		Source:             pair.Source,
		Destination:        pair.Destination,
		SourceRegion:       pair.SourceRegion,
		DestinationRegion:  pair.DestinationRegion,
		Perturbed:          pair.Perturbed,
		DistanceKm:         geo.DistanceKm(pair.Source, pair.Destination),
		SourceAccount:      accountID(rng),
		DestinationAccount: accountID(rng),
	}
}

// Generate synthesizes and scores one transaction. When the classifier is
// unavailable the returned transaction is still complete (score fields nil,
// status "fraud" or "unscored") and the error wraps
// models.ErrClassifierUnavailable.
func (g *Generator) Generate(ctx context.Context, rng *rand.Rand, opts Options) (models.ScoredTransaction, error) {
	record := g.Synthesize(rng, opts)

	score, err := g.scorer.Score(ctx, record.Features)
	tx := models.ScoredTransaction{
		ID:        g.newID(),
		Timestamp: g.now(),
		Record:    record,
		Score:     score,
		Status:    g.scorer.Status(record.IsFraud, score),
	}
	if err != nil {
		return tx, fmt.Errorf("scoring %s: %w", tx.ID, err)
	}
	return tx, nil
}

// Batch generates n transactions. Classifier unavailability does not stop the
// batch; the first such error is returned alongside the full batch.
func (g *Generator) Batch(ctx context.Context, rng *rand.Rand, n int, opts Options) ([]models.ScoredTransaction, error) {
	out := make([]models.ScoredTransaction, 0, n)
	var firstErr error

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		tx, err := g.Generate(ctx, rng, opts)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		out = append(out, tx)
	}

	return out, firstErr
}

func accountID(rng *rand.Rand) string {
	return fmt.Sprintf("ACC%06d", 100000+rng.IntN(900000))
}
