package generator

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/FraudStream/internal/geo"
	"github.com/Alias1177/FraudStream/internal/scoring"
	mock_scoring "github.com/Alias1177/FraudStream/internal/scoring/mocks"
	"github.com/Alias1177/FraudStream/internal/synth"
	"github.com/Alias1177/FraudStream/models"
)

var accountPattern = regexp.MustCompile(`^ACC\d{6}$`)

func newTestGenerator(t *testing.T, classifier models.Classifier) *Generator {
	t.Helper()

	s, err := synth.New(synth.DefaultConfig())
	require.NoError(t, err)
	catalog, err := geo.NewCatalog(geo.DefaultRegions())
	require.NoError(t, err)
	p, err := geo.NewPairer(catalog, geo.DefaultConfig())
	require.NoError(t, err)
	sc, err := scoring.NewScorer(classifier, scoring.DefaultHotThreshold)
	require.NoError(t, err)

	g, err := New(s, p, sc)
	require.NoError(t, err)
	return g
}

func boolPtr(b bool) *bool { return &b }

func TestGenerate_ClassifierUnavailable(t *testing.T) {
	g := newTestGenerator(t, nil)
	rng := NewSeededRandFactory(1).New()

	for _, override := range []bool{true, false} {
		tx, err := g.Generate(context.Background(), rng, Options{ClassOverride: boolPtr(override)})
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrClassifierUnavailable)

		assert.NotEmpty(t, tx.ID)
		assert.Equal(t, override, tx.Record.IsFraud)
		assert.True(t, tx.Record.Features.Finite())
		assert.Nil(t, tx.Score.Prediction)
		assert.Nil(t, tx.Score.FraudProbability)
		if override {
			assert.Equal(t, models.StatusFraud, tx.Status)
		} else {
			assert.Equal(t, models.StatusUnscored, tx.Status)
		}

		raw, err := json.Marshal(models.NewEvent(tx))
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))

		require.Contains(t, decoded, "prediction")
		require.Contains(t, decoded, "fraud_probability")
		assert.Nil(t, decoded["prediction"])
		assert.Nil(t, decoded["fraud_probability"])
	}
}

func TestGenerate_Scored(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := mock_scoring.NewMockClassifier(ctrl)
	m.EXPECT().PredictProbability(gomock.Any(), gomock.Any()).Return(0.55, nil).AnyTimes()
	m.EXPECT().Predict(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()

	g := newTestGenerator(t, m)
	rng := NewSeededRandFactory(2).New()

	tx, err := g.Generate(context.Background(), rng, Options{ClassOverride: boolPtr(false)})
	require.NoError(t, err)
	require.NotNil(t, tx.Score.FraudProbability)
	assert.Equal(t, 0.55, *tx.Score.FraudProbability)
	assert.Equal(t, models.StatusHotPotential, tx.Status)

	tx, err = g.Generate(context.Background(), rng, Options{ClassOverride: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFraud, tx.Status)
}

func TestGenerate_RecordInvariants(t *testing.T) {
	g := newTestGenerator(t, nil)
	rng := NewSeededRandFactory(3).New()
	threshold := geo.DefaultConfig().MinSeparation

	for i := 0; i < 10000; i++ {
		r := g.Synthesize(rng, Options{})
		f := r.Features

		require.True(t, f.Finite())
		require.True(t, f.RiskScore() >= 0 && f.RiskScore() <= 1)
		require.True(t, r.Source.Valid(), "source %+v", r.Source)
		require.True(t, r.Destination.Valid(), "destination %+v", r.Destination)
		require.True(t, geo.Separated(r.Source, r.Destination, threshold))
		require.InDelta(t, f.TotalAmount(), f.AvgAmount()*math.Max(1, float64(f.PriorTxCount())), 1e-6)
		require.Regexp(t, accountPattern, r.SourceAccount)
		require.Regexp(t, accountPattern, r.DestinationAccount)
		require.GreaterOrEqual(t, r.DistanceKm, 0.0)
	}
}

func TestGenerate_FraudPriorOverride(t *testing.T) {
	g := newTestGenerator(t, nil)
	rng := NewSeededRandFactory(4).New()
	prior := 1.0 / 3.0

	const n = 10000
	fraud := 0
	for i := 0; i < n; i++ {
		if g.Synthesize(rng, Options{FraudPrior: &prior}).IsFraud {
			fraud++
		}
	}
	assert.InDelta(t, prior, float64(fraud)/n, 0.02)
}

func TestGenerate_DeterministicWithSeed(t *testing.T) {
	g := newTestGenerator(t, nil)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }
	g.newID = func() string { return "TX-fixed" }

	a := NewSeededRandFactory(77).New()
	b := NewSeededRandFactory(77).New()

	for i := 0; i < 50; i++ {
		ta, _ := g.Generate(context.Background(), a, Options{})
		tb, _ := g.Generate(context.Background(), b, Options{})
		require.Equal(t, ta, tb)
	}
}

func TestGenerate_ConcurrentCallers(t *testing.T) {
	g := newTestGenerator(t, nil)
	factory := NewRandFactory()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := factory.New()
			for i := 0; i < 500; i++ {
				tx, err := g.Generate(context.Background(), rng, Options{})
				if err != nil && !errors.Is(err, models.ErrClassifierUnavailable) {
					errs <- err
					return
				}
				if !tx.Record.Destination.Valid() {
					errs <- errors.New("invalid destination")
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestBatch(t *testing.T) {
	g := newTestGenerator(t, nil)
	rng := NewSeededRandFactory(5).New()

	txs, err := g.Batch(context.Background(), rng, 20, Options{})
	assert.ErrorIs(t, err, models.ErrClassifierUnavailable)
	assert.Len(t, txs, 20)

	ids := make(map[string]bool)
	for _, tx := range txs {
		ids[tx.ID] = true
	}
	assert.Len(t, ids, 20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	txs, err = g.Batch(ctx, rng, 20, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, txs)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(nil, nil, nil)
	assert.Error(t, err)
}
