package stream

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/FraudStream/internal/generator"
	"github.com/Alias1177/FraudStream/internal/geo"
	"github.com/Alias1177/FraudStream/internal/scoring"
	mock_scoring "github.com/Alias1177/FraudStream/internal/scoring/mocks"
	"github.com/Alias1177/FraudStream/internal/synth"
	"github.com/Alias1177/FraudStream/models"
)

func newTestGenerator(t *testing.T, classifier models.Classifier) *generator.Generator {
	t.Helper()

	s, err := synth.New(synth.DefaultConfig())
	require.NoError(t, err)
	catalog, err := geo.NewCatalog(geo.DefaultRegions())
	require.NoError(t, err)
	p, err := geo.NewPairer(catalog, geo.DefaultConfig())
	require.NoError(t, err)
	sc, err := scoring.NewScorer(classifier, scoring.DefaultHotThreshold)
	require.NoError(t, err)
	g, err := generator.New(s, p, sc)
	require.NoError(t, err)
	return g
}

type memorySink struct {
	mu     sync.Mutex
	events []models.TransactionEvent
	err    error
}

func (m *memorySink) Name() string { return "memory" }

func (m *memorySink) Publish(_ context.Context, ev models.TransactionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return m.err
}

func (m *memorySink) Close() error { return nil }

func (m *memorySink) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func TestHub_PublishAndDrop(t *testing.T) {
	h := NewHub(2)
	fast := h.Subscribe()
	slow := h.Subscribe()
	assert.Equal(t, 2, h.Subscribers())

	assert.Equal(t, 2, h.Publish(models.TransactionEvent{ID: "1"}))
	assert.Equal(t, "1", (<-fast.Events()).ID)

	assert.Equal(t, 2, h.Publish(models.TransactionEvent{ID: "2"}))
	// slow now holds 1 and 2, its queue is full
	assert.Equal(t, 1, h.Publish(models.TransactionEvent{ID: "3"}))
	assert.Equal(t, int64(1), slow.dropped.Load())

	assert.Equal(t, "2", (<-fast.Events()).ID)
	assert.Equal(t, "3", (<-fast.Events()).ID)
	assert.Equal(t, "1", (<-slow.Events()).ID)
}

func TestHub_Close(t *testing.T) {
	h := NewHub(1)
	sub := h.Subscribe()

	sub.Close()
	sub.Close()
	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Subscribers())

	other := h.Subscribe()
	h.Close()
	_, ok = <-other.Events()
	assert.False(t, ok)
	other.Close()

	late := h.Subscribe()
	_, ok = <-late.Events()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Publish(models.TransactionEvent{ID: "x"}))
}

func TestNewScheduler_Validation(t *testing.T) {
	tests := []struct {
		name     string
		min, max time.Duration
		field    string
	}{
		{name: "negative min", min: -time.Second, max: time.Second, field: "stream_min_interval"},
		{name: "max below min", min: 2 * time.Second, max: time.Second, field: "stream_max_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScheduler(tt.min, tt.max)
			var cfgErr *models.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestScheduler_Next(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	s, err := NewScheduler(500*time.Millisecond, 2500*time.Millisecond)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		d := s.Next(rng)
		require.GreaterOrEqual(t, d, 500*time.Millisecond)
		require.LessOrEqual(t, d, 2500*time.Millisecond)
	}

	fixed, err := NewScheduler(time.Second, time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, fixed.Next(rng))
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	s, err := NewScheduler(time.Millisecond, 2*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ticks := 0
	err = s.Run(ctx, rand.New(rand.NewPCG(3, 4)), func(context.Context) {
		ticks++
		if ticks == 5 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, ticks)
}

func TestStreamer_TickWithoutClassifier(t *testing.T) {
	hub := NewHub(8)
	sub := hub.Subscribe()
	mem := &memorySink{err: errors.New("sink offline")}
	sched, err := NewScheduler(time.Millisecond, time.Millisecond)
	require.NoError(t, err)

	st, err := NewStreamer(newTestGenerator(t, nil), sched, hub, rand.New(rand.NewPCG(5, 6)), StreamerOptions{Sink: mem})
	require.NoError(t, err)

	require.NoError(t, st.Tick(context.Background()))

	ev := <-sub.Events()
	assert.Equal(t, "transaction", ev.Type)
	assert.Nil(t, ev.Prediction)
	assert.Nil(t, ev.FraudProbability)
	assert.Contains(t, []models.Status{models.StatusFraud, models.StatusUnscored}, ev.Status)
	assert.Equal(t, 1, mem.Len())

	stats := st.Stats()
	assert.Equal(t, int64(1), stats.Generated)
	assert.Equal(t, int64(1), stats.Unscored)
	assert.Equal(t, int64(1), stats.SinkErrors)
	assert.Equal(t, int64(1), stats.Delivered)
}

func TestStreamer_RecoversPanickingTick(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := mock_scoring.NewMockClassifier(ctrl)
	m.EXPECT().PredictProbability(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, models.FeatureVector) (float64, error) {
			panic("model crashed")
		}).AnyTimes()
	m.EXPECT().Predict(gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()

	sched, err := NewScheduler(time.Millisecond, time.Millisecond)
	require.NoError(t, err)
	st, err := NewStreamer(newTestGenerator(t, m), sched, NewHub(1), rand.New(rand.NewPCG(7, 8)), StreamerOptions{})
	require.NoError(t, err)

	err = st.Tick(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model crashed")
}

func TestStreamer_RunUntilCancelled(t *testing.T) {
	prior := 0.33
	mem := &memorySink{}
	sched, err := NewScheduler(time.Millisecond, 3*time.Millisecond)
	require.NoError(t, err)

	st, err := NewStreamer(newTestGenerator(t, nil), sched, NewHub(1), rand.New(rand.NewPCG(9, 10)),
		StreamerOptions{FraudPrior: &prior, Sink: mem})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.NoError(t, st.Run(ctx))
	assert.Greater(t, mem.Len(), 1)
	assert.Equal(t, int64(mem.Len()), st.Stats().Generated)
}

func TestNewStreamer_Validation(t *testing.T) {
	sched, err := NewScheduler(0, 0)
	require.NoError(t, err)
	g := newTestGenerator(t, nil)
	rng := rand.New(rand.NewPCG(1, 1))

	_, err = NewStreamer(nil, sched, NewHub(1), rng, StreamerOptions{})
	assert.Error(t, err)

	bad := 1.5
	_, err = NewStreamer(g, sched, NewHub(1), rng, StreamerOptions{FraudPrior: &bad})
	assert.True(t, models.IsConfigurationError(err))
}
