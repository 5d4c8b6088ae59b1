package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/FraudStream/models"
)

func testEvent(status models.Status) models.TransactionEvent {
	p := 0.87
	return models.TransactionEvent{
		ID:               "TX-1",
		Source:           "ACC100001",
		Target:           "ACC200002",
		SourceRegion:     "europe",
		TargetRegion:     "open_water",
		DistanceKm:       1234.5,
		Amount:           2500.5,
		IsFraud:          status == models.StatusFraud,
		FraudProbability: &p,
		Status:           status,
		Type:             "transaction",
		Features:         models.EventFeatures{Hour: 3},
	}
}

type recordingPublisher struct {
	name   string
	err    error
	events []models.TransactionEvent
	closed bool
}

func (p *recordingPublisher) Name() string { return p.name }

func (p *recordingPublisher) Publish(_ context.Context, ev models.TransactionEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return p.err
}

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func TestMulti_PublishesToAll(t *testing.T) {
	ok := &recordingPublisher{name: "ok"}
	failing := &recordingPublisher{name: "failing", err: errors.New("broker down")}
	m := NewMulti(ok, nil, failing)

	assert.Equal(t, 2, m.Len())

	err := m.Publish(context.Background(), testEvent(models.StatusSafe))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing: broker down")
	assert.Len(t, ok.events, 1)
	assert.Len(t, failing.events, 1)

	assert.Error(t, m.Close())
	assert.True(t, ok.closed)
	assert.True(t, failing.closed)
}

func TestEncode_NullScores(t *testing.T) {
	ev := testEvent(models.StatusUnscored)
	ev.FraudProbability = nil

	data, err := Encode(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "TX-1", decoded["id"])
	assert.Contains(t, decoded, "prediction")
	assert.Nil(t, decoded["prediction"])
	assert.Nil(t, decoded["fraud_probability"])
}

func TestNewKafkaMessage(t *testing.T) {
	msg, err := newKafkaMessage("scored_transactions", testEvent(models.StatusFraud))
	require.NoError(t, err)

	require.NotNil(t, msg.TopicPartition.Topic)
	assert.Equal(t, "scored_transactions", *msg.TopicPartition.Topic)
	assert.Equal(t, []byte("TX-1"), msg.Key)

	var decoded models.TransactionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, models.StatusFraud, decoded.Status)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "fraud", headers["status"])
}

func TestNewRedisSink_Validation(t *testing.T) {
	_, err := NewRedisSink(context.Background(), RedisOptions{Channel: "transactions"})
	assert.Error(t, err)

	_, err = NewRedisSink(context.Background(), RedisOptions{Addrs: []string{"localhost:6379"}})
	assert.Error(t, err)
}

func TestTelegramSink_Publish(t *testing.T) {
	tests := []struct {
		name   string
		status models.Status
		sent   int
	}{
		{name: "fraud alerts", status: models.StatusFraud, sent: 1},
		{name: "hot potential alerts", status: models.StatusHotPotential, sent: 1},
		{name: "safe is quiet", status: models.StatusSafe, sent: 0},
		{name: "unscored is quiet", status: models.StatusUnscored, sent: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			s := NewTelegramSink(sender, TelegramOptions{ChatID: 42})

			require.NoError(t, s.Publish(context.Background(), testEvent(tt.status)))
			require.Len(t, sender.sent, tt.sent)
			if tt.sent > 0 {
				assert.Equal(t, int64(42), sender.sent[0].ChatID)
				assert.Equal(t, "Markdown", sender.sent[0].ParseMode)
			}
		})
	}
}

func TestTelegramSink_RateLimited(t *testing.T) {
	sender := &fakeSender{}
	s := NewTelegramSink(sender, TelegramOptions{ChatID: 1, Every: time.Hour})

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Publish(context.Background(), testEvent(models.StatusFraud)))
	}
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, int64(4), s.Suppressed())
	assert.NoError(t, s.Close())
}

func TestTelegramSink_SendError(t *testing.T) {
	sender := &fakeSender{err: errors.New("forbidden")}
	s := NewTelegramSink(sender, TelegramOptions{ChatID: 1})

	err := s.Publish(context.Background(), testEvent(models.StatusFraud))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TX-1")
}

func TestFormatAlert(t *testing.T) {
	text := formatAlert(testEvent(models.StatusFraud))

	assert.Contains(t, text, "*FRAUD*")
	assert.Contains(t, text, "$2500.50")
	assert.Contains(t, text, "open water")
	assert.Contains(t, text, "03:00")
	assert.Contains(t, text, "87.0%")

	ev := testEvent(models.StatusHotPotential)
	ev.FraudProbability = nil
	text = formatAlert(ev)
	assert.Contains(t, text, "HOT POTENTIAL")
	assert.Contains(t, text, "n/a")
}
