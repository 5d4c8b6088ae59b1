package sink

import (
	"context"
	"fmt"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/FraudStream/models"
)

const kafkaFlushTimeoutMs = 5000

// KafkaSink produces every event to a Kafka topic, keyed by transaction id
type KafkaSink struct {
	producer *kafka.Producer
	topic    string
	logger   zerolog.Logger
	once     sync.Once
}

// NewKafkaSink connects a producer to broker
func NewKafkaSink(broker, topic string) (*KafkaSink, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": broker,
		"client.id":         "fraudstream",
		"acks":              "1",
		"linger.ms":         20,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}

	s := &KafkaSink{
		producer: p,
		topic:    topic,
		logger:   log.With().Str("component", "kafka_sink").Str("topic", topic).Logger(),
	}
	go s.drain()

	s.logger.Info().Str("broker", broker).Msg("Kafka producer ready")
	return s, nil
}

// Name implements Publisher
func (s *KafkaSink) Name() string {
	return "kafka"
}

// Publish enqueues ev. Delivery reports are handled asynchronously.
func (s *KafkaSink) Publish(_ context.Context, ev models.TransactionEvent) error {
	msg, err := newKafkaMessage(s.topic, ev)
	if err != nil {
		return err
	}
	if err := s.producer.Produce(msg, nil); err != nil {
		return fmt.Errorf("producing %s: %w", ev.ID, err)
	}
	return nil
}

// Close flushes outstanding messages and shuts the producer down
func (s *KafkaSink) Close() error {
	s.once.Do(func() {
		if left := s.producer.Flush(kafkaFlushTimeoutMs); left > 0 {
			s.logger.Warn().Int("unflushed", left).Msg("Closing with undelivered messages")
		}
		s.producer.Close()
	})
	return nil
}

// drain consumes delivery reports until the producer closes its events channel
func (s *KafkaSink) drain() {
	for e := range s.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				s.logger.Error().Err(ev.TopicPartition.Error).Str("key", string(ev.Key)).Msg("Delivery failed")
			}
		case kafka.Error:
			s.logger.Error().Err(ev).Msg("Producer error")
		}
	}
}

func newKafkaMessage(topic string, ev models.TransactionEvent) (*kafka.Message, error) {
	value, err := Encode(ev)
	if err != nil {
		return nil, err
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(ev.ID),
		Value:          value,
		Headers: []kafka.Header{
			{Key: "status", Value: []byte(ev.Status)},
			{Key: "content-type", Value: []byte("application/json")},
		},
	}, nil
}
