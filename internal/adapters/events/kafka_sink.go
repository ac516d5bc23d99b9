package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
)

// kafkaSink publishes domain events to a Kafka topic, keyed by account
// number so one account's events stay ordered within a partition.
type kafkaSink struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewKafkaSink connects a synchronous producer to the brokers.
func NewKafkaSink(brokers []string, topic string, logger *slog.Logger) (portssvc.EventSink, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &kafkaSink{producer: producer, topic: topic, logger: logger}, nil
}

var _ portssvc.EventSink = (*kafkaSink)(nil)

func (s *kafkaSink) Publish(_ context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.EventID, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(event.AccountNumber),
		Value: sarama.ByteEncoder(payload),
	}
	partition, offset, err := s.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.EventID, err)
	}

	s.logger.Debug("event published",
		slog.String("event_type", event.EventType),
		slog.String("account_number", event.AccountNumber),
		slog.Int64("partition", int64(partition)),
		slog.Int64("offset", offset))
	return nil
}

func (s *kafkaSink) Close() error {
	return s.producer.Close()
}

// logSink stands in when no brokers are configured: events go to the log
// so local runs still show the full event flow.
type logSink struct {
	logger *slog.Logger
}

// NewLogSink creates the fallback event sink.
func NewLogSink(logger *slog.Logger) portssvc.EventSink {
	return &logSink{logger: logger}
}

var _ portssvc.EventSink = (*logSink)(nil)

func (s *logSink) Publish(_ context.Context, event domain.Event) error {
	s.logger.Info("domain event",
		slog.String("event_type", event.EventType),
		slog.String("event_id", event.EventID),
		slog.String("account_number", event.AccountNumber),
		slog.String("transaction_reference", event.TransactionReference))
	return nil
}

func (s *logSink) Close() error { return nil }
