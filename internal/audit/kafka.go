package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"docket/internal/platform/config"
)

// KafkaSink publishes audit events to a Kafka topic for downstream
// compliance consumers. Publishing is asynchronous and best-effort: delivery
// failures are logged by the produce callback and never surfaced.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaSink connects to the configured brokers. Returns nil when no
// brokers are configured (sink disabled).
func NewKafkaSink(cfg config.KafkaConfig, logger *slog.Logger) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
	)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaSink{client: client, topic: cfg.Topic, logger: logger}, nil
}

// Publish emits one event. The record key is the target id so all events for
// one entity land in the same partition, preserving per-target ordering.
func (s *KafkaSink) Publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("audit kafka encode failed", "error", err, "action", event.Action)
		return
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.TargetID),
		Value: payload,
	}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Warn("audit kafka publish failed",
				"error", err,
				"action", event.Action,
				"target_id", event.TargetID,
			)
		}
	})
}

// Close flushes pending records and releases the client.
func (s *KafkaSink) Close(ctx context.Context) {
	if err := s.client.Flush(ctx); err != nil {
		s.logger.Warn("audit kafka flush failed", "error", err)
	}
	s.client.Close()
}
