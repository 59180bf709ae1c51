// Package kafka publishes audit events to a Kafka topic as JSON records keyed
// by actor, so one user's events stay ordered within a partition.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	audit "bloodbank/pkg/platform/audit"
	"bloodbank/internal/platform/kafka/producer"
)

// Producer is the subset of the Kafka producer the store needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Store implements audit.Store on top of a Kafka producer.
type Store struct {
	producer Producer
	topic    string
}

func New(p Producer, topic string) *Store {
	return &Store{producer: p, topic: topic}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	var key []byte
	if !event.ActorID.IsNil() {
		key = []byte(event.ActorID.String())
	}

	msg := &producer.Message{
		Topic: s.topic,
		Key:   key,
		Value: value,
		Headers: map[string]string{
			"action":     string(event.Action),
			"request_id": event.RequestID,
		},
	}
	if err := s.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}
