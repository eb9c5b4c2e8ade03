// Package events publishes token registry changes to Pub/Sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cloud.google.com/go/pubsub/v2"

	"github.com/tinywideclouds/go-push-registration/pkg/registry"
)

// Sender delivers one encoded message to the topic and returns its server id.
type Sender interface {
	Send(ctx context.Context, data []byte, attributes map[string]string) (string, error)
}

// Publisher implements registry.EventPublisher.
type Publisher struct {
	sender Sender
	logger *slog.Logger
}

func NewPublisher(sender Sender, logger *slog.Logger) *Publisher {
	return &Publisher{
		sender: sender,
		logger: logger.With("component", "EventPublisher"),
	}
}

func (p *Publisher) Publish(ctx context.Context, event registry.TokenEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	id, err := p.sender.Send(ctx, payload, map[string]string{
		"event_type": event.Type,
		"platform":   string(event.Platform),
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	p.logger.Debug("Event published", "type", event.Type, "message_id", id)
	return nil
}

// PubsubSender sends through a pubsub v2 Publisher and waits for the ack.
type PubsubSender struct {
	publisher *pubsub.Publisher
}

func NewPubsubSender(client *pubsub.Client, topicID string) *PubsubSender {
	return &PubsubSender{publisher: client.Publisher(topicID)}
}

func (s *PubsubSender) Send(ctx context.Context, data []byte, attributes map[string]string) (string, error) {
	return s.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attributes,
	}).Get(ctx)
}

// Stop flushes pending messages.
func (s *PubsubSender) Stop() {
	s.publisher.Stop()
}

// NopPublisher drops events. Used when no topic is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, registry.TokenEvent) error { return nil }
