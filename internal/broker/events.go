package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderPlaced publishes an OrderPlaced event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return ep.producer.PublishEvent(ctx, event.OrderID, event)
}

// DecodeOrderPlaced unmarshals an OrderPlaced event from a message,
// returning false when the message carries a different event type
func DecodeOrderPlaced(msg kafka.Message) (*models.OrderPlacedEvent, bool, error) {
	var base models.BaseEvent
	if err := json.Unmarshal(msg.Value, &base); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal base event: %w", err)
	}
	if base.EventType != models.EventTypeOrderPlaced {
		return nil, false, nil
	}

	var event models.OrderPlacedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal OrderPlaced event: %w", err)
	}
	return &event, true, nil
}
