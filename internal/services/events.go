package services

import (
	"context"

	"go.uber.org/zap"
)

// Routing keys of the domain events emitted after successful writes.
const (
	EventUserSignedUp   = "user.signed_up"
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// EventPublisher delivers domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// publishEvent sends an event if a publisher is configured. Broker failures
// are logged and never fail the calling operation.
func publishEvent(ctx context.Context, pub EventPublisher, log *zap.Logger, routingKey string, payload any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, routingKey, payload); err != nil {
		log.Warn("failed to publish event", zap.String("event", routingKey), zap.Error(err))
	}
}
