package core

import (
	"context"

	"go.uber.org/zap"
)

// Queues domain events are published to.
const (
	QueuePremiumActivated = "lifenotes.premium.activated"
	QueueLessonReported   = "lifenotes.lesson.reported"
)

// EventQueues lists every queue a publisher must declare.
var EventQueues = []string{QueuePremiumActivated, QueueLessonReported}

// EventPublisher delivers domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, queue string, payload interface{}) error
}

// publishEvent sends an event when a publisher is configured. Delivery failures
// are logged; the request that produced the event has already succeeded.
func publishEvent(ctx context.Context, publisher EventPublisher, logger *zap.Logger, queue string, payload interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, queue, payload); err != nil {
		logger.Warn("Failed to publish event", zap.String("queue", queue), zap.Error(err))
	}
}
