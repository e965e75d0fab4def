package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/streadway/amqp"

	"lifenotes-backend-go/internal/models"
)

func TestNewPublishing(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg, err := newPublishing(models.LessonReportedEvent{ReportID: "r1", LessonID: "l1", Reason: "spam", OccurredAt: now}, now)
	if err != nil {
		t.Fatalf("newPublishing: %v", err)
	}
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp.Persistent {
		t.Errorf("headers = %q, %d", msg.ContentType, msg.DeliveryMode)
	}
	if msg.MessageId == "" || !msg.Timestamp.Equal(now) {
		t.Errorf("message id %q, timestamp %v", msg.MessageId, msg.Timestamp)
	}

	var got models.LessonReportedEvent
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.ReportID != "r1" || got.LessonID != "l1" || got.Reason != "spam" {
		t.Errorf("body = %+v", got)
	}
}

func TestNewPublishingRejectsUnencodable(t *testing.T) {
	if _, err := newPublishing(make(chan int), time.Now()); err == nil {
		t.Error("expected an encoding error")
	}
}

func TestPublishRejectsUndeclaredQueue(t *testing.T) {
	p := &RabbitMQPublisher{queues: map[string]bool{"known": true}}
	if err := p.Publish(context.Background(), "unknown", struct{}{}); err == nil {
		t.Error("expected an error for an undeclared queue")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Publish(ctx, "known", struct{}{}); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}
