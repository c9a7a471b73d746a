package sinks

import (
	"context"
	"time"

	"github.com/taskpilot/taskpilot/pkg/eventbus"
	"github.com/taskpilot/taskpilot/pkg/events"
)

// BusNotifier publishes notifications as events on the event bus. Delivery
// channels (email, chat, in-app) subscribe downstream.
type BusNotifier struct {
	bus eventbus.EventBus
}

func NewBusNotifier(bus eventbus.EventBus) *BusNotifier {
	return &BusNotifier{bus: bus}
}

func (n *BusNotifier) Send(ctx context.Context, notification Notification) error {
	event := events.NotificationSent{
		BaseEvent: events.BaseEvent{
			ID:        n.bus.GenerateID(),
			Type:      events.NotificationSentEvent,
			Timestamp: time.Now().UTC(),
		},
		ProjectID:  notification.ProjectID,
		Recipients: notification.Recipients,
		Message:    notification.Message,
		SentBy:     notification.SentBy,
	}

	return n.bus.Publish(ctx, notification.ProjectID, event)
}
