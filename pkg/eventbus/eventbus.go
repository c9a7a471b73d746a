// Package eventbus provides publish/subscribe for run lifecycle events.
package eventbus

import (
	"context"

	"github.com/taskpilot/taskpilot/pkg/events"
)

// EventHandler processes a single decoded event.
type EventHandler func(ctx context.Context, event events.Event) error

// EventBus publishes and subscribes to workflow lifecycle events.
type EventBus interface {
	Publish(ctx context.Context, key string, event events.Event) error
	Handle(eventType events.EventType, handler EventHandler)
	Subscribe(ctx context.Context) error
	GenerateID() string
	Close() error
}
