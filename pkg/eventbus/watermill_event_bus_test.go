package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskpilot/taskpilot/pkg/channels/gochannel"
	"github.com/taskpilot/taskpilot/pkg/events"
	"github.com/taskpilot/taskpilot/pkg/models"
)

func newTestBus(t *testing.T) *WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newTestBus(t)

	var (
		mu       sync.Mutex
		received []events.Event
	)

	bus.Handle(events.RunFinishedEvent, func(_ context.Context, event events.Event) error {
		mu.Lock()
		defer mu.Unlock()

		received = append(received, event)

		return nil
	})

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	sent := events.RunFinished{
		BaseEvent: events.BaseEvent{
			ID:         bus.GenerateID(),
			Type:       events.RunFinishedEvent,
			Timestamp:  time.Now().UTC(),
			WorkflowID: "wf-1",
		},
		ExecutionID: "run-1",
		Status:      models.RunStatusCompleted,
	}

	require.NoError(t, bus.Publish(ctx, string(events.RunFinishedEvent), sent))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	finished, ok := received[0].(*events.RunFinished)
	require.True(t, ok)
	assert.Equal(t, "run-1", finished.ExecutionID)
	assert.Equal(t, models.RunStatusCompleted, finished.Status)
	assert.Equal(t, "wf-1", finished.WorkflowID)
}

func TestWatermillEventBus_UnhandledEventsAreAcked(t *testing.T) {
	bus := newTestBus(t)

	handled := make(chan events.Event, 1)

	bus.Handle(events.StepFinishedEvent, func(_ context.Context, event events.Event) error {
		handled <- event

		return nil
	})

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for run.started; it must not wedge the stream.
	require.NoError(t, bus.Publish(ctx, "k1", events.RunStarted{
		BaseEvent: events.BaseEvent{ID: "1", Type: events.RunStartedEvent},
	}))

	require.NoError(t, bus.Publish(ctx, "k2", events.StepFinished{
		BaseEvent: events.BaseEvent{ID: "2", Type: events.StepFinishedEvent},
		StepID:    "s1",
		Outcome:   models.OutcomeSucceeded,
	}))

	select {
	case event := <-handled:
		stepFinished, ok := event.(*events.StepFinished)
		require.True(t, ok)
		assert.Equal(t, "s1", stepFinished.StepID)
	case <-time.After(2 * time.Second):
		t.Fatal("step.finished event never reached its handler")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
