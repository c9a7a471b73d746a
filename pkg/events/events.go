// Package events defines event types published over the run lifecycle.
package events

import (
	"time"

	"github.com/taskpilot/taskpilot/pkg/models"
)

type EventType string

const Topic = "taskpilot.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	RunStartedEvent       EventType = "run.started"
	RunFinishedEvent      EventType = "run.finished"
	StepFinishedEvent     EventType = "step.finished"
	NotificationSentEvent EventType = "notification.sent"
)

// Event is anything publishable on the event bus.
type Event interface {
	GetType() EventType
}

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
}

type RunStarted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	ProjectID   string `json:"project_id"`
	ActingUser  string `json:"acting_user,omitempty"`
}

func (e RunStarted) GetType() EventType {
	return RunStartedEvent
}

type StepFinished struct {
	BaseEvent

	ExecutionID string             `json:"execution_id"`
	StepID      string             `json:"step_id"`
	StepKind    models.StepKind    `json:"step_kind"`
	Outcome     models.StepOutcome `json:"outcome"`
	Detail      string             `json:"detail,omitempty"`
}

func (e StepFinished) GetType() EventType {
	return StepFinishedEvent
}

type RunFinished struct {
	BaseEvent

	ExecutionID string           `json:"execution_id"`
	Status      models.RunStatus `json:"status"`
	Duration    time.Duration    `json:"duration"`
}

func (e RunFinished) GetType() EventType {
	return RunFinishedEvent
}

// NotificationSent is published by the event-bus notification sink so the
// surrounding application can fan the message out to its delivery channels.
type NotificationSent struct {
	BaseEvent

	ProjectID  string   `json:"project_id"`
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
	SentBy     string   `json:"sent_by,omitempty"`
}

func (e NotificationSent) GetType() EventType {
	return NotificationSentEvent
}
