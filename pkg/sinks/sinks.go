// Package sinks defines the outbound side-effect contracts actions are
// applied through. Implementations live with the surrounding application;
// this package ships a slog notifier and an event-bus notifier.
package sinks

import (
	"context"
	"time"
)

// TaskDraft is the payload for creating a task.
type TaskDraft struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Assignee    string     `json:"assignee,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// TaskPatch is a partial task update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Assignee    *string    `json:"assignee,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Notification is one outbound message to a set of recipients.
type Notification struct {
	ProjectID  string   `json:"project_id"`
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
	SentBy     string   `json:"sent_by,omitempty"`
}

// TaskSink applies task mutations. Each call reports success or failure;
// there is no batching and no rollback.
type TaskSink interface {
	CreateTask(ctx context.Context, projectID string, draft TaskDraft) (string, error)
	UpdateTask(ctx context.Context, projectID, taskID string, patch TaskPatch) error
	AssignTask(ctx context.Context, projectID, taskID, assignee string) error
}

// NotificationSink dispatches notifications. Delivery transport is out of
// scope; implementations decide what Send means.
type NotificationSink interface {
	Send(ctx context.Context, notification Notification) error
}
