package models

import (
	"fmt"
	"time"
)

// ActionType is the closed set of action effects.
type ActionType string

const (
	ActionTaskCreate ActionType = "task.create"
	ActionTaskUpdate ActionType = "task.update"
	ActionTaskAssign ActionType = "task.assign"
	ActionNotify     ActionType = "notify"
)

// TaskData carries task fields for task actions. Pointer fields distinguish
// "leave untouched" from "set to empty" on partial updates.
type TaskData struct {
	TaskID      string     `json:"task_id,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Assignee    *string    `json:"assignee,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
}

// NotifyData carries the notification payload for notify actions. The
// message supports template rendering against the execution context.
type NotifyData struct {
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
}

// ActionConfig is the payload of an action step.
type ActionConfig struct {
	Type   ActionType  `json:"type" validate:"required"`
	Task   *TaskData   `json:"task,omitempty"`
	Notify *NotifyData `json:"notify,omitempty"`
}

// Validate checks that the payload shape matches the action type.
func (c *ActionConfig) Validate() error {
	switch c.Type {
	case ActionTaskCreate:
		if c.Task == nil || c.Task.Title == nil || *c.Task.Title == "" {
			return fmt.Errorf("task.create action requires task data with a title")
		}

		return nil
	case ActionTaskUpdate:
		if c.Task == nil {
			return fmt.Errorf("task.update action requires task data")
		}

		return nil
	case ActionTaskAssign:
		if c.Task == nil || c.Task.Assignee == nil {
			return fmt.Errorf("task.assign action requires an assignee")
		}

		return nil
	case ActionNotify:
		if c.Notify == nil || len(c.Notify.Recipients) == 0 {
			return fmt.Errorf("notify action requires at least one recipient")
		}

		return nil
	case "":
		return fmt.Errorf("action type is required")
	default:
		return fmt.Errorf("unknown action type %q", c.Type)
	}
}
