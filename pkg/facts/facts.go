// Package facts defines the read-only task/project projections conditions
// are evaluated against. The backing store is an external collaborator.
package facts

import (
	"context"
	"time"
)

// TaskFacts is the task field projection consumed by condition evaluation.
type TaskFacts struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Status   string     `json:"status"`
	Priority string     `json:"priority"`
	Assignee string     `json:"assignee"`
	DueDate  *time.Time `json:"due_date,omitempty"`
}

// ProjectFacts is the project field projection consumed by condition
// evaluation.
type ProjectFacts struct {
	ID                string  `json:"id"`
	CompletionPercent float64 `json:"completion_percent"`
}

// Provider supplies current task/project state. Task returns (nil, nil) when
// the task does not exist; a missing task is a legitimate answer, not an
// error.
type Provider interface {
	Task(ctx context.Context, projectID, taskID string) (*TaskFacts, error)
	Project(ctx context.Context, projectID string) (*ProjectFacts, error)
}
