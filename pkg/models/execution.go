package models

import "time"

// ExecutionContext is the ephemeral input of one run. It is supplied by the
// caller and never persisted as part of the workflow.
type ExecutionContext struct {
	ProjectID      string         `json:"project_id"`
	OrganizationID string         `json:"organization_id"`
	ActingUser     string         `json:"acting_user"`

	// TaskID is the task implied by the triggering event, used by task
	// conditions and actions whose config leaves the task unset.
	TaskID string `json:"task_id,omitempty"`

	Variables map[string]any `json:"variables,omitempty"`
}

// StepOutcome is the per-step result classification.
type StepOutcome string

const (
	OutcomeSucceeded StepOutcome = "succeeded"
	OutcomeSkipped   StepOutcome = "skipped"
	OutcomeFailed    StepOutcome = "failed"
)

// StepResult is one record per visited step.
type StepResult struct {
	StepID  string      `json:"step_id"`
	Outcome StepOutcome `json:"outcome"`
	Detail  string      `json:"detail,omitempty"`
}

// RunStatus is the run-level state machine:
// pending -> running -> {completed, partially_failed, aborted}.
type RunStatus string

const (
	RunStatusPending         RunStatus = "pending"
	RunStatusRunning         RunStatus = "running"
	RunStatusCompleted       RunStatus = "completed"
	RunStatusPartiallyFailed RunStatus = "partially_failed"
	RunStatusAborted         RunStatus = "aborted"
)

// ExecutionReport aggregates the step results of one run.
type ExecutionReport struct {
	ID         string       `json:"id"`
	WorkflowID string       `json:"workflow_id"`
	Status     RunStatus    `json:"status"`
	Results    []StepResult `json:"results"`
	Error      string       `json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// ResultFor returns the recorded result for a step id, or nil when the step
// was never visited.
func (r *ExecutionReport) ResultFor(stepID string) *StepResult {
	for i := range r.Results {
		if r.Results[i].StepID == stepID {
			return &r.Results[i]
		}
	}

	return nil
}
