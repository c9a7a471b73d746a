// Package models defines the core domain models for step-graph workflow automation.
package models

import "time"

// Workflow is a named, owned graph of steps with a single trigger entry point.
// Steps are keyed by id; connectivity lives in each step's NextSteps edge list,
// never in collection order.
type Workflow struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"            validate:"required,min=3"`
	Description    string           `json:"description"`
	CreatedBy      string           `json:"created_by"`
	OrganizationID string           `json:"organization_id" validate:"required"`
	ProjectID      string           `json:"project_id"      validate:"required"`
	IsActive       bool             `json:"is_active"`
	Steps          map[string]*Step `json:"steps"`
	TriggerStepID  string           `json:"trigger_step_id"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	DeletedAt      *time.Time       `json:"deleted_at,omitempty"`
}

// Step returns the step with the given id, or nil.
func (w *Workflow) Step(id string) *Step {
	if w.Steps == nil {
		return nil
	}

	return w.Steps[id]
}

// TriggerStep returns the step referenced by TriggerStepID, or nil.
func (w *Workflow) TriggerStep() *Step {
	return w.Step(w.TriggerStepID)
}
