// Package web provides HTTP request and response types for the workflow API.
package web

import "github.com/taskpilot/taskpilot/pkg/models"

// CreateWorkflowRequest is the request body for creating a new workflow.
// The step graph is part of the create payload and must pass structural
// validation, so the workflow exists with a trigger from the first save.
type CreateWorkflowRequest struct {
	Name           string                  `json:"name"            validate:"required,min=3"`
	Description    string                  `json:"description"`
	CreatedBy      string                  `json:"created_by"`
	OrganizationID string                  `json:"organization_id" validate:"required"`
	ProjectID      string                  `json:"project_id"      validate:"required"`
	Steps          map[string]*models.Step `json:"steps"           validate:"required,min=1"`
	TriggerStepID  string                  `json:"trigger_step_id" validate:"required"`
}

// UpdateWorkflowRequest is the request body for updating a workflow. All
// fields are optional to support partial updates; the step graph is edited
// through the step and edge endpoints instead.
type UpdateWorkflowRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string `json:"description,omitempty"`
}

// StepRequest is the request body for adding or updating a workflow step.
type StepRequest struct {
	ID          string                   `json:"id,omitempty"`
	Kind        models.StepKind          `json:"kind"        validate:"required,oneof=trigger condition action"`
	Name        string                   `json:"name"        validate:"required,min=1"`
	Description string                   `json:"description"`
	Trigger     *models.TriggerConfig    `json:"trigger,omitempty"`
	Condition   *models.ConditionConfig  `json:"condition,omitempty"`
	Action      *models.ActionConfig     `json:"action,omitempty"`
	NextSteps   []string                 `json:"next_steps,omitempty"`
}

// Step builds the domain step from the request.
func (r *StepRequest) Step() *models.Step {
	return &models.Step{
		ID:          r.ID,
		Kind:        r.Kind,
		Name:        r.Name,
		Description: r.Description,
		Trigger:     r.Trigger,
		Condition:   r.Condition,
		Action:      r.Action,
		NextSteps:   r.NextSteps,
	}
}

// EdgeRequest is the request body for connecting or disconnecting two steps.
type EdgeRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to"   validate:"required"`
}

// RunWorkflowRequest is the request body for manually running a workflow.
// Project and organization default to the workflow's own when omitted.
type RunWorkflowRequest struct {
	TaskID     string         `json:"task_id,omitempty"`
	ActingUser string         `json:"acting_user,omitempty"`
	Variables  map[string]any `json:"variables,omitempty"`
}

// InstantiateTemplateRequest is the request body for creating a workflow
// from a catalog template.
type InstantiateTemplateRequest struct {
	WorkflowName   string `json:"workflow_name,omitempty"  validate:"omitempty,min=3"`
	Description    string `json:"description,omitempty"`
	CreatedBy      string `json:"created_by,omitempty"`
	OrganizationID string `json:"organization_id"          validate:"required"`
	ProjectID      string `json:"project_id"               validate:"required"`
}
