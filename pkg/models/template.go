package models

// WorkflowTemplate is an immutable step-graph blueprint. Its steps use
// placeholder ids; instantiation produces a fresh step set with generated
// ids and remapped edges, never the template's own.
type WorkflowTemplate struct {
	Name          string           `json:"name"        validate:"required"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	Steps         map[string]*Step `json:"steps"       validate:"required"`
	TriggerStepID string           `json:"trigger_step_id"`
}
