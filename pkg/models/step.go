package models

import "fmt"

// StepKind is the closed set of node kinds a workflow graph is built from.
type StepKind string

const (
	StepKindTrigger   StepKind = "trigger"
	StepKindCondition StepKind = "condition"
	StepKindAction    StepKind = "action"
)

// Step is a single node in a workflow graph. Exactly one of the config
// payloads is set, matching Kind. NextSteps holds outgoing edges by step id,
// in traversal order.
type Step struct {
	ID          string   `json:"id"          validate:"required"`
	Kind        StepKind `json:"kind"        validate:"required"`
	Name        string   `json:"name"        validate:"required,min=1"`
	Description string   `json:"description"`

	Trigger   *TriggerConfig   `json:"trigger,omitempty"`
	Condition *ConditionConfig `json:"condition,omitempty"`
	Action    *ActionConfig    `json:"action,omitempty"`

	NextSteps []string `json:"next_steps"`
}

// Config returns the payload matching Kind, or an error when the step was
// built with a mismatched or missing payload.
func (s *Step) Config() (any, error) {
	switch s.Kind {
	case StepKindTrigger:
		if s.Trigger == nil {
			return nil, fmt.Errorf("step %s: trigger step without trigger config", s.ID)
		}

		return s.Trigger, nil
	case StepKindCondition:
		if s.Condition == nil {
			return nil, fmt.Errorf("step %s: condition step without condition config", s.ID)
		}

		return s.Condition, nil
	case StepKindAction:
		if s.Action == nil {
			return nil, fmt.Errorf("step %s: action step without action config", s.ID)
		}

		return s.Action, nil
	default:
		return nil, fmt.Errorf("step %s: unknown step kind %q", s.ID, s.Kind)
	}
}

// HasNext reports whether the step already has an edge to the given id.
func (s *Step) HasNext(id string) bool {
	for _, next := range s.NextSteps {
		if next == id {
			return true
		}
	}

	return false
}
