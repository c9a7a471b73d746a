// Package templates provides the workflow template catalog and template
// instantiation.
package templates

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/taskpilot/taskpilot/pkg/models"
)

// Instantiate expands a template into a fresh step set: every placeholder
// id is replaced with a generated one and every edge is rewritten through
// the remap table. The template itself is never mutated; instantiating the
// same template twice yields id-disjoint but edge-isomorphic graphs.
func Instantiate(tpl *models.WorkflowTemplate) (map[string]*models.Step, string, error) {
	if len(tpl.Steps) == 0 {
		return nil, "", fmt.Errorf("template %q has no steps", tpl.Name)
	}

	remap := make(map[string]string, len(tpl.Steps))
	for placeholder := range tpl.Steps {
		remap[placeholder] = uuid.New().String()
	}

	triggerStepID, ok := remap[tpl.TriggerStepID]
	if !ok {
		return nil, "", fmt.Errorf("template %q trigger step %q not in step set", tpl.Name, tpl.TriggerStepID)
	}

	steps := make(map[string]*models.Step, len(tpl.Steps))

	for placeholder, step := range tpl.Steps {
		copied := cloneStep(step)
		copied.ID = remap[placeholder]

		copied.NextSteps = make([]string, 0, len(step.NextSteps))

		for _, next := range step.NextSteps {
			mapped, ok := remap[next]
			if !ok {
				return nil, "", fmt.Errorf("template %q step %q edge references missing step %q", tpl.Name, placeholder, next)
			}

			copied.NextSteps = append(copied.NextSteps, mapped)
		}

		steps[copied.ID] = copied
	}

	return steps, triggerStepID, nil
}

// cloneStep deep-copies a step so instantiated workflows never alias
// template config payloads.
func cloneStep(step *models.Step) *models.Step {
	copied := &models.Step{
		ID:          step.ID,
		Kind:        step.Kind,
		Name:        step.Name,
		Description: step.Description,
	}

	if step.Trigger != nil {
		trigger := *step.Trigger
		copied.Trigger = &trigger
	}

	if step.Condition != nil {
		condition := *step.Condition
		copied.Condition = &condition
	}

	if step.Action != nil {
		action := *step.Action
		if step.Action.Task != nil {
			task := *step.Action.Task
			action.Task = &task
		}

		if step.Action.Notify != nil {
			notify := *step.Action.Notify
			notify.Recipients = append([]string(nil), step.Action.Notify.Recipients...)
			action.Notify = &notify
		}

		copied.Action = &action
	}

	return copied
}
