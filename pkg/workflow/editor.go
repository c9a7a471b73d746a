package workflow

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/taskpilot/taskpilot/pkg/models"
)

// AddStep inserts a step into the draft. Steps without an id get one
// generated. Adding a second trigger is refused; adding the first trigger
// also sets TriggerStepID.
func AddStep(wf *models.Workflow, step *models.Step) error {
	if wf.Steps == nil {
		wf.Steps = make(map[string]*models.Step)
	}

	if step.ID == "" {
		step.ID = uuid.New().String()
	}

	if _, exists := wf.Steps[step.ID]; exists {
		return newValidationError(CodeDuplicateStep, step.ID, "step id already present in workflow")
	}

	if err := validateStepConfig(step); err != nil {
		return err
	}

	if step.Kind == models.StepKindTrigger {
		if wf.TriggerStep() != nil {
			return newValidationError(CodeMultipleTriggers, step.ID, "workflow already has a trigger step")
		}

		wf.TriggerStepID = step.ID
	}

	wf.Steps[step.ID] = step

	return nil
}

// UpdateStep replaces a step's name, description and config. Kind changes
// are refused; replacing a trigger with a non-trigger would change the graph
// entry point through the back door.
func UpdateStep(wf *models.Workflow, step *models.Step) error {
	existing := wf.Step(step.ID)
	if existing == nil {
		return newValidationError(CodeStepNotFound, step.ID, "step not found in workflow")
	}

	if existing.Kind != step.Kind {
		return newValidationError(CodeInvalidStepConfig, step.ID,
			fmt.Sprintf("cannot change step kind from %q to %q", existing.Kind, step.Kind))
	}

	if err := validateStepConfig(step); err != nil {
		return err
	}

	existing.Name = step.Name
	existing.Description = step.Description
	existing.Trigger = step.Trigger
	existing.Condition = step.Condition
	existing.Action = step.Action

	return nil
}

// RemoveStep deletes a step and cascades: the step's id is removed from
// every other step's edge list, leaving no dangling references. Removing the
// sole trigger is refused because the workflow would lose its entry point.
func RemoveStep(wf *models.Workflow, stepID string) error {
	step := wf.Step(stepID)
	if step == nil {
		return newValidationError(CodeStepNotFound, stepID, "step not found in workflow")
	}

	if step.Kind == models.StepKindTrigger {
		return newValidationError(CodeCannotRemoveOnlyTrigger, stepID,
			"cannot remove the workflow's only trigger step")
	}

	delete(wf.Steps, stepID)

	for _, other := range wf.Steps {
		other.NextSteps = removeID(other.NextSteps, stepID)
	}

	return nil
}

// AddEdge connects from -> to. The target must exist and must not be a
// trigger step.
func AddEdge(wf *models.Workflow, from, to string) error {
	source := wf.Step(from)
	if source == nil {
		return newValidationError(CodeStepNotFound, from, "edge source not found in workflow")
	}

	target := wf.Step(to)
	if target == nil {
		return newValidationError(CodeDanglingEdge, from,
			fmt.Sprintf("edge target %q not found in workflow", to))
	}

	if target.Kind == models.StepKindTrigger {
		return newValidationError(CodeEdgeIntoTrigger, from,
			fmt.Sprintf("edge target %q is a trigger step", to))
	}

	if source.HasNext(to) {
		return nil
	}

	source.NextSteps = append(source.NextSteps, to)

	return nil
}

// RemoveEdge disconnects from -> to. Removing an absent edge is a no-op.
func RemoveEdge(wf *models.Workflow, from, to string) error {
	source := wf.Step(from)
	if source == nil {
		return newValidationError(CodeStepNotFound, from, "edge source not found in workflow")
	}

	source.NextSteps = removeID(source.NextSteps, to)

	return nil
}

func removeID(ids []string, id string) []string {
	filtered := ids[:0]

	for _, candidate := range ids {
		if candidate != id {
			filtered = append(filtered, candidate)
		}
	}

	return filtered
}
