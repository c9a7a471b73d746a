// Package workflow implements the workflow graph core: structural
// validation, draft editing, condition evaluation, action execution and the
// run engine.
package workflow

import (
	"fmt"
	"sort"

	"github.com/taskpilot/taskpilot/pkg/models"
)

// ValidationCode identifies a structural invariant violation.
type ValidationCode string

const (
	CodeMissingTrigger          ValidationCode = "missing_trigger"
	CodeMultipleTriggers        ValidationCode = "multiple_triggers"
	CodeDanglingEdge            ValidationCode = "dangling_edge"
	CodeEdgeIntoTrigger         ValidationCode = "edge_into_trigger"
	CodeOrphanTriggerReference  ValidationCode = "orphan_trigger_reference"
	CodeCannotRemoveOnlyTrigger ValidationCode = "cannot_remove_only_trigger"
	CodeInvalidStepConfig       ValidationCode = "invalid_step_config"
	CodeDuplicateStep           ValidationCode = "duplicate_step"
	CodeStepNotFound            ValidationCode = "step_not_found"
)

// ValidationError reports a single graph invariant violation. Validation
// stops at the first violation; checks run in a fixed order so callers see
// the most fundamental problem first.
type ValidationError struct {
	Code   ValidationCode
	StepID string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("workflow validation failed (%s, step %s): %s", e.Code, e.StepID, e.Detail)
	}

	return fmt.Sprintf("workflow validation failed (%s): %s", e.Code, e.Detail)
}

func newValidationError(code ValidationCode, stepID, detail string) *ValidationError {
	return &ValidationError{Code: code, StepID: stepID, Detail: detail}
}

// Validate enforces the structural invariants of a workflow graph:
//
//  1. exactly one trigger step exists,
//  2. every edge targets an existing step,
//  3. no edge targets the trigger step,
//  4. TriggerStepID references the trigger step,
//  5. each step's config payload matches its kind.
//
// Validate is pure and safe to call concurrently on distinct drafts.
func Validate(wf *models.Workflow) error {
	stepIDs := sortedStepIDs(wf)

	var triggers []string

	for _, id := range stepIDs {
		if wf.Steps[id].Kind == models.StepKindTrigger {
			triggers = append(triggers, id)
		}
	}

	if len(triggers) == 0 {
		return newValidationError(CodeMissingTrigger, "", "workflow has no trigger step")
	}

	if len(triggers) > 1 {
		return newValidationError(CodeMultipleTriggers, triggers[1],
			fmt.Sprintf("workflow has %d trigger steps, want exactly one", len(triggers)))
	}

	for _, id := range stepIDs {
		step := wf.Steps[id]

		for _, next := range step.NextSteps {
			target, ok := wf.Steps[next]
			if !ok {
				return newValidationError(CodeDanglingEdge, id,
					fmt.Sprintf("edge references missing step %q", next))
			}

			if target.Kind == models.StepKindTrigger {
				return newValidationError(CodeEdgeIntoTrigger, id,
					fmt.Sprintf("edge targets trigger step %q", next))
			}
		}
	}

	if wf.TriggerStepID != triggers[0] {
		return newValidationError(CodeOrphanTriggerReference, wf.TriggerStepID,
			fmt.Sprintf("trigger_step_id %q does not reference the trigger step %q", wf.TriggerStepID, triggers[0]))
	}

	for _, id := range stepIDs {
		if err := validateStepConfig(wf.Steps[id]); err != nil {
			return err
		}
	}

	return nil
}

func validateStepConfig(step *models.Step) error {
	cfg, err := step.Config()
	if err != nil {
		return newValidationError(CodeInvalidStepConfig, step.ID, err.Error())
	}

	switch payload := cfg.(type) {
	case *models.TriggerConfig:
		err = payload.Validate()
	case *models.ConditionConfig:
		err = payload.Validate()
	case *models.ActionConfig:
		err = payload.Validate()
	}

	if err != nil {
		return newValidationError(CodeInvalidStepConfig, step.ID, err.Error())
	}

	return nil
}

// sortedStepIDs gives a deterministic iteration order over the step arena so
// validation always reports the same violation for the same draft.
func sortedStepIDs(wf *models.Workflow) []string {
	ids := make([]string, 0, len(wf.Steps))
	for id := range wf.Steps {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
