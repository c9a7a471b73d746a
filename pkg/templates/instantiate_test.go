package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/workflow"
)

func sampleTemplate() *models.WorkflowTemplate {
	return builtinTemplates()[0]
}

func TestInstantiate_RemapsIDsAndEdges(t *testing.T) {
	tpl := sampleTemplate()

	steps, triggerStepID, err := Instantiate(tpl)
	require.NoError(t, err)

	assert.Len(t, steps, len(tpl.Steps))

	// No placeholder id survives instantiation.
	for placeholder := range tpl.Steps {
		assert.NotContains(t, steps, placeholder)
	}

	// Every edge points at a step in the new arena.
	for _, step := range steps {
		assert.Equal(t, step.ID, steps[step.ID].ID)

		for _, next := range step.NextSteps {
			assert.Contains(t, steps, next)
		}
	}

	require.Contains(t, steps, triggerStepID)
	assert.Equal(t, models.StepKindTrigger, steps[triggerStepID].Kind)
}

func TestInstantiate_ResultPassesValidation(t *testing.T) {
	steps, triggerStepID, err := Instantiate(sampleTemplate())
	require.NoError(t, err)

	wf := &models.Workflow{
		ID:             "wf-1",
		Name:           "From template",
		OrganizationID: "org-1",
		ProjectID:      "project-1",
		Steps:          steps,
		TriggerStepID:  triggerStepID,
	}

	require.NoError(t, workflow.Validate(wf))
}

func TestInstantiate_TwiceYieldsDisjointIDs(t *testing.T) {
	tpl := sampleTemplate()

	first, _, err := Instantiate(tpl)
	require.NoError(t, err)

	second, _, err := Instantiate(tpl)
	require.NoError(t, err)

	for id := range first {
		assert.NotContains(t, second, id)
	}
}

func TestInstantiate_DoesNotAliasTemplateConfigs(t *testing.T) {
	tpl := sampleTemplate()

	steps, _, err := Instantiate(tpl)
	require.NoError(t, err)

	for _, step := range steps {
		if step.Kind != models.StepKindAction {
			continue
		}

		step.Action.Notify.Recipients[0] = "mutated"
	}

	for _, step := range tpl.Steps {
		if step.Kind == models.StepKindAction {
			assert.Equal(t, "project-lead", step.Action.Notify.Recipients[0])
		}
	}
}

func TestInstantiate_MissingTriggerReference(t *testing.T) {
	tpl := &models.WorkflowTemplate{
		Name:          "broken",
		Steps:         sampleTemplate().Steps,
		TriggerStepID: "nowhere",
	}

	_, _, err := Instantiate(tpl)
	require.Error(t, err)
}

func TestInstantiate_EmptyTemplate(t *testing.T) {
	_, _, err := Instantiate(&models.WorkflowTemplate{Name: "empty"})
	require.Error(t, err)
}
