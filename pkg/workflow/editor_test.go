package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskpilot/taskpilot/pkg/models"
)

func TestAddStep_GeneratesID(t *testing.T) {
	wf := validWorkflow()
	step := notifyStep("")

	require.NoError(t, AddStep(wf, step))
	assert.NotEmpty(t, step.ID)
	assert.Same(t, step, wf.Steps[step.ID])
}

func TestAddStep_FirstTriggerSetsEntryPoint(t *testing.T) {
	wf := &models.Workflow{ID: "wf-2", Name: "Draft"}

	require.NoError(t, AddStep(wf, triggerStep("t1")))
	assert.Equal(t, "t1", wf.TriggerStepID)
}

func TestAddStep_SecondTriggerRefused(t *testing.T) {
	wf := validWorkflow()

	err := AddStep(wf, triggerStep("t2"))
	requireValidationCode(t, err, CodeMultipleTriggers)
	assert.Nil(t, wf.Steps["t2"])
}

func TestAddStep_DuplicateIDRefused(t *testing.T) {
	wf := validWorkflow()

	requireValidationCode(t, AddStep(wf, notifyStep("a1")), CodeDuplicateStep)
}

func TestUpdateStep_ReplacesConfig(t *testing.T) {
	wf := validWorkflow()

	updated := conditionStep("c1", "should-be-ignored")
	updated.Name = "Renamed"
	updated.Condition = &models.ConditionConfig{
		Type:       models.ConditionProjectCompletionAbove,
		Percentage: 50,
	}

	require.NoError(t, UpdateStep(wf, updated))

	got := wf.Steps["c1"]
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, models.ConditionProjectCompletionAbove, got.Condition.Type)
	// Edges are managed through AddEdge/RemoveEdge, not step updates.
	assert.Equal(t, []string{"a1"}, got.NextSteps)
}

func TestUpdateStep_KindChangeRefused(t *testing.T) {
	wf := validWorkflow()

	replacement := notifyStep("c1")

	requireValidationCode(t, UpdateStep(wf, replacement), CodeInvalidStepConfig)
	assert.Equal(t, models.StepKindCondition, wf.Steps["c1"].Kind)
}

func TestUpdateStep_NotFound(t *testing.T) {
	wf := validWorkflow()

	requireValidationCode(t, UpdateStep(wf, notifyStep("ghost")), CodeStepNotFound)
}

func TestRemoveStep_CascadesEdgeRemoval(t *testing.T) {
	wf := validWorkflow()
	wf.Steps["a2"] = notifyStep("a2")
	wf.Steps["c1"].NextSteps = []string{"a1", "a2"}

	require.NoError(t, RemoveStep(wf, "a1"))

	assert.Nil(t, wf.Steps["a1"])
	assert.Equal(t, []string{"a2"}, wf.Steps["c1"].NextSteps)
	require.NoError(t, Validate(wf))
}

func TestRemoveStep_TriggerRefused(t *testing.T) {
	wf := validWorkflow()

	requireValidationCode(t, RemoveStep(wf, "t1"), CodeCannotRemoveOnlyTrigger)
	assert.NotNil(t, wf.Steps["t1"])
}

func TestRemoveStep_NotFound(t *testing.T) {
	wf := validWorkflow()

	requireValidationCode(t, RemoveStep(wf, "ghost"), CodeStepNotFound)
}

func TestAddEdge(t *testing.T) {
	wf := validWorkflow()
	wf.Steps["a2"] = notifyStep("a2")

	require.NoError(t, AddEdge(wf, "a1", "a2"))
	assert.Equal(t, []string{"a2"}, wf.Steps["a1"].NextSteps)

	// Adding the same edge twice is a no-op.
	require.NoError(t, AddEdge(wf, "a1", "a2"))
	assert.Equal(t, []string{"a2"}, wf.Steps["a1"].NextSteps)
}

func TestAddEdge_IntoTriggerRefused(t *testing.T) {
	wf := validWorkflow()

	requireValidationCode(t, AddEdge(wf, "a1", "t1"), CodeEdgeIntoTrigger)
}

func TestAddEdge_MissingTargetRefused(t *testing.T) {
	wf := validWorkflow()

	requireValidationCode(t, AddEdge(wf, "a1", "ghost"), CodeDanglingEdge)
}

func TestRemoveEdge(t *testing.T) {
	wf := validWorkflow()

	require.NoError(t, RemoveEdge(wf, "c1", "a1"))
	assert.Empty(t, wf.Steps["c1"].NextSteps)

	// Removing an absent edge is a no-op.
	require.NoError(t, RemoveEdge(wf, "c1", "a1"))
}
