package services

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskpilot/taskpilot/pkg/facts"
	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/persistence/file"
	"github.com/taskpilot/taskpilot/pkg/sinks"
	"github.com/taskpilot/taskpilot/pkg/workflow"
)

func newExecutionFixture(t *testing.T) (*Workflow, *Execution, *facts.MemoryStore) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	store := facts.NewMemoryStore()

	evaluator := workflow.NewEvaluator(store)
	executor := workflow.NewActionExecutor(store, sinks.NewLogNotifier(slog.Default()), slog.Default())
	engine := workflow.NewEngine(evaluator, executor, nil, nil, slog.Default())

	return NewWorkflow(p), NewExecution(p, engine, slog.Default()), store
}

func TestExecution_RunPersistsReport(t *testing.T) {
	workflowService, executionService, _ := newExecutionFixture(t)

	created, err := workflowService.Create(t.Context(), draftWorkflow())
	require.NoError(t, err)

	_, err = workflowService.SetActive(t.Context(), created.ID, true)
	require.NoError(t, err)

	report, err := executionService.Run(t.Context(), created.ID, &models.ExecutionContext{
		ActingUser: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, report.Status)

	// The run context inherited project and organization from the workflow.
	stored, err := executionService.FetchByID(t.Context(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, stored.WorkflowID)
	assert.Len(t, stored.Results, 2)
}

func TestExecution_InactiveWorkflowAbortsAndPersists(t *testing.T) {
	workflowService, executionService, _ := newExecutionFixture(t)

	created, err := workflowService.Create(t.Context(), draftWorkflow())
	require.NoError(t, err)

	report, err := executionService.Run(t.Context(), created.ID, &models.ExecutionContext{})
	require.ErrorIs(t, err, ErrWorkflowInactive)
	require.NotNil(t, report)
	assert.Equal(t, models.RunStatusAborted, report.Status)

	// Aborted runs are persisted for auditability.
	stored, fetchErr := executionService.FetchByID(t.Context(), report.ID)
	require.NoError(t, fetchErr)
	assert.Equal(t, models.RunStatusAborted, stored.Status)
}

func TestExecution_RunMissingWorkflow(t *testing.T) {
	_, executionService, _ := newExecutionFixture(t)

	_, err := executionService.Run(t.Context(), "ghost", &models.ExecutionContext{})
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestExecution_FetchByWorkflow(t *testing.T) {
	workflowService, executionService, _ := newExecutionFixture(t)

	created, err := workflowService.Create(t.Context(), draftWorkflow())
	require.NoError(t, err)

	_, err = workflowService.SetActive(t.Context(), created.ID, true)
	require.NoError(t, err)

	for range 3 {
		_, err := executionService.Run(t.Context(), created.ID, &models.ExecutionContext{})
		require.NoError(t, err)
	}

	reports, err := executionService.FetchByWorkflow(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Len(t, reports, 3)
}

func TestExecution_FetchByWorkflowMissing(t *testing.T) {
	_, executionService, _ := newExecutionFixture(t)

	_, err := executionService.FetchByWorkflow(t.Context(), "ghost")
	assert.True(t, IsNotFoundError(err))
}
