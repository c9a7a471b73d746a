package workflow

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskpilot/taskpilot/pkg/facts"
	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/sinks"
)

type recordingNotifier struct {
	sent []sinks.Notification
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, notification sinks.Notification) error {
	if n.err != nil {
		return n.err
	}

	n.sent = append(n.sent, notification)

	return nil
}

type panickingTaskSink struct{}

func (panickingTaskSink) CreateTask(context.Context, string, sinks.TaskDraft) (string, error) {
	panic("sink exploded")
}

func (panickingTaskSink) UpdateTask(context.Context, string, string, sinks.TaskPatch) error {
	panic("sink exploded")
}

func (panickingTaskSink) AssignTask(context.Context, string, string, string) error {
	panic("sink exploded")
}

func actionOf(cfg models.ActionConfig) *models.Step {
	return &models.Step{
		ID:     "act",
		Kind:   models.StepKindAction,
		Name:   "Action",
		Action: &cfg,
	}
}

func strPtr(s string) *string {
	return &s
}

func TestExecute_CreateTask(t *testing.T) {
	store := facts.NewMemoryStore()
	notifier := &recordingNotifier{}
	executor := NewActionExecutor(store, notifier, slog.Default())

	result := executor.Execute(t.Context(), actionOf(models.ActionConfig{
		Type: models.ActionTaskCreate,
		Task: &models.TaskData{
			Title:    strPtr("Follow up with {{.run.acting_user}}"),
			Priority: strPtr("high"),
		},
	}), evalContext())

	assert.Equal(t, models.OutcomeSucceeded, result.Outcome)
	assert.Contains(t, result.Detail, "created task ")

	taskID := result.Detail[len("created task "):]

	task, err := store.Task(t.Context(), "project-1", taskID)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "Follow up with user-1", task.Title)
	assert.Equal(t, "high", task.Priority)
	assert.Equal(t, "open", task.Status)
}

func TestExecute_UpdateTaskFallsBackToContextTask(t *testing.T) {
	store := facts.NewMemoryStore()
	store.PutTask("project-1", facts.TaskFacts{ID: "task-1", Priority: "low"})

	executor := NewActionExecutor(store, &recordingNotifier{}, slog.Default())

	result := executor.Execute(t.Context(), actionOf(models.ActionConfig{
		Type: models.ActionTaskUpdate,
		Task: &models.TaskData{Priority: strPtr("urgent")},
	}), evalContext())

	assert.Equal(t, models.OutcomeSucceeded, result.Outcome)

	task, err := store.Task(t.Context(), "project-1", "task-1")
	require.NoError(t, err)
	assert.Equal(t, "urgent", task.Priority)
}

func TestExecute_AssignTask(t *testing.T) {
	store := facts.NewMemoryStore()
	store.PutTask("project-1", facts.TaskFacts{ID: "task-1"})

	executor := NewActionExecutor(store, &recordingNotifier{}, slog.Default())

	result := executor.Execute(t.Context(), actionOf(models.ActionConfig{
		Type: models.ActionTaskAssign,
		Task: &models.TaskData{Assignee: strPtr("bob")},
	}), evalContext())

	assert.Equal(t, models.OutcomeSucceeded, result.Outcome)

	task, err := store.Task(t.Context(), "project-1", "task-1")
	require.NoError(t, err)
	assert.Equal(t, "bob", task.Assignee)
}

func TestExecute_NotifyRendersMessage(t *testing.T) {
	notifier := &recordingNotifier{}
	executor := NewActionExecutor(facts.NewMemoryStore(), notifier, slog.Default())

	result := executor.Execute(t.Context(), actionOf(models.ActionConfig{
		Type: models.ActionNotify,
		Notify: &models.NotifyData{
			Recipients: []string{"lead", "owner"},
			Message:    "Task {{.run.task_id}} needs attention",
		},
	}), evalContext())

	assert.Equal(t, models.OutcomeSucceeded, result.Outcome)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Task task-1 needs attention", notifier.sent[0].Message)
	assert.Equal(t, []string{"lead", "owner"}, notifier.sent[0].Recipients)
	assert.Equal(t, "user-1", notifier.sent[0].SentBy)
}

func TestExecute_SinkFailureIsCaptured(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	executor := NewActionExecutor(facts.NewMemoryStore(), notifier, slog.Default())

	result := executor.Execute(t.Context(), actionOf(models.ActionConfig{
		Type: models.ActionNotify,
		Notify: &models.NotifyData{
			Recipients: []string{"lead"},
			Message:    "ping",
		},
	}), evalContext())

	assert.Equal(t, models.OutcomeFailed, result.Outcome)
	assert.Contains(t, result.Detail, "smtp down")
}

func TestExecute_UpdateWithoutAnyTaskID(t *testing.T) {
	executor := NewActionExecutor(facts.NewMemoryStore(), &recordingNotifier{}, slog.Default())

	ectx := evalContext()
	ectx.TaskID = ""

	result := executor.Execute(t.Context(), actionOf(models.ActionConfig{
		Type: models.ActionTaskUpdate,
		Task: &models.TaskData{Priority: strPtr("urgent")},
	}), ectx)

	assert.Equal(t, models.OutcomeFailed, result.Outcome)
}

func TestExecute_MalformedConfig(t *testing.T) {
	executor := NewActionExecutor(facts.NewMemoryStore(), &recordingNotifier{}, slog.Default())

	// task.create without a title.
	result := executor.Execute(t.Context(), actionOf(models.ActionConfig{
		Type: models.ActionTaskCreate,
		Task: &models.TaskData{},
	}), evalContext())

	assert.Equal(t, models.OutcomeFailed, result.Outcome)
}

func TestExecute_PanickingSinkBecomesFailedResult(t *testing.T) {
	executor := NewActionExecutor(panickingTaskSink{}, &recordingNotifier{}, slog.Default())

	result := executor.Execute(t.Context(), actionOf(models.ActionConfig{
		Type: models.ActionTaskCreate,
		Task: &models.TaskData{Title: strPtr("boom")},
	}), evalContext())

	assert.Equal(t, models.OutcomeFailed, result.Outcome)
	assert.Contains(t, result.Detail, "panicked")
}
