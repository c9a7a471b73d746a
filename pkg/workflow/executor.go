package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/sinks"
	"github.com/taskpilot/taskpilot/pkg/template"
)

// ActionExecutor applies action steps through the external sinks. Sink
// failures are captured into the step result and never propagate; a failing
// action must not take sibling branches down with it.
type ActionExecutor struct {
	tasks    sinks.TaskSink
	notifier sinks.NotificationSink
	logger   *slog.Logger
}

func NewActionExecutor(tasks sinks.TaskSink, notifier sinks.NotificationSink, logger *slog.Logger) *ActionExecutor {
	return &ActionExecutor{
		tasks:    tasks,
		notifier: notifier,
		logger:   logger.With("module", "action_executor"),
	}
}

// Execute applies one action step and reports the per-step outcome.
func (x *ActionExecutor) Execute(ctx context.Context, step *models.Step, ectx models.ExecutionContext) (result models.StepResult) {
	result = models.StepResult{StepID: step.ID, Outcome: models.OutcomeSucceeded}

	// Sinks are external collaborators; a panicking sink must still come
	// back as a failed step, not a dead run.
	defer func() {
		if r := recover(); r != nil {
			result.Outcome = models.OutcomeFailed
			result.Detail = fmt.Sprintf("action sink panicked: %v", r)
		}
	}()

	cfg := step.Action
	if step.Kind != models.StepKindAction || cfg == nil {
		result.Outcome = models.OutcomeFailed
		result.Detail = "step is not an action or has no action config"

		return result
	}

	if err := cfg.Validate(); err != nil {
		result.Outcome = models.OutcomeFailed
		result.Detail = "malformed action config: " + err.Error()

		return result
	}

	var err error

	var detail string

	switch cfg.Type {
	case models.ActionTaskCreate:
		detail, err = x.createTask(ctx, cfg.Task, ectx)
	case models.ActionTaskUpdate:
		detail, err = x.updateTask(ctx, cfg.Task, ectx)
	case models.ActionTaskAssign:
		detail, err = x.assignTask(ctx, cfg.Task, ectx)
	case models.ActionNotify:
		detail, err = x.notify(ctx, cfg.Notify, ectx)
	default:
		err = fmt.Errorf("unknown action type %q", cfg.Type)
	}

	if err != nil {
		x.logger.Warn("Action failed", "step_id", step.ID, "action_type", cfg.Type, "error", err)

		result.Outcome = models.OutcomeFailed
		result.Detail = err.Error()

		return result
	}

	result.Detail = detail

	return result
}

func (x *ActionExecutor) createTask(ctx context.Context, data *models.TaskData, ectx models.ExecutionContext) (string, error) {
	draft := sinks.TaskDraft{DueDate: data.DueDate}

	title, err := template.RenderWithContext(deref(data.Title), &ectx)
	if err != nil {
		return "", fmt.Errorf("failed to render task title: %w", err)
	}

	draft.Title = title

	description, err := template.RenderWithContext(deref(data.Description), &ectx)
	if err != nil {
		return "", fmt.Errorf("failed to render task description: %w", err)
	}

	draft.Description = description
	draft.Assignee = deref(data.Assignee)
	draft.Priority = deref(data.Priority)

	taskID, err := x.tasks.CreateTask(ctx, ectx.ProjectID, draft)
	if err != nil {
		return "", fmt.Errorf("task sink failed to create task: %w", err)
	}

	return "created task " + taskID, nil
}

func (x *ActionExecutor) updateTask(ctx context.Context, data *models.TaskData, ectx models.ExecutionContext) (string, error) {
	taskID := data.TaskID
	if taskID == "" {
		taskID = ectx.TaskID
	}

	if taskID == "" {
		return "", fmt.Errorf("no task id in action config or execution context")
	}

	patch := sinks.TaskPatch{
		Title:       data.Title,
		Description: data.Description,
		Assignee:    data.Assignee,
		Priority:    data.Priority,
		DueDate:     data.DueDate,
	}

	if err := x.tasks.UpdateTask(ctx, ectx.ProjectID, taskID, patch); err != nil {
		return "", fmt.Errorf("task sink failed to update task %s: %w", taskID, err)
	}

	return "updated task " + taskID, nil
}

func (x *ActionExecutor) assignTask(ctx context.Context, data *models.TaskData, ectx models.ExecutionContext) (string, error) {
	taskID := data.TaskID
	if taskID == "" {
		taskID = ectx.TaskID
	}

	if taskID == "" {
		return "", fmt.Errorf("no task id in action config or execution context")
	}

	assignee := deref(data.Assignee)

	if err := x.tasks.AssignTask(ctx, ectx.ProjectID, taskID, assignee); err != nil {
		return "", fmt.Errorf("task sink failed to assign task %s: %w", taskID, err)
	}

	return fmt.Sprintf("assigned task %s to %s", taskID, assignee), nil
}

func (x *ActionExecutor) notify(ctx context.Context, data *models.NotifyData, ectx models.ExecutionContext) (string, error) {
	message, err := template.RenderWithContext(data.Message, &ectx)
	if err != nil {
		return "", fmt.Errorf("failed to render notification message: %w", err)
	}

	notification := sinks.Notification{
		ProjectID:  ectx.ProjectID,
		Recipients: data.Recipients,
		Message:    message,
		SentBy:     ectx.ActingUser,
	}

	if err := x.notifier.Send(ctx, notification); err != nil {
		return "", fmt.Errorf("notification sink failed: %w", err)
	}

	return fmt.Sprintf("notified %d recipients", len(data.Recipients)), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
