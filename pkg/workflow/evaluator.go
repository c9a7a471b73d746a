package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/taskpilot/taskpilot/pkg/facts"
	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/template"
)

// EvaluationError marks a condition as unevaluable: malformed config, a
// failing facts provider, or an unresolvable operand. It is distinct from a
// condition legitimately evaluating to false; callers must not conflate the
// two.
type EvaluationError struct {
	StepID string
	Reason string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("condition %s unevaluable: %s: %v", e.StepID, e.Reason, e.Err)
	}

	return fmt.Sprintf("condition %s unevaluable: %s", e.StepID, e.Reason)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// Evaluator resolves condition steps against externally supplied task and
// project facts.
type Evaluator struct {
	provider facts.Provider

	// Clock supplies the evaluation-time "now" for due-date predicates.
	// Defaults to time.Now.
	Clock func() time.Time
}

func NewEvaluator(provider facts.Provider) *Evaluator {
	return &Evaluator{
		provider: provider,
		Clock:    time.Now,
	}
}

// Evaluate resolves a condition step to a boolean. A missing or unknown
// task is a clean false, never an error. Negate inverts clean results only.
func (e *Evaluator) Evaluate(ctx context.Context, step *models.Step, ectx models.ExecutionContext) (bool, error) {
	cfg := step.Condition
	if step.Kind != models.StepKindCondition || cfg == nil {
		return false, &EvaluationError{StepID: step.ID, Reason: "step is not a condition or has no condition config"}
	}

	if err := cfg.Validate(); err != nil {
		return false, &EvaluationError{StepID: step.ID, Reason: "malformed condition config", Err: err}
	}

	result, err := e.evaluate(ctx, step.ID, cfg, ectx)
	if err != nil {
		return false, err
	}

	if cfg.Negate {
		result = !result
	}

	return result, nil
}

func (e *Evaluator) evaluate(ctx context.Context, stepID string, cfg *models.ConditionConfig, ectx models.ExecutionContext) (bool, error) {
	switch cfg.Type {
	case models.ConditionValueCompare:
		return e.compareValues(stepID, cfg, ectx)
	case models.ConditionTaskStatusEquals,
		models.ConditionTaskPriorityEquals,
		models.ConditionTaskAssigneeEquals,
		models.ConditionTaskAssigneeEmpty,
		models.ConditionTaskDueOverdue,
		models.ConditionTaskDueToday,
		models.ConditionTaskDueThisWeek:
		return e.evaluateTask(ctx, stepID, cfg, ectx)
	case models.ConditionProjectCompletionAbove, models.ConditionProjectCompletionBelow:
		return e.evaluateProject(ctx, stepID, cfg, ectx)
	default:
		return false, &EvaluationError{StepID: stepID, Reason: fmt.Sprintf("unknown condition type %q", cfg.Type)}
	}
}

func (e *Evaluator) compareValues(stepID string, cfg *models.ConditionConfig, ectx models.ExecutionContext) (bool, error) {
	left, err := template.RenderWithContext(cfg.LeftValue, &ectx)
	if err != nil {
		return false, &EvaluationError{StepID: stepID, Reason: "left operand failed to render", Err: err}
	}

	right, err := template.RenderWithContext(cfg.RightValue, &ectx)
	if err != nil {
		return false, &EvaluationError{StepID: stepID, Reason: "right operand failed to render", Err: err}
	}

	leftNum, leftErr := strconv.ParseFloat(strings.TrimSpace(left), 64)
	rightNum, rightErr := strconv.ParseFloat(strings.TrimSpace(right), 64)
	numeric := leftErr == nil && rightErr == nil

	switch cfg.Operator {
	case models.OperatorEquals:
		if numeric {
			return leftNum == rightNum, nil
		}

		return left == right, nil
	case models.OperatorNotEquals:
		if numeric {
			return leftNum != rightNum, nil
		}

		return left != right, nil
	case models.OperatorGreaterThan:
		if numeric {
			return leftNum > rightNum, nil
		}

		return left > right, nil
	case models.OperatorLessThan:
		if numeric {
			return leftNum < rightNum, nil
		}

		return left < right, nil
	case models.OperatorContains:
		return strings.Contains(left, right), nil
	default:
		return false, &EvaluationError{StepID: stepID, Reason: fmt.Sprintf("unknown operator %q", cfg.Operator)}
	}
}

func (e *Evaluator) evaluateTask(ctx context.Context, stepID string, cfg *models.ConditionConfig, ectx models.ExecutionContext) (bool, error) {
	taskID := cfg.TaskID
	if taskID == "" {
		taskID = ectx.TaskID
	}

	if taskID == "" {
		return false, &EvaluationError{StepID: stepID, Reason: "no task id in condition config or execution context"}
	}

	task, err := e.provider.Task(ctx, ectx.ProjectID, taskID)
	if err != nil {
		return false, &EvaluationError{StepID: stepID, Reason: "facts provider failed", Err: err}
	}

	// An unresolvable task is a legitimate false, not an error.
	if task == nil {
		return false, nil
	}

	switch cfg.Type {
	case models.ConditionTaskStatusEquals:
		return task.Status == cfg.ExpectedValue, nil
	case models.ConditionTaskPriorityEquals:
		return task.Priority == cfg.ExpectedValue, nil
	case models.ConditionTaskAssigneeEquals:
		return task.Assignee == cfg.ExpectedValue, nil
	case models.ConditionTaskAssigneeEmpty:
		return task.Assignee == "", nil
	case models.ConditionTaskDueOverdue, models.ConditionTaskDueToday, models.ConditionTaskDueThisWeek:
		return e.evaluateDueDate(cfg.Type, task.DueDate), nil
	default:
		return false, &EvaluationError{StepID: stepID, Reason: fmt.Sprintf("unknown task condition %q", cfg.Type)}
	}
}

func (e *Evaluator) evaluateDueDate(conditionType models.ConditionType, due *time.Time) bool {
	if due == nil {
		return false
	}

	now := e.Clock()

	switch conditionType {
	case models.ConditionTaskDueOverdue:
		return due.Before(now)
	case models.ConditionTaskDueToday:
		localDue := due.In(now.Location())

		return localDue.Year() == now.Year() && localDue.YearDay() == now.YearDay()
	case models.ConditionTaskDueThisWeek:
		// Within the next seven days inclusive, not in the past.
		return !due.Before(now) && !due.After(now.Add(7*24*time.Hour))
	default:
		return false
	}
}

func (e *Evaluator) evaluateProject(ctx context.Context, stepID string, cfg *models.ConditionConfig, ectx models.ExecutionContext) (bool, error) {
	project, err := e.provider.Project(ctx, ectx.ProjectID)
	if err != nil {
		return false, &EvaluationError{StepID: stepID, Reason: "facts provider failed", Err: err}
	}

	if project == nil {
		return false, nil
	}

	if cfg.Type == models.ConditionProjectCompletionAbove {
		return project.CompletionPercent > cfg.Percentage, nil
	}

	return project.CompletionPercent < cfg.Percentage, nil
}
