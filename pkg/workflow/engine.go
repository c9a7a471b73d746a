package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/taskpilot/taskpilot/pkg/eventbus"
	"github.com/taskpilot/taskpilot/pkg/events"
	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/telemetry"
)

// maxVisitedSteps bounds one run's traversal. The visited set already caps
// each step at one visit, so this only fires on absurdly large graphs.
const maxVisitedSteps = 1000

// ErrWorkflowInactive is returned when a run is requested against a
// deactivated workflow.
var ErrWorkflowInactive = errors.New("workflow is not active")

// Engine traverses a workflow graph from its trigger step, gating branches
// on condition results and applying actions through the executor. One Run
// call is one synchronous, sequential traversal; separate runs share no
// engine state and may proceed concurrently.
type Engine struct {
	evaluator *Evaluator
	executor  *ActionExecutor
	bus       eventbus.EventBus // optional
	tracer    trace.Tracer      // optional
	logger    *slog.Logger
}

func NewEngine(evaluator *Evaluator, executor *ActionExecutor, bus eventbus.EventBus, tracer trace.Tracer, logger *slog.Logger) *Engine {
	return &Engine{
		evaluator: evaluator,
		executor:  executor,
		bus:       bus,
		tracer:    tracer,
		logger:    logger.With("module", "workflow_engine"),
	}
}

type runState struct {
	report  *models.ExecutionReport
	visited map[string]bool
}

// Run executes the workflow against the supplied context. Engine-start
// failures (inactive workflow, invalid graph) abort before any step runs
// and are returned alongside the aborted report. Per-step failures never
// surface as errors; they are recorded in the report.
func (e *Engine) Run(ctx context.Context, wf *models.Workflow, ectx models.ExecutionContext) (*models.ExecutionReport, error) {
	report := &models.ExecutionReport{
		ID:         "run-" + uuid.New().String()[:8],
		WorkflowID: wf.ID,
		Status:     models.RunStatusPending,
		StartedAt:  time.Now().UTC(),
	}

	logger := e.logger.With("workflow_id", wf.ID, "execution_id", report.ID)

	if !wf.IsActive {
		return e.abort(report, ErrWorkflowInactive)
	}

	if err := Validate(wf); err != nil {
		return e.abort(report, fmt.Errorf("workflow failed validation at run time: %w", err))
	}

	ctx, span := e.startSpan(ctx, "workflow.run",
		attribute.String("workflow.id", wf.ID),
		attribute.String("execution.id", report.ID),
	)
	defer span.End()

	report.Status = models.RunStatusRunning
	logger.Info("Starting workflow run", "trigger_step_id", wf.TriggerStepID)

	e.publish(ctx, events.RunStarted{
		BaseEvent:   e.baseEvent(events.RunStartedEvent, wf.ID),
		ExecutionID: report.ID,
		ProjectID:   ectx.ProjectID,
		ActingUser:  ectx.ActingUser,
	})

	state := &runState{
		report:  report,
		visited: make(map[string]bool),
	}

	e.visit(ctx, wf, state, ectx, wf.TriggerStepID)

	report.Status = models.RunStatusCompleted

	for _, result := range report.Results {
		if result.Outcome == models.OutcomeFailed {
			report.Status = models.RunStatusPartiallyFailed

			break
		}
	}

	report.FinishedAt = time.Now().UTC()

	logger.Info("Workflow run finished",
		"status", report.Status,
		"steps_visited", len(report.Results),
	)

	e.publish(ctx, events.RunFinished{
		BaseEvent:   e.baseEvent(events.RunFinishedEvent, wf.ID),
		ExecutionID: report.ID,
		Status:      report.Status,
		Duration:    report.FinishedAt.Sub(report.StartedAt),
	})

	return report, nil
}

// visit executes one step and, when the step's semantics allow, its
// outgoing edges in order. Each step runs at most once per run.
func (e *Engine) visit(ctx context.Context, wf *models.Workflow, state *runState, ectx models.ExecutionContext, stepID string) {
	if state.visited[stepID] || len(state.visited) >= maxVisitedSteps {
		return
	}

	state.visited[stepID] = true

	step := wf.Step(stepID)
	if step == nil {
		// Unreachable after validation; recorded rather than panicking.
		e.record(ctx, state, step, models.StepResult{
			StepID:  stepID,
			Outcome: models.OutcomeFailed,
			Detail:  "step disappeared from workflow during run",
		})

		return
	}

	ctx, span := e.startSpan(ctx, "workflow.step",
		attribute.String("step.id", step.ID),
		attribute.String("step.kind", string(step.Kind)),
	)
	defer span.End()

	switch step.Kind {
	case models.StepKindTrigger:
		// The trigger is the entry marker; it always succeeds.
		e.record(ctx, state, step, models.StepResult{StepID: step.ID, Outcome: models.OutcomeSucceeded})

	case models.StepKindCondition:
		passed, err := e.evaluator.Evaluate(ctx, step, ectx)
		if err != nil {
			telemetry.SetSpanError(span, err)
			e.record(ctx, state, step, models.StepResult{
				StepID:  step.ID,
				Outcome: models.OutcomeFailed,
				Detail:  err.Error(),
			})

			// An unevaluable condition abandons its branch; siblings continue.
			return
		}

		if !passed {
			e.record(ctx, state, step, models.StepResult{StepID: step.ID, Outcome: models.OutcomeSkipped})

			return
		}

		e.record(ctx, state, step, models.StepResult{StepID: step.ID, Outcome: models.OutcomeSucceeded})

	case models.StepKindAction:
		result := e.executor.Execute(ctx, step, ectx)
		if result.Outcome == models.OutcomeFailed {
			telemetry.SetSpanError(span, errors.New(result.Detail))
		}

		// Actions never gate downstream traversal; only conditions do.
		e.record(ctx, state, step, result)
	}

	for _, next := range step.NextSteps {
		e.visit(ctx, wf, state, ectx, next)
	}
}

func (e *Engine) record(ctx context.Context, state *runState, step *models.Step, result models.StepResult) {
	state.report.Results = append(state.report.Results, result)

	var kind models.StepKind
	if step != nil {
		kind = step.Kind
	}

	e.publish(ctx, events.StepFinished{
		BaseEvent:   e.baseEvent(events.StepFinishedEvent, state.report.WorkflowID),
		ExecutionID: state.report.ID,
		StepID:      result.StepID,
		StepKind:    kind,
		Outcome:     result.Outcome,
		Detail:      result.Detail,
	})
}

func (e *Engine) abort(report *models.ExecutionReport, err error) (*models.ExecutionReport, error) {
	report.Status = models.RunStatusAborted
	report.Error = err.Error()
	report.FinishedAt = time.Now().UTC()

	e.logger.Warn("Workflow run aborted", "workflow_id", report.WorkflowID, "error", err)

	return report, err
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if e.bus == nil {
		return
	}

	if err := e.bus.Publish(ctx, string(event.GetType()), event); err != nil {
		e.logger.Warn("Failed to publish run event", "event_type", event.GetType(), "error", err)
	}
}

func (e *Engine) baseEvent(eventType events.EventType, workflowID string) events.BaseEvent {
	id := uuid.New().String()
	if e.bus != nil {
		id = e.bus.GenerateID()
	}

	return events.BaseEvent{
		ID:         id,
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

func (e *Engine) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if e.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	return e.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
