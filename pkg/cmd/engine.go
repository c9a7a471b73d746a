package cmd

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/taskpilot/taskpilot/pkg/eventbus"
	"github.com/taskpilot/taskpilot/pkg/facts"
	"github.com/taskpilot/taskpilot/pkg/sinks"
	"github.com/taskpilot/taskpilot/pkg/workflow"
)

// NewEngine wires the run engine from its collaborators. When a bus is
// present, notifications ride it as events; otherwise they go to the log.
func NewEngine(
	provider facts.Provider,
	tasks sinks.TaskSink,
	bus eventbus.EventBus,
	tracer trace.Tracer,
	logger *slog.Logger,
) *workflow.Engine {
	var notifier sinks.NotificationSink
	if bus != nil {
		notifier = sinks.NewBusNotifier(bus)
	} else {
		notifier = sinks.NewLogNotifier(logger)
	}

	evaluator := workflow.NewEvaluator(provider)
	executor := workflow.NewActionExecutor(tasks, notifier, logger)

	return workflow.NewEngine(evaluator, executor, bus, tracer, logger)
}
