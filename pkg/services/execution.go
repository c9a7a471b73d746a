package services

import (
	"context"
	"log/slog"

	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/persistence"
	"github.com/taskpilot/taskpilot/pkg/workflow"
)

// Execution runs workflows and records their reports.
type Execution struct {
	repository  *workflow.Repository
	engine      *workflow.Engine
	persistence persistence.Persistence
	logger      *slog.Logger
}

// NewExecution creates a new execution service.
func NewExecution(p persistence.Persistence, engine *workflow.Engine, logger *slog.Logger) *Execution {
	return &Execution{
		repository:  workflow.NewRepository(p),
		engine:      engine,
		persistence: p,
		logger:      logger.With("service", "execution"),
	}
}

// Run executes a workflow and persists the resulting report. The report is
// saved even when the run aborts, so aborted runs stay auditable.
func (e *Execution) Run(ctx context.Context, workflowID string, ectx *models.ExecutionContext) (*models.ExecutionReport, error) {
	wf, err := e.repository.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if ectx.ProjectID == "" {
		ectx.ProjectID = wf.ProjectID
	}

	if ectx.OrganizationID == "" {
		ectx.OrganizationID = wf.OrganizationID
	}

	report, runErr := e.engine.Run(ctx, wf, *ectx)

	if report != nil {
		if saveErr := e.persistence.SaveExecution(ctx, report); saveErr != nil {
			e.logger.ErrorContext(ctx, "Failed to persist execution report",
				"execution_id", report.ID, "workflow_id", workflowID, "error", saveErr)
		}
	}

	if runErr != nil {
		return report, runErr
	}

	return report, nil
}

// FetchByID retrieves a single execution report.
func (e *Execution) FetchByID(ctx context.Context, id string) (*models.ExecutionReport, error) {
	return e.persistence.ExecutionByID(ctx, id)
}

// FetchByWorkflow lists a workflow's execution reports, newest first.
func (e *Execution) FetchByWorkflow(ctx context.Context, workflowID string) ([]*models.ExecutionReport, error) {
	if _, err := e.repository.FetchByID(ctx, workflowID); err != nil {
		return nil, err
	}

	return e.persistence.ExecutionsByWorkflow(ctx, workflowID)
}
