// Package persistence provides the storage abstraction for workflows and
// execution reports.
package persistence

import (
	"context"

	"github.com/taskpilot/taskpilot/pkg/models"
)

type Persistence interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error

	SaveExecution(ctx context.Context, report *models.ExecutionReport) error
	ExecutionByID(ctx context.Context, id string) (*models.ExecutionReport, error)
	ExecutionsByWorkflow(ctx context.Context, workflowID string) ([]*models.ExecutionReport, error)

	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
