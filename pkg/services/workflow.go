package services

import (
	"context"
	"time"

	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/persistence"
	"github.com/taskpilot/taskpilot/pkg/workflow"
)

// Workflow exposes workflow CRUD and graph editing. Every mutation runs the
// graph validator before persisting, so stored workflows are always
// structurally sound.
type Workflow struct {
	repository  *workflow.Repository
	persistence persistence.Persistence
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(p persistence.Persistence) *Workflow {
	return &Workflow{
		repository:  workflow.NewRepository(p),
		persistence: p,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	return w.repository.HealthCheck(ctx)
}

// List returns all workflows, newest first.
func (w *Workflow) List(ctx context.Context) ([]*models.Workflow, error) {
	return w.repository.FetchAll(ctx)
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	return w.repository.FetchByID(ctx, id)
}

// Create adds a new workflow. The draft must already contain a valid graph.
func (w *Workflow) Create(ctx context.Context, wf *models.Workflow) (*models.Workflow, error) {
	return w.repository.Create(ctx, wf)
}

// Update replaces an existing workflow's definition.
func (w *Workflow) Update(ctx context.Context, id string, wf *models.Workflow) (*models.Workflow, error) {
	return w.repository.Update(ctx, id, wf)
}

// Delete removes a workflow and its embedded steps.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	return w.repository.Delete(ctx, id)
}

// SetActive toggles whether a workflow is eligible for execution.
func (w *Workflow) SetActive(ctx context.Context, id string, active bool) (*models.Workflow, error) {
	wf, err := w.repository.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	wf.IsActive = active
	wf.UpdatedAt = time.Now().UTC()

	if err := w.persistence.SaveWorkflow(ctx, wf); err != nil {
		return nil, err
	}

	return wf, nil
}

// AddStep inserts a step into a workflow's graph.
func (w *Workflow) AddStep(ctx context.Context, workflowID string, step *models.Step) (*models.Workflow, error) {
	return w.mutate(ctx, workflowID, func(wf *models.Workflow) error {
		return workflow.AddStep(wf, step)
	})
}

// UpdateStep replaces a step's name, description and config.
func (w *Workflow) UpdateStep(ctx context.Context, workflowID string, step *models.Step) (*models.Workflow, error) {
	return w.mutate(ctx, workflowID, func(wf *models.Workflow) error {
		return workflow.UpdateStep(wf, step)
	})
}

// RemoveStep deletes a step and cascades the removal through every edge
// list, so no dangling references survive the delete.
func (w *Workflow) RemoveStep(ctx context.Context, workflowID, stepID string) (*models.Workflow, error) {
	return w.mutate(ctx, workflowID, func(wf *models.Workflow) error {
		return workflow.RemoveStep(wf, stepID)
	})
}

// AddEdge connects two steps in a workflow's graph.
func (w *Workflow) AddEdge(ctx context.Context, workflowID, from, to string) (*models.Workflow, error) {
	return w.mutate(ctx, workflowID, func(wf *models.Workflow) error {
		return workflow.AddEdge(wf, from, to)
	})
}

// RemoveEdge disconnects two steps in a workflow's graph.
func (w *Workflow) RemoveEdge(ctx context.Context, workflowID, from, to string) (*models.Workflow, error) {
	return w.mutate(ctx, workflowID, func(wf *models.Workflow) error {
		return workflow.RemoveEdge(wf, from, to)
	})
}

// mutate loads a workflow, applies an edit, revalidates the whole graph and
// persists the result.
func (w *Workflow) mutate(ctx context.Context, workflowID string, edit func(*models.Workflow) error) (*models.Workflow, error) {
	wf, err := w.repository.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if err := edit(wf); err != nil {
		return nil, err
	}

	if err := workflow.Validate(wf); err != nil {
		return nil, err
	}

	wf.UpdatedAt = time.Now().UTC()

	if err := w.persistence.SaveWorkflow(ctx, wf); err != nil {
		return nil, err
	}

	return wf, nil
}
