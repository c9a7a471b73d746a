package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/persistence"
)

// WorkflowRepository stores workflows with the step graph embedded as a
// JSONB document, so saving a workflow replaces the whole graph atomically.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{
		db:     db,
		logger: logger.With("repository", "workflow"),
	}
}

const workflowColumns = `id, name, description, created_by, organization_id, project_id,
	is_active, steps, trigger_step_id, created_at, updated_at, deleted_at`

func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM workflows
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`, workflowColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer rows.Close()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflows: %w", err)
	}

	return workflows, nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM workflows
		WHERE id = $1 AND deleted_at IS NULL
	`, workflowColumns), id)

	workflow, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return workflow, nil
}

func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	stepsJSON, err := json.Marshal(workflow.Steps)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, fmt.Errorf("failed to encode steps: %w", err))
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, description, created_by, organization_id, project_id,
			is_active, steps, trigger_step_id, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			is_active = EXCLUDED.is_active,
			steps = EXCLUDED.steps,
			trigger_step_id = EXCLUDED.trigger_step_id,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
	`,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		workflow.CreatedBy,
		workflow.OrganizationID,
		workflow.ProjectID,
		workflow.IsActive,
		stepsJSON,
		workflow.TriggerStepID,
		workflow.CreatedAt,
		workflow.UpdatedAt,
		workflow.DeletedAt,
	)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE workflows SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	workflow := &models.Workflow{}

	var (
		description sql.NullString
		createdBy   sql.NullString
		stepsJSON   []byte
		deletedAt   sql.NullTime
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&description,
		&createdBy,
		&workflow.OrganizationID,
		&workflow.ProjectID,
		&workflow.IsActive,
		&stepsJSON,
		&workflow.TriggerStepID,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
		&deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	workflow.Description = description.String
	workflow.CreatedBy = createdBy.String

	if deletedAt.Valid {
		workflow.DeletedAt = &deletedAt.Time
	}

	if err := json.Unmarshal(stepsJSON, &workflow.Steps); err != nil {
		return nil, fmt.Errorf("failed to decode steps for workflow %s: %w", workflow.ID, err)
	}

	return workflow, nil
}
