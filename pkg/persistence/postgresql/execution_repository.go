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

// ExecutionRepository stores execution reports with the per-step results
// embedded as a JSONB array.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{
		db:     db,
		logger: logger.With("repository", "execution"),
	}
}

func (r *ExecutionRepository) Save(ctx context.Context, report *models.ExecutionReport) error {
	resultsJSON, err := json.Marshal(report.Results)
	if err != nil {
		return fmt.Errorf("failed to encode results for execution %s: %w", report.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO executions (id, workflow_id, status, results, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			results = EXCLUDED.results,
			error = EXCLUDED.error,
			finished_at = EXCLUDED.finished_at
	`,
		report.ID,
		report.WorkflowID,
		report.Status,
		resultsJSON,
		report.Error,
		report.StartedAt,
		report.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save execution %s: %w", report.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.ExecutionReport, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, workflow_id, status, results, error, started_at, finished_at
		FROM executions WHERE id = $1
	`, id)

	report, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrExecutionNotFound
	}

	if err != nil {
		return nil, err
	}

	return report, nil
}

func (r *ExecutionRepository) GetByWorkflow(ctx context.Context, workflowID string) ([]*models.ExecutionReport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workflow_id, status, results, error, started_at, finished_at
		FROM executions WHERE workflow_id = $1
		ORDER BY started_at DESC
	`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}
	defer rows.Close()

	reports := make([]*models.ExecutionReport, 0)

	for rows.Next() {
		report, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}

		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate executions: %w", err)
	}

	return reports, nil
}

func scanExecution(row rowScanner) (*models.ExecutionReport, error) {
	report := &models.ExecutionReport{}

	var (
		resultsJSON []byte
		errText     sql.NullString
	)

	err := row.Scan(
		&report.ID,
		&report.WorkflowID,
		&report.Status,
		&resultsJSON,
		&errText,
		&report.StartedAt,
		&report.FinishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	report.Error = errText.String

	if err := json.Unmarshal(resultsJSON, &report.Results); err != nil {
		return nil, fmt.Errorf("failed to decode results for execution %s: %w", report.ID, err)
	}

	return report, nil
}
