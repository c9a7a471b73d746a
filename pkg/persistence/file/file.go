// Package file provides file-based persistence for workflows and execution
// reports. Each record is one JSON file under the root directory.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/persistence"
)

const dirPerm = 0o755

// Persistence implements persistence.Persistence on the local filesystem.
type Persistence struct {
	root string
}

func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

func (p *Persistence) workflowsDir() string {
	return filepath.Join(p.root, "workflows")
}

func (p *Persistence) executionsDir() string {
	return filepath.Join(p.root, "executions")
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	if err := os.MkdirAll(p.root, dirPerm); err != nil {
		return fmt.Errorf("persistence root %s is not writable: %w", p.root, err)
	}

	return nil
}

func (p *Persistence) Workflows(_ context.Context) ([]*models.Workflow, error) {
	entries, err := os.ReadDir(p.workflowsDir())
	if os.IsNotExist(err) {
		return []*models.Workflow{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		workflow := &models.Workflow{}
		if err := readJSON(filepath.Join(p.workflowsDir(), entry.Name()), workflow); err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.After(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (p *Persistence) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	workflow := &models.Workflow{}

	err := readJSON(filepath.Join(p.workflowsDir(), id+".json"), workflow)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return workflow, nil
}

func (p *Persistence) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	return writeJSON(filepath.Join(p.workflowsDir(), workflow.ID+".json"), workflow)
}

// DeleteWorkflow removes the workflow file. Steps live embedded in the
// workflow document, so the delete is atomic for the whole graph.
func (p *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	err := os.Remove(filepath.Join(p.workflowsDir(), id+".json"))
	if os.IsNotExist(err) {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return err
}

func (p *Persistence) SaveExecution(_ context.Context, report *models.ExecutionReport) error {
	return writeJSON(filepath.Join(p.executionsDir(), report.ID+".json"), report)
}

func (p *Persistence) ExecutionByID(_ context.Context, id string) (*models.ExecutionReport, error) {
	report := &models.ExecutionReport{}

	err := readJSON(filepath.Join(p.executionsDir(), id+".json"), report)
	if os.IsNotExist(err) {
		return nil, persistence.ErrExecutionNotFound
	}

	if err != nil {
		return nil, err
	}

	return report, nil
}

func (p *Persistence) ExecutionsByWorkflow(_ context.Context, workflowID string) ([]*models.ExecutionReport, error) {
	entries, err := os.ReadDir(p.executionsDir())
	if os.IsNotExist(err) {
		return []*models.ExecutionReport{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	reports := make([]*models.ExecutionReport, 0)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		report := &models.ExecutionReport{}
		if err := readJSON(filepath.Join(p.executionsDir(), entry.Name()), report); err != nil {
			return nil, err
		}

		if report.WorkflowID == workflowID {
			reports = append(reports, report)
		}
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StartedAt.After(reports[j].StartedAt)
	})

	return reports, nil
}

func readJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return nil
}

func writeJSON(path string, source any) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	data, err := json.MarshalIndent(source, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
