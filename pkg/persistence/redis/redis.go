// Package redis provides Redis-backed persistence for workflows and
// execution reports. Records are JSON documents under namespaced keys.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/persistence"
)

const (
	workflowKeyPrefix  = "taskpilot:workflows:"
	executionKeyPrefix = "taskpilot:executions:"
	executionIndexKey  = "taskpilot:executions-by-workflow:"
)

type Persistence struct {
	client *goredis.Client
	logger *slog.Logger
}

func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{
		client: client,
		logger: logger.With("persistence", "redis"),
	}, nil
}

func WorkflowKey(id string) string {
	return workflowKeyPrefix + id
}

func ExecutionKey(id string) string {
	return executionKeyPrefix + id
}

func ExecutionIndexKey(workflowID string) string {
	return executionIndexKey + workflowID
}

func (p *Persistence) Close(_ context.Context) error {
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	keys, err := p.scanKeys(ctx, workflowKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan workflow keys: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(keys))

	for _, key := range keys {
		workflow := &models.Workflow{}
		if err := p.getJSON(ctx, key, workflow); err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}

			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.After(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow := &models.Workflow{}

	err := p.getJSON(ctx, WorkflowKey(id), workflow)
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return workflow, nil
}

func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	if err := p.setJSON(ctx, WorkflowKey(workflow.ID), workflow); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	deleted, err := p.client.Del(ctx, WorkflowKey(id)).Result()
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	if deleted == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (p *Persistence) SaveExecution(ctx context.Context, report *models.ExecutionReport) error {
	if err := p.setJSON(ctx, ExecutionKey(report.ID), report); err != nil {
		return fmt.Errorf("failed to save execution %s: %w", report.ID, err)
	}

	if err := p.client.SAdd(ctx, ExecutionIndexKey(report.WorkflowID), report.ID).Err(); err != nil {
		return fmt.Errorf("failed to index execution %s: %w", report.ID, err)
	}

	return nil
}

func (p *Persistence) ExecutionByID(ctx context.Context, id string) (*models.ExecutionReport, error) {
	report := &models.ExecutionReport{}

	err := p.getJSON(ctx, ExecutionKey(id), report)
	if errors.Is(err, goredis.Nil) {
		return nil, persistence.ErrExecutionNotFound
	}

	if err != nil {
		return nil, err
	}

	return report, nil
}

func (p *Persistence) ExecutionsByWorkflow(ctx context.Context, workflowID string) ([]*models.ExecutionReport, error) {
	ids, err := p.client.SMembers(ctx, ExecutionIndexKey(workflowID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read execution index: %w", err)
	}

	reports := make([]*models.ExecutionReport, 0, len(ids))

	for _, id := range ids {
		report := &models.ExecutionReport{}

		err := p.getJSON(ctx, ExecutionKey(id), report)
		if errors.Is(err, goredis.Nil) {
			continue
		}

		if err != nil {
			return nil, err
		}

		reports = append(reports, report)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StartedAt.After(reports[j].StartedAt)
	})

	return reports, nil
}

func (p *Persistence) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0)

	iter := p.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if strings.HasPrefix(key, executionIndexKey) {
			continue
		}

		keys = append(keys, key)
	}

	if err := iter.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}

func (p *Persistence) getJSON(ctx context.Context, key string, target any) error {
	data, err := p.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}

	return nil
}

func (p *Persistence) setJSON(ctx context.Context, key string, source any) error {
	data, err := json.Marshal(source)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	return p.client.Set(ctx, key, data, 0).Err()
}
