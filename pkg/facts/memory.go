package facts

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/taskpilot/taskpilot/pkg/sinks"
)

// MemoryStore is an in-memory task/project store. It implements both the
// facts Provider and the task mutation sink, which makes it the natural
// backing for tests and local development runs.
type MemoryStore struct {
	mu       sync.RWMutex
	tasks    map[string]map[string]*TaskFacts // projectID -> taskID -> facts
	projects map[string]*ProjectFacts
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:    make(map[string]map[string]*TaskFacts),
		projects: make(map[string]*ProjectFacts),
	}
}

// PutTask seeds or replaces a task.
func (s *MemoryStore) PutTask(projectID string, task TaskFacts) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tasks[projectID] == nil {
		s.tasks[projectID] = make(map[string]*TaskFacts)
	}

	copied := task
	s.tasks[projectID][task.ID] = &copied
}

// PutProject seeds or replaces a project.
func (s *MemoryStore) PutProject(project ProjectFacts) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := project
	s.projects[project.ID] = &copied
}

func (s *MemoryStore) Task(_ context.Context, projectID, taskID string) (*TaskFacts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[projectID][taskID]
	if !ok {
		return nil, nil
	}

	copied := *task

	return &copied, nil
}

func (s *MemoryStore) Project(_ context.Context, projectID string) (*ProjectFacts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[projectID]
	if !ok {
		return nil, nil
	}

	copied := *project

	return &copied, nil
}

func (s *MemoryStore) CreateTask(_ context.Context, projectID string, draft sinks.TaskDraft) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tasks[projectID] == nil {
		s.tasks[projectID] = make(map[string]*TaskFacts)
	}

	task := &TaskFacts{
		ID:       uuid.New().String(),
		Title:    draft.Title,
		Status:   "open",
		Priority: draft.Priority,
		Assignee: draft.Assignee,
		DueDate:  draft.DueDate,
	}
	s.tasks[projectID][task.ID] = task

	return task.ID, nil
}

func (s *MemoryStore) UpdateTask(_ context.Context, projectID, taskID string, patch sinks.TaskPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[projectID][taskID]
	if !ok {
		return fmt.Errorf("task %s not found in project %s", taskID, projectID)
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}

	if patch.Assignee != nil {
		task.Assignee = *patch.Assignee
	}

	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}

	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}

	return nil
}

func (s *MemoryStore) AssignTask(_ context.Context, projectID, taskID, assignee string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[projectID][taskID]
	if !ok {
		return fmt.Errorf("task %s not found in project %s", taskID, projectID)
	}

	task.Assignee = assignee

	return nil
}
