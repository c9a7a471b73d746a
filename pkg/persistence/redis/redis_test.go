package redis

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyNamespaces(t *testing.T) {
	assert.Equal(t, "taskpilot:workflows:wf-1", WorkflowKey("wf-1"))
	assert.Equal(t, "taskpilot:executions:run-1", ExecutionKey("run-1"))
	assert.Equal(t, "taskpilot:executions-by-workflow:wf-1", ExecutionIndexKey("wf-1"))
}

func TestNewPersistence_InvalidURL(t *testing.T) {
	_, err := NewPersistence(t.Context(), slog.Default(), "not-a-redis-url")
	assert.Error(t, err)
}
