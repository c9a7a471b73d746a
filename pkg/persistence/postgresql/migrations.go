package postgresql

// migrations returns the versioned schema for the PostgreSQL provider. The
// step graph is stored as a JSONB document alongside the workflow row, so a
// workflow and its steps always change together.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflows (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT,
				created_by VARCHAR(255),
				organization_id VARCHAR(255) NOT NULL,
				project_id VARCHAR(255) NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT FALSE,
				steps JSONB NOT NULL DEFAULT '{}',
				trigger_step_id VARCHAR(255) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX IF NOT EXISTS idx_workflows_project_id ON workflows(project_id);
			CREATE INDEX IF NOT EXISTS idx_workflows_is_active ON workflows(is_active) WHERE deleted_at IS NULL;
		`,
		2: `
			CREATE TABLE IF NOT EXISTS executions (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL,
				results JSONB NOT NULL DEFAULT '[]',
				error TEXT,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				finished_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_executions_workflow_id ON executions(workflow_id);
			CREATE INDEX IF NOT EXISTS idx_executions_started_at ON executions(started_at DESC);
		`,
	}
}
