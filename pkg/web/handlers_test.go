package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskpilot/taskpilot/pkg/facts"
	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/persistence/file"
	"github.com/taskpilot/taskpilot/pkg/services"
	"github.com/taskpilot/taskpilot/pkg/sinks"
	"github.com/taskpilot/taskpilot/pkg/templates"
	"github.com/taskpilot/taskpilot/pkg/web"
	"github.com/taskpilot/taskpilot/pkg/workflow"
)

func setupTestApp(t *testing.T) (*fiber.App, *facts.MemoryStore) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	store := facts.NewMemoryStore()

	evaluator := workflow.NewEvaluator(store)
	executor := workflow.NewActionExecutor(store, sinks.NewLogNotifier(slog.Default()), slog.Default())
	engine := workflow.NewEngine(evaluator, executor, nil, nil, slog.Default())

	handlers := web.NewAPIHandlers(
		services.NewWorkflow(p),
		services.NewExecution(p, engine, slog.Default()),
		services.NewTemplates(templates.NewCatalog(), p),
		validator.New(validator.WithRequiredStructEnabled()),
	)

	app := fiber.New()

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/activate", handlers.ActivateWorkflow)
	w.Post("/:id/deactivate", handlers.DeactivateWorkflow)
	w.Post("/:id/steps", handlers.CreateStep)
	w.Patch("/:id/steps/:stepId", handlers.UpdateStep)
	w.Delete("/:id/steps/:stepId", handlers.DeleteStep)
	w.Post("/:id/edges", handlers.CreateEdge)
	w.Delete("/:id/edges", handlers.DeleteEdge)
	w.Post("/:id/run", handlers.RunWorkflow)
	w.Get("/:id/executions", handlers.GetExecutions)
	app.Get("/executions/:id", handlers.GetExecution)

	tg := app.Group("/templates")
	tg.Get("/", handlers.GetTemplates)
	tg.Get("/:name", handlers.GetTemplate)
	tg.Post("/:name/instantiate", handlers.InstantiateTemplate)

	return app, store
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, target))
}

func createRequestBody() web.CreateWorkflowRequest {
	return web.CreateWorkflowRequest{
		Name:           "Overdue escalation",
		OrganizationID: "org-1",
		ProjectID:      "project-1",
		Steps: map[string]*models.Step{
			"t1": {
				ID:        "t1",
				Kind:      models.StepKindTrigger,
				Name:      "Manual",
				Trigger:   &models.TriggerConfig{Type: models.TriggerTypeManual},
				NextSteps: []string{"a1"},
			},
			"a1": {
				ID:   "a1",
				Kind: models.StepKindAction,
				Name: "Notify",
				Action: &models.ActionConfig{
					Type: models.ActionNotify,
					Notify: &models.NotifyData{
						Recipients: []string{"lead"},
						Message:    "task overdue",
					},
				},
			},
		},
		TriggerStepID: "t1",
	}
}

func createWorkflow(t *testing.T, app *fiber.App) models.Workflow {
	t.Helper()

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/workflows/", createRequestBody()))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow

	decodeBody(t, resp, &created)

	return created
}

func TestCreateWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)

	created := createWorkflow(t, app)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Overdue escalation", created.Name)
	assert.False(t, created.IsActive)
}

func TestCreateWorkflow_InvalidGraph(t *testing.T) {
	app, _ := setupTestApp(t)

	body := createRequestBody()
	body.Steps["a1"].NextSteps = []string{"ghost"}

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/workflows/", body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var problem map[string]any

	decodeBody(t, resp, &problem)
	assert.Equal(t, "dangling_edge", problem["type"])
}

func TestCreateWorkflow_MissingRequiredFields(t *testing.T) {
	app, _ := setupTestApp(t)

	body := createRequestBody()
	body.OrganizationID = ""

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/workflows/", body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetWorkflow_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/workflows/ghost", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)
	created := createWorkflow(t, app)

	newName := "Renamed escalation"

	resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/workflows/"+created.ID, web.UpdateWorkflowRequest{
		Name: &newName,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Workflow

	decodeBody(t, resp, &updated)
	assert.Equal(t, newName, updated.Name)
}

func TestDeleteWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)
	created := createWorkflow(t, app)

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/workflows/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/workflows/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStepEndpoints(t *testing.T) {
	app, _ := setupTestApp(t)
	created := createWorkflow(t, app)

	// Add a step.
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/workflows/"+created.ID+"/steps", web.StepRequest{
		ID:   "a2",
		Kind: models.StepKindAction,
		Name: "Second notify",
		Action: &models.ActionConfig{
			Type: models.ActionNotify,
			Notify: &models.NotifyData{
				Recipients: []string{"owner"},
				Message:    "heads up",
			},
		},
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Connect it.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/workflows/"+created.ID+"/edges", web.EdgeRequest{
		From: "a1",
		To:   "a2",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Removing the trigger is refused.
	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/workflows/"+created.ID+"/steps/t1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var problem map[string]any

	decodeBody(t, resp, &problem)
	assert.Equal(t, "cannot_remove_only_trigger", problem["type"])

	// Removing a step cascades its edges.
	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/workflows/"+created.ID+"/steps/a2", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Workflow

	decodeBody(t, resp, &updated)
	assert.NotContains(t, updated.Steps, "a2")
	assert.Empty(t, updated.Steps["a1"].NextSteps)
}

func TestRunWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)
	created := createWorkflow(t, app)

	// Running an inactive workflow reports an aborted run.
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/workflows/"+created.ID+"/run", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var aborted models.ExecutionReport

	decodeBody(t, resp, &aborted)
	assert.Equal(t, models.RunStatusAborted, aborted.Status)

	// Activate and run again.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/workflows/"+created.ID+"/activate", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/workflows/"+created.ID+"/run", web.RunWorkflowRequest{
		ActingUser: "alice",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var report models.ExecutionReport

	decodeBody(t, resp, &report)
	assert.Equal(t, models.RunStatusCompleted, report.Status)
	assert.Len(t, report.Results, 2)

	// Both runs are listed for the workflow.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/workflows/"+created.ID+"/executions", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Executions []models.ExecutionReport `json:"executions"`
	}

	decodeBody(t, resp, &listing)
	assert.Len(t, listing.Executions, 2)

	// Single execution lookup.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/executions/"+report.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTemplateEndpoints(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/templates/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Templates []models.WorkflowTemplate `json:"templates"`
	}

	decodeBody(t, resp, &listing)
	require.NotEmpty(t, listing.Templates)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/templates/overdue-escalation", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/templates/no-such-template", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/templates/overdue-escalation/instantiate", web.InstantiateTemplateRequest{
		WorkflowName:   "Project X escalation",
		OrganizationID: "org-1",
		ProjectID:      "project-1",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow

	decodeBody(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Project X escalation", created.Name)
}
