package services

import (
	"context"

	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/persistence"
	"github.com/taskpilot/taskpilot/pkg/templates"
	"github.com/taskpilot/taskpilot/pkg/workflow"
)

// Templates serves the template catalog and turns templates into workflows.
type Templates struct {
	catalog    *templates.Catalog
	repository *workflow.Repository
}

// NewTemplates creates a new template service.
func NewTemplates(catalog *templates.Catalog, p persistence.Persistence) *Templates {
	return &Templates{
		catalog:    catalog,
		repository: workflow.NewRepository(p),
	}
}

// List returns all catalog templates sorted by name.
func (t *Templates) List() []*models.WorkflowTemplate {
	return t.catalog.List()
}

// Get returns a single template by name.
func (t *Templates) Get(name string) (*models.WorkflowTemplate, error) {
	return t.catalog.Get(name)
}

// InstantiateRequest names the template to expand and the workflow fields
// the template itself does not carry.
type InstantiateRequest struct {
	TemplateName   string
	WorkflowName   string
	Description    string
	CreatedBy      string
	OrganizationID string
	ProjectID      string
}

// Instantiate expands a template into a fresh workflow and persists it. Each
// call produces new step ids, so repeated instantiation yields disjoint
// graphs. The new workflow starts inactive.
func (t *Templates) Instantiate(ctx context.Context, req InstantiateRequest) (*models.Workflow, error) {
	tpl, err := t.catalog.Get(req.TemplateName)
	if err != nil {
		return nil, err
	}

	steps, triggerStepID, err := templates.Instantiate(tpl)
	if err != nil {
		return nil, err
	}

	name := req.WorkflowName
	if name == "" {
		name = tpl.Name
	}

	description := req.Description
	if description == "" {
		description = tpl.Description
	}

	wf := &models.Workflow{
		Name:           name,
		Description:    description,
		CreatedBy:      req.CreatedBy,
		OrganizationID: req.OrganizationID,
		ProjectID:      req.ProjectID,
		IsActive:       false,
		Steps:          steps,
		TriggerStepID:  triggerStepID,
	}

	return t.repository.Create(ctx, wf)
}
