// Package template renders config values against the execution context so
// condition operands and notification messages can reference run variables.
package template

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/taskpilot/taskpilot/pkg/models"
)

// RenderWithContext renders input against the execution context. Variables
// are exposed under .vars, identity fields under .run.
func RenderWithContext(input string, ectx *models.ExecutionContext) (string, error) {
	data := map[string]any{
		"vars": ectx.Variables,
		"run": map[string]any{
			"project_id":      ectx.ProjectID,
			"organization_id": ectx.OrganizationID,
			"acting_user":     ectx.ActingUser,
			"task_id":         ectx.TaskID,
		},
	}

	return Render(input, data)
}

// Render executes input as a text/template over data. Plain strings without
// template markers pass through unchanged.
func Render(input string, data any) (string, error) {
	if !strings.Contains(input, "{{") {
		return input, nil
	}

	tmpl, err := template.
		New("config").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
		}).Parse(input)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %q: %w", input, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template %q: %w", input, err)
	}

	return buf.String(), nil
}
