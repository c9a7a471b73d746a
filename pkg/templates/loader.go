package templates

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// templateFileSchema is the JSON schema template files are checked against
// before decoding. Schema failures carry field paths, which beats the
// generic decode errors encoding/json produces.
const templateFileSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["name", "steps", "trigger_step_id"],
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"description": {"type": "string"},
			"category": {"type": "string"},
			"trigger_step_id": {"type": "string", "minLength": 1},
			"steps": {
				"type": "object",
				"minProperties": 1,
				"additionalProperties": {
					"type": "object",
					"required": ["id", "kind", "name"],
					"properties": {
						"id": {"type": "string", "minLength": 1},
						"kind": {"enum": ["trigger", "condition", "action"]},
						"name": {"type": "string", "minLength": 1},
						"description": {"type": "string"},
						"trigger": {"type": "object"},
						"condition": {"type": "object"},
						"action": {"type": "object"},
						"next_steps": {
							"type": "array",
							"items": {"type": "string"}
						}
					}
				}
			}
		}
	}
}`

// LoadFile registers the templates found in a JSON file. The file must hold
// an array of template documents; each is schema-checked, decoded and
// instantiation-checked before registration.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read template file %s: %w", path, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(templateFileSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("failed to schema-check template file %s: %w", path, err)
	}

	if !result.Valid() {
		return fmt.Errorf("template file %s is invalid: %s", path, formatSchemaErrors(result))
	}

	var list []*models.WorkflowTemplate
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to decode template file %s: %w", path, err)
	}

	for _, tpl := range list {
		if err := c.Register(tpl); err != nil {
			return fmt.Errorf("failed to register template %q from %s: %w", tpl.Name, path, err)
		}
	}

	return nil
}

func formatSchemaErrors(result *gojsonschema.Result) string {
	message := ""

	for i, desc := range result.Errors() {
		if i > 0 {
			message += "; "
		}

		message += desc.String()
	}

	return message
}
