package templates

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/taskpilot/taskpilot/pkg/models"
)

var ErrTemplateNotFound = errors.New("template not found")

// Catalog holds the available workflow templates. Built-in templates are
// seeded at construction; more can be registered or loaded from JSON files.
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]*models.WorkflowTemplate
}

func NewCatalog() *Catalog {
	catalog := &Catalog{templates: make(map[string]*models.WorkflowTemplate)}

	for _, tpl := range builtinTemplates() {
		// Built-ins are maintained next to this code; a bad one is a bug.
		if err := catalog.Register(tpl); err != nil {
			panic(fmt.Sprintf("invalid built-in template %q: %v", tpl.Name, err))
		}
	}

	return catalog
}

// Register adds a template after checking it instantiates into a valid
// graph, so instantiation can never hand out a draft that fails validation.
func (c *Catalog) Register(tpl *models.WorkflowTemplate) error {
	if tpl.Name == "" {
		return errors.New("template name is required")
	}

	if err := checkInstantiable(tpl); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.templates[tpl.Name]; exists {
		return fmt.Errorf("template %q already registered", tpl.Name)
	}

	c.templates[tpl.Name] = tpl

	return nil
}

// List returns all templates sorted by name.
func (c *Catalog) List() []*models.WorkflowTemplate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := make([]*models.WorkflowTemplate, 0, len(c.templates))
	for _, tpl := range c.templates {
		list = append(list, tpl)
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	return list
}

func (c *Catalog) Get(name string) (*models.WorkflowTemplate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tpl, ok := c.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	return tpl, nil
}
