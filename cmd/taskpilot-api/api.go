// Package main provides the TaskPilot API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/taskpilot/taskpilot/pkg/cmd"
	"github.com/taskpilot/taskpilot/pkg/eventbus"
	"github.com/taskpilot/taskpilot/pkg/facts"
	"github.com/taskpilot/taskpilot/pkg/persistence"
	"github.com/taskpilot/taskpilot/pkg/services"
	"github.com/taskpilot/taskpilot/pkg/templates"
	"github.com/taskpilot/taskpilot/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	// In-memory facts until a project-management backend adapter lands.
	store := facts.NewMemoryStore()
	engine := cmd.NewEngine(store, store, a.eventBus, a.tracer, a.logger)

	workflowService := services.NewWorkflow(a.persistence)
	executionService := services.NewExecution(a.persistence, engine, a.logger)
	templateService := services.NewTemplates(templates.NewCatalog(), a.persistence)

	handlers := web.NewAPIHandlers(workflowService, executionService, templateService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("TaskPilot API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/activate", handlers.ActivateWorkflow)
	w.Post("/:id/deactivate", handlers.DeactivateWorkflow)

	// Graph editing endpoints:
	w.Post("/:id/steps", handlers.CreateStep)
	w.Patch("/:id/steps/:stepId", handlers.UpdateStep)
	w.Delete("/:id/steps/:stepId", handlers.DeleteStep)
	w.Post("/:id/edges", handlers.CreateEdge)
	w.Delete("/:id/edges", handlers.DeleteEdge)

	// Run endpoints:
	w.Post("/:id/run", handlers.RunWorkflow)
	w.Get("/:id/executions", handlers.GetExecutions)

	app.Get("/executions/:id", handlers.GetExecution)

	t := app.Group("/templates")
	t.Get("/", handlers.GetTemplates)
	t.Get("/:name", handlers.GetTemplate)
	t.Post("/:name/instantiate", handlers.InstantiateTemplate)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
