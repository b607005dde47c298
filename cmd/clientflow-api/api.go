// Package main provides the ClientFlow API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/tdaniel1925/clientflow/pkg/callflow"
	"github.com/tdaniel1925/clientflow/pkg/eventbus"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
	"github.com/tdaniel1925/clientflow/pkg/registry"
	"github.com/tdaniel1925/clientflow/pkg/rules"
	"github.com/tdaniel1925/clientflow/pkg/schedule"
	"github.com/tdaniel1925/clientflow/pkg/web"
)

type API struct {
	logger   *slog.Logger
	store    persistence.Persistence
	registry *registry.Registry
	eventBus eventbus.EventBus
	queue    *schedule.Queue
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	store persistence.Persistence,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
	queue *schedule.Queue,
) *API {
	return &API{
		logger:   logger,
		store:    store,
		registry: reg,
		eventBus: eventBus,
		queue:    queue,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	executor := rules.NewExecutor(a.store, a.logger)
	dispatcher := callflow.NewDispatcher(a.store, a.registry, a.queue, a.logger)

	handlers := web.NewAPIHandlers(a.store, a.registry, a.eventBus, a.validate, executor, dispatcher)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("ClientFlow API")
	})

	accounts := app.Group("/accounts/:accountId")
	accounts.Get("/rules", handlers.ListRules)
	accounts.Post("/rules", handlers.CreateRule)
	accounts.Post("/emails", handlers.IngestEmail)

	app.Get("/rules/:id", handlers.GetRule)
	app.Patch("/rules/:id", handlers.UpdateRule)
	app.Delete("/rules/:id", handlers.DeleteRule)
	app.Post("/emails/:id/process", handlers.ProcessEmail)

	projects := app.Group("/projects/:projectId")
	projects.Get("/workflows", handlers.ListWorkflows)
	projects.Post("/workflows", handlers.CreateWorkflow)
	projects.Post("/calls", handlers.IngestCall)

	app.Get("/workflows/:id", handlers.GetWorkflow)
	app.Patch("/workflows/:id", handlers.UpdateWorkflow)
	app.Delete("/workflows/:id", handlers.DeleteWorkflow)
	app.Get("/workflows/:id/executions", handlers.ExecutionLogs)
	app.Post("/calls/:id/dispatch", handlers.DispatchCall)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
