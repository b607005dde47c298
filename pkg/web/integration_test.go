//go:build integration

package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/tdaniel1925/clientflow/pkg/callflow"
	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/persistence/postgresql"
	"github.com/tdaniel1925/clientflow/pkg/registry"
	"github.com/tdaniel1925/clientflow/pkg/rules"
	"github.com/tdaniel1925/clientflow/pkg/web"
)

// setupIntegrationApp wires the API against a real postgres container. Only
// the create_task action is registered so no outbound messaging happens.
func setupIntegrationApp(t *testing.T) (*fiber.App, *postgresql.Persistence) {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("clientflow_api_test"),
		postgres.WithUsername("clientflow"),
		postgres.WithPassword("clientflow"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, testcontainers.TerminateContainer(container))
	})

	databaseURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := slog.Default()

	store, err := postgresql.NewPersistence(ctx, logger, databaseURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close(ctx))
	})

	reg := registry.NewRegistry(logger)
	reg.RegisterAction(callflow.NewCreateTaskActionFactory(store.Tasks()))

	validate := validator.New(validator.WithRequiredStructEnabled())
	executor := rules.NewExecutor(store, logger)
	dispatcher := callflow.NewDispatcher(store, reg, nil, logger)

	handlers := web.NewAPIHandlers(store, reg, nil, validate, executor, dispatcher)

	app := fiber.New()
	app.Get("/health", handlers.HealthCheck)

	accounts := app.Group("/accounts/:accountId")
	accounts.Get("/rules", handlers.ListRules)
	accounts.Post("/rules", handlers.CreateRule)
	accounts.Post("/emails", handlers.IngestEmail)

	app.Patch("/rules/:id", handlers.UpdateRule)
	app.Delete("/rules/:id", handlers.DeleteRule)

	projects := app.Group("/projects/:projectId")
	projects.Post("/workflows", handlers.CreateWorkflow)
	projects.Post("/calls", handlers.IngestCall)

	app.Get("/workflows/:id/executions", handlers.ExecutionLogs)

	return app, store
}

func postJSON(t *testing.T, app *fiber.App, target string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func TestIntegration_EmailPipeline(t *testing.T) {
	app, store := setupIntegrationApp(t)

	resp := postJSON(t, app, "/accounts/acct-1/rules", web.CreateRuleRequest{
		Name: "Mark invoices read",
		Conditions: models.ConditionGroup{
			Logic: models.GroupLogicAnd,
			Rules: []models.RuleCondition{
				{Field: models.RuleFieldSubject, Operator: models.RuleOperatorContains, Value: "invoice"},
			},
		},
		Actions: []models.RuleAction{{Type: models.RuleActionMarkAsRead, Value: true}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var rule models.Rule

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rule))
	_ = resp.Body.Close()

	resp = postJSON(t, app, "/accounts/acct-1/emails", web.IngestEmailRequest{
		FromAddress: "billing@vendor.example.com",
		Subject:     "Your invoice for August",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var email models.Email

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&email))
	_ = resp.Body.Close()

	stored, err := store.Emails().GetByID(context.Background(), email.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsRead)

	matched, err := store.Rules().GetByID(context.Background(), rule.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched.MatchCount)
}

func TestIntegration_CallPipeline(t *testing.T) {
	app, store := setupIntegrationApp(t)

	resp := postJSON(t, app, "/projects/project-1/workflows", web.CreateWorkflowRequest{
		Name: "Escalate negative calls",
		TriggerConditions: models.TriggerConditions{
			TriggerCondition: models.TriggerCondition{
				Field:    "callSentiment",
				Operator: models.TriggerOpEquals,
				Value:    "negative",
			},
		},
		Actions: []models.WorkflowAction{
			{Type: "create_task", Config: map[string]any{"title": "Call back {{caller_name}}"}},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var workflow models.Workflow

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&workflow))
	_ = resp.Body.Close()

	resp = postJSON(t, app, "/projects/project-1/calls", web.IngestCallRequest{
		CallerName:      "Dana Reyes",
		CallerPhone:     "+15550001111",
		Sentiment:       "negative",
		QualityRating:   2,
		DurationSeconds: 420,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var record models.CallRecord

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	_ = resp.Body.Close()

	stored, err := store.CallRecords().GetByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{workflow.ID}, stored.TriggeredWorkflowIDs)

	logs, err := store.Workflows().ExecutionLogs(context.Background(), workflow.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ExecutionStatusSuccess, logs[0].Status)

	updated, err := store.Workflows().GetByID(context.Background(), workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.TotalExecutions)
}
