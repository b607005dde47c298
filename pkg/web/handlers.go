package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/tdaniel1925/clientflow/pkg/callflow"
	"github.com/tdaniel1925/clientflow/pkg/eventbus"
	"github.com/tdaniel1925/clientflow/pkg/events"
	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
	"github.com/tdaniel1925/clientflow/pkg/registry"
	"github.com/tdaniel1925/clientflow/pkg/rules"
)

// APIHandlers carries the dependencies of the REST endpoints.
type APIHandlers struct {
	store     persistence.Persistence
	registry  *registry.Registry
	eventBus  eventbus.EventBus
	validator *validator.Validate

	ruleExecutor *rules.Executor
	dispatcher   *callflow.Dispatcher
}

func NewAPIHandlers(
	store persistence.Persistence,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
	validate *validator.Validate,
	ruleExecutor *rules.Executor,
	dispatcher *callflow.Dispatcher,
) *APIHandlers {
	return &APIHandlers{
		store:        store,
		registry:     reg,
		eventBus:     eventBus,
		validator:    validate,
		ruleExecutor: ruleExecutor,
		dispatcher:   dispatcher,
	}
}

// Rules

func (h *APIHandlers) ListRules(c fiber.Ctx) error {
	accountID := c.Params("accountId")
	if accountID == "" {
		return badRequest(c, "account ID is required")
	}

	list, err := h.store.Rules().ListByAccount(c.Context(), accountID)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(fiber.Map{"rules": list})
}

func (h *APIHandlers) GetRule(c fiber.Ctx) error {
	rule, err := h.store.Rules().GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) CreateRule(c fiber.Ctx) error {
	accountID := c.Params("accountId")
	if accountID == "" {
		return badRequest(c, "account ID is required")
	}

	var req CreateRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := rules.ValidateGroup(req.Conditions); err != nil {
		return badRequest(c, err.Error())
	}

	rule := &models.Rule{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		Name:       req.Name,
		Enabled:    true,
		Priority:   req.Priority,
		Conditions: req.Conditions,
		Actions:    req.Actions,
	}

	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}

	if err := h.store.Rules().Create(c.Context(), rule); err != nil {
		return handleStoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

func (h *APIHandlers) UpdateRule(c fiber.Ctx) error {
	var req UpdateRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.store.Rules().GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleStoreError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Enabled != nil {
		existing.Enabled = *req.Enabled
	}

	if req.Priority != nil {
		existing.Priority = *req.Priority
	}

	if req.Conditions != nil {
		if err := rules.ValidateGroup(*req.Conditions); err != nil {
			return badRequest(c, err.Error())
		}

		existing.Conditions = *req.Conditions
	}

	if req.Actions != nil {
		existing.Actions = req.Actions
	}

	if err := h.store.Rules().Update(c.Context(), existing); err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(existing)
}

func (h *APIHandlers) DeleteRule(c fiber.Ctx) error {
	if err := h.store.Rules().Delete(c.Context(), c.Params("id")); err != nil {
		return handleStoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ProcessEmail runs the rule engine against one email and returns the run
// summary. The engine never fails the request; per-rule errors are logged.
func (h *APIHandlers) ProcessEmail(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "email ID is required")
	}

	if _, err := h.store.Emails().GetByID(c.Context(), id); err != nil {
		return handleStoreError(c, err)
	}

	summary := h.ruleExecutor.ExecuteForEmail(c.Context(), id)

	return c.JSON(summary)
}

// Workflows

func (h *APIHandlers) ListWorkflows(c fiber.Ctx) error {
	projectID := c.Params("projectId")
	if projectID == "" {
		return badRequest(c, "project ID is required")
	}

	list, err := h.store.Workflows().ListByProject(c.Context(), projectID)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": list})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.store.Workflows().GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	projectID := c.Params("projectId")
	if projectID == "" {
		return badRequest(c, "project ID is required")
	}

	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.validateWorkflowPayload(req.TriggerConditions, req.Actions); err != nil {
		return badRequest(c, err.Error())
	}

	workflow := &models.Workflow{
		ID:                uuid.NewString(),
		ProjectID:         projectID,
		Name:              req.Name,
		Active:            true,
		TriggerConditions: req.TriggerConditions,
		Actions:           req.Actions,
	}

	if req.Active != nil {
		workflow.Active = *req.Active
	}

	if err := h.store.Workflows().Create(c.Context(), workflow); err != nil {
		return handleStoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.store.Workflows().GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleStoreError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Active != nil {
		existing.Active = *req.Active
	}

	if req.TriggerConditions != nil {
		existing.TriggerConditions = *req.TriggerConditions
	}

	if req.Actions != nil {
		existing.Actions = req.Actions
	}

	if err := h.validateWorkflowPayload(existing.TriggerConditions, existing.Actions); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.store.Workflows().Update(c.Context(), existing); err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(existing)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.store.Workflows().Delete(c.Context(), c.Params("id")); err != nil {
		return handleStoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) validateWorkflowPayload(conds models.TriggerConditions, actions []models.WorkflowAction) error {
	if err := callflow.ValidateTriggerConditions(conds); err != nil {
		return err
	}

	for _, action := range actions {
		if err := h.registry.ValidateActionConfig(action.Type, action.Config); err != nil {
			return err
		}
	}

	return nil
}

// ExecutionLogs returns the audit trail of one workflow, newest first.
func (h *APIHandlers) ExecutionLogs(c fiber.Ctx) error {
	id := c.Params("id")

	if _, err := h.store.Workflows().GetByID(c.Context(), id); err != nil {
		return handleStoreError(c, err)
	}

	logs, err := h.store.Workflows().ExecutionLogs(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(fiber.Map{"executions": logs})
}

// DispatchCall evaluates all active workflows against a call record and
// returns the triggered workflow IDs.
func (h *APIHandlers) DispatchCall(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "call record ID is required")
	}

	if _, err := h.store.CallRecords().GetByID(c.Context(), id); err != nil {
		return handleStoreError(c, err)
	}

	triggered := h.dispatcher.CheckAndExecute(c.Context(), id)
	if triggered == nil {
		triggered = []string{}
	}

	return c.JSON(fiber.Map{"triggered_workflow_ids": triggered})
}

// Ingestion

// IngestEmail stores an incoming email and hands it to the pipeline: via the
// event bus when one is wired, synchronously otherwise.
func (h *APIHandlers) IngestEmail(c fiber.Ctx) error {
	accountID := c.Params("accountId")
	if accountID == "" {
		return badRequest(c, "account ID is required")
	}

	var req IngestEmailRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	email := &models.Email{
		ID:             req.ID,
		AccountID:      accountID,
		FromAddress:    req.FromAddress,
		ToAddresses:    req.ToAddresses,
		Subject:        req.Subject,
		BodyText:       req.BodyText,
		BodyHTML:       req.BodyHTML,
		HasAttachments: req.HasAttachments,
		Folder:         req.Folder,
		Labels:         req.Labels,
		ReceivedAt:     time.Now().UTC(),
	}

	if err := h.store.Emails().Create(c.Context(), email); err != nil {
		return handleStoreError(c, err)
	}

	if h.eventBus != nil {
		event := events.EmailReceived{
			BaseEvent: events.NewBaseEvent(events.EmailReceivedEvent),
			AccountID: accountID,
			EmailID:   email.ID,
		}

		if err := h.eventBus.Publish(c.Context(), accountID, event); err != nil {
			return internalError(c, err)
		}
	} else {
		h.ruleExecutor.ExecuteForEmail(c.Context(), email.ID)
	}

	return c.Status(fiber.StatusCreated).JSON(email)
}

// IngestCall stores an analyzed call record and hands it to the pipeline.
func (h *APIHandlers) IngestCall(c fiber.Ctx) error {
	projectID := c.Params("projectId")
	if projectID == "" {
		return badRequest(c, "project ID is required")
	}

	var req IngestCallRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	record := &models.CallRecord{
		ID:              req.ID,
		ProjectID:       projectID,
		CallerName:      req.CallerName,
		CallerPhone:     req.CallerPhone,
		Topic:           req.Topic,
		Summary:         req.Summary,
		Sentiment:       req.Sentiment,
		QualityRating:   req.QualityRating,
		FollowUpNeeded:  req.FollowUpNeeded,
		FollowUpReason:  req.FollowUpReason,
		DurationSeconds: req.DurationSeconds,
		AnalyzedAt:      time.Now().UTC(),
	}

	if err := h.store.CallRecords().Create(c.Context(), record); err != nil {
		return handleStoreError(c, err)
	}

	if h.eventBus != nil {
		event := events.CallAnalyzed{
			BaseEvent:    events.NewBaseEvent(events.CallAnalyzedEvent),
			ProjectID:    projectID,
			CallRecordID: record.ID,
		}

		if err := h.eventBus.Publish(c.Context(), projectID, event); err != nil {
			return internalError(c, err)
		}
	} else {
		h.dispatcher.CheckAndExecute(c.Context(), record.ID)
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

// HealthCheck reports engine health: storage reachability and the registered
// action types.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	httpStatus := http.StatusOK

	storageStatus := "ok"
	if err := h.store.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
		storageStatus = err.Error()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"storage":      storageStatus,
			"action_types": h.registry.ActionTypes(),
		},
		"timestamp": time.Now().UTC(),
	})
}
