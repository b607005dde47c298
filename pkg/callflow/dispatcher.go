package callflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/otelhelper"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
	"github.com/tdaniel1925/clientflow/pkg/registry"
	"github.com/tdaniel1925/clientflow/pkg/schedule"
)

// Dispatcher evaluates active workflows against analyzed call records and
// executes the ones whose trigger conditions match.
type Dispatcher struct {
	store    persistence.Persistence
	registry *registry.Registry
	queue    *schedule.Queue
	logger   *slog.Logger
}

// NewDispatcher builds a dispatcher. The queue may be nil, in which case
// delayed actions run immediately.
func NewDispatcher(store persistence.Persistence, reg *registry.Registry, queue *schedule.Queue, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		registry: reg,
		queue:    queue,
		logger:   logger.With("module", "callflow"),
	}
}

// CheckAndExecute finds the workflows triggered by a call record, runs each
// one, and returns the triggered workflow IDs. A workflow counts as triggered
// when its conditions match, whether or not its actions succeed. Failures are
// logged, never raised: call analysis must not be disrupted by automation.
func (d *Dispatcher) CheckAndExecute(ctx context.Context, callRecordID string) []string {
	ctx, span := otel.Tracer("callflow").Start(ctx, "callflow.CheckAndExecute")
	defer span.End()

	span.SetAttributes(attribute.String(otelhelper.CallRecordIDKey, callRecordID))

	logger := d.logger.With("call_record_id", callRecordID)

	record, err := d.store.CallRecords().GetByID(ctx, callRecordID)
	if err != nil {
		otelhelper.SetError(span, err)
		logger.Error("failed to load call record", "error", err)

		return nil
	}

	workflows, err := d.store.Workflows().ListActiveByProject(ctx, record.ProjectID)
	if err != nil {
		logger.Error("failed to list active workflows", "project_id", record.ProjectID, "error", err)

		return nil
	}

	triggered := []string{}

	for _, workflow := range workflows {
		if !EvaluateTrigger(workflow.TriggerConditions, record, logger.With("workflow_id", workflow.ID)) {
			continue
		}

		triggered = append(triggered, workflow.ID)
		d.executeWorkflow(ctx, workflow, record)
	}

	if len(triggered) > 0 {
		if err := d.store.CallRecords().SetTriggeredWorkflows(ctx, record.ID, triggered); err != nil {
			logger.Error("failed to record triggered workflows", "error", err)
		}
	}

	logger.Info("workflow dispatch complete", "workflows_checked", len(workflows), "workflows_triggered", len(triggered))

	return triggered
}

// executeWorkflow runs every action of a triggered workflow, isolating
// failures per action, and writes exactly one execution log entry.
func (d *Dispatcher) executeWorkflow(ctx context.Context, workflow *models.Workflow, record *models.CallRecord) {
	logger := d.logger.With("workflow_id", workflow.ID, "call_record_id", record.ID)

	entry := &models.ExecutionLog{
		ID:           uuid.New().String(),
		WorkflowID:   workflow.ID,
		CallRecordID: record.ID,
		CreatedAt:    time.Now().UTC(),
	}

	results, fatal := d.runActions(ctx, workflow, record, logger)

	entry.ActionsExecuted = results
	entry.Status = executionStatus(results, fatal)

	if fatal != nil {
		entry.ErrorMessage = fatal.Error()
		logger.Error("workflow execution aborted", "error", fatal)
	}

	if err := d.store.Workflows().AppendExecutionLog(ctx, entry); err != nil {
		logger.Error("failed to write execution log", "error", err)
	}

	if fatal == nil {
		if err := d.store.Workflows().IncrementExecutionCount(ctx, workflow.ID); err != nil {
			logger.Error("failed to increment execution count", "error", err)
		}
	}

	logger.Info("workflow executed", "status", entry.Status, "actions", len(results))
}

// runActions executes the action list, recovering from panics so a defective
// action cannot take down the dispatch loop.
func (d *Dispatcher) runActions(ctx context.Context, workflow *models.Workflow, record *models.CallRecord, logger *slog.Logger) (results []models.ActionResult, fatal error) {
	defer func() {
		if r := recover(); r != nil {
			fatal = fmt.Errorf("workflow execution panicked: %v", r)
		}
	}()

	for _, action := range workflow.Actions {
		results = append(results, d.executeAction(ctx, workflow, record, action, logger))
	}

	return results, nil
}

func (d *Dispatcher) executeAction(ctx context.Context, workflow *models.Workflow, record *models.CallRecord, action models.WorkflowAction, logger *slog.Logger) models.ActionResult {
	result := models.ActionResult{Type: action.Type}

	if action.DelayMinutes > 0 && d.queue != nil {
		due := time.Now().UTC().Add(time.Duration(action.DelayMinutes) * time.Minute)

		err := d.queue.Enqueue(ctx, schedule.DeferredAction{
			ID:           uuid.New().String(),
			WorkflowID:   workflow.ID,
			CallRecordID: record.ID,
			ActionType:   action.Type,
			Config:       action.Config,
			DueAt:        due,
		})
		if err != nil {
			logger.Error("failed to defer action", "action_type", action.Type, "error", err)
			result.Status = models.ActionResultFailed
			result.Error = err.Error()

			return result
		}

		logger.Info("action deferred", "action_type", action.Type, "due_at", due)
		result.Status = models.ActionResultDeferred
		result.Detail = map[string]any{"due_at": due.Format(time.RFC3339)}

		return result
	}

	act, err := d.registry.CreateAction(action.Type, action.Config)
	if err != nil {
		logger.Error("failed to create action", "action_type", action.Type, "error", err)
		result.Status = models.ActionResultFailed
		result.Error = err.Error()

		return result
	}

	detail, err := act.Execute(ctx, record, logger.With("action_type", action.Type))
	if err != nil {
		logger.Error("action failed", "action_type", action.Type, "error", err)
		result.Status = models.ActionResultFailed
		result.Error = err.Error()

		return result
	}

	result.Status = models.ActionResultCompleted
	result.Detail = detail

	return result
}

func executionStatus(results []models.ActionResult, fatal error) models.ExecutionStatus {
	if fatal != nil {
		return models.ExecutionStatusFailed
	}

	for _, r := range results {
		if r.Status == models.ActionResultFailed {
			return models.ExecutionStatusPartial
		}
	}

	return models.ExecutionStatusSuccess
}

// RunDueActions drains the deferred action queue and executes everything
// whose delay has elapsed. Intended to run on a short scheduler interval.
func (d *Dispatcher) RunDueActions(ctx context.Context, now time.Time) error {
	if d.queue == nil {
		return nil
	}

	due, err := d.queue.PopDue(ctx, now)
	if err != nil {
		return fmt.Errorf("popping due actions: %w", err)
	}

	for _, deferred := range due {
		logger := d.logger.With(
			"workflow_id", deferred.WorkflowID,
			"call_record_id", deferred.CallRecordID,
			"action_type", deferred.ActionType,
		)

		record, err := d.store.CallRecords().GetByID(ctx, deferred.CallRecordID)
		if err != nil {
			logger.Error("deferred action dropped, call record unavailable", "error", err)

			continue
		}

		act, err := d.registry.CreateAction(deferred.ActionType, deferred.Config)
		if err != nil {
			logger.Error("deferred action dropped, invalid configuration", "error", err)

			continue
		}

		if _, err := act.Execute(ctx, record, logger); err != nil {
			logger.Error("deferred action failed", "error", err)

			continue
		}

		logger.Info("deferred action executed")
	}

	return nil
}
