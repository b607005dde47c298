// Package main provides the ClientFlow automation worker.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tdaniel1925/clientflow/pkg/callflow"
	"github.com/tdaniel1925/clientflow/pkg/eventbus"
	"github.com/tdaniel1925/clientflow/pkg/events"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
	"github.com/tdaniel1925/clientflow/pkg/registry"
	"github.com/tdaniel1925/clientflow/pkg/rules"
	"github.com/tdaniel1925/clientflow/pkg/schedule"
)

// dueActionsSchedule is how often the worker drains delayed workflow actions.
const dueActionsSchedule = "* * * * *"

type Worker struct {
	id         string
	logger     *slog.Logger
	store      persistence.Persistence
	eventBus   eventbus.EventBus
	queue      *schedule.Queue
	executor   *rules.Executor
	dispatcher *callflow.Dispatcher
}

func NewWorker(
	id string,
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	reg *registry.Registry,
	queue *schedule.Queue,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		id:         id,
		logger:     logger.With("module", "clientflow-worker", "worker_id", id),
		store:      store,
		eventBus:   eventBus,
		queue:      queue,
		executor:   rules.NewExecutor(store, logger),
		dispatcher: callflow.NewDispatcher(store, reg, queue, logger),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker", "worker_id", w.id)

	if err := w.eventBus.Handle(events.EmailReceivedEvent, w.handleEmailReceived); err != nil {
		return err
	}

	if err := w.eventBus.Handle(events.CallAnalyzedEvent, w.handleCallAnalyzed); err != nil {
		return err
	}

	if err := w.eventBus.Subscribe(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	if w.queue != nil {
		sweeper, err := w.startDueActionSweep(ctx)
		if err != nil {
			return err
		}

		defer sweeper.Stop()
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	w.logger.InfoContext(ctx, "Shutting down worker...")

	return nil
}

func (w *Worker) startDueActionSweep(ctx context.Context) (*cron.Cron, error) {
	sweeper := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := sweeper.AddFunc(dueActionsSchedule, func() {
		if err := w.dispatcher.RunDueActions(ctx, time.Now().UTC()); err != nil {
			w.logger.ErrorContext(ctx, "Failed to run due actions", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}

	sweeper.Start()

	return sweeper, nil
}

func (w *Worker) handleEmailReceived(ctx context.Context, event any) error {
	received, ok := event.(*events.EmailReceived)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for EmailReceived")

		return nil
	}

	logger := w.logger.With(
		"account_id", received.AccountID,
		"email_id", received.EmailID,
		"event_id", received.ID,
	)
	logger.InfoContext(ctx, "Processing received email")

	summary := w.executor.ExecuteForEmail(ctx, received.EmailID)

	applied := events.RulesApplied{
		BaseEvent:       events.NewBaseEvent(events.RulesAppliedEvent),
		AccountID:       received.AccountID,
		EmailID:         received.EmailID,
		ExecutedRules:   summary.ExecutedRules,
		MatchedRules:    summary.MatchedRules,
		ActionsExecuted: summary.ActionsExecuted,
	}
	applied.WorkerID = w.id

	if err := w.eventBus.Publish(ctx, received.AccountID, applied); err != nil {
		logger.ErrorContext(ctx, "Failed to publish rules applied event", "error", err)
	}

	return nil
}

func (w *Worker) handleCallAnalyzed(ctx context.Context, event any) error {
	analyzed, ok := event.(*events.CallAnalyzed)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for CallAnalyzed")

		return nil
	}

	logger := w.logger.With(
		"project_id", analyzed.ProjectID,
		"call_record_id", analyzed.CallRecordID,
		"event_id", analyzed.ID,
	)
	logger.InfoContext(ctx, "Processing analyzed call")

	triggered := w.dispatcher.CheckAndExecute(ctx, analyzed.CallRecordID)

	dispatched := events.WorkflowsDispatched{
		BaseEvent:            events.NewBaseEvent(events.WorkflowsDispatchedEvent),
		ProjectID:            analyzed.ProjectID,
		CallRecordID:         analyzed.CallRecordID,
		TriggeredWorkflowIDs: triggered,
	}
	dispatched.WorkerID = w.id

	if err := w.eventBus.Publish(ctx, analyzed.ProjectID, dispatched); err != nil {
		logger.ErrorContext(ctx, "Failed to publish workflows dispatched event", "error", err)
	}

	return nil
}
