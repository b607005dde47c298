// Package events defines the event types that move through the automation
// pipeline: inbox emails arriving and call records finishing analysis.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic is the single stream all automation events are published to.
const Topic = "clientflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Inbound events consumed by the worker.
	EmailReceivedEvent EventType = "email.received"
	CallAnalyzedEvent  EventType = "call.analyzed"

	// Completion events published by the worker after processing.
	RulesAppliedEvent        EventType = "rules.applied"
	WorkflowsDispatchedEvent EventType = "workflows.dispatched"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	WorkerID  string         `json:"worker_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// EmailReceived is published when a new email lands in an account's inbox
// and needs the rule engine run against it.
type EmailReceived struct {
	BaseEvent

	AccountID string `json:"account_id"`
	EmailID   string `json:"email_id"`
}

func (e EmailReceived) GetType() EventType {
	return EmailReceivedEvent
}

// CallAnalyzed is published when call analysis completes and the record is
// ready for workflow dispatch.
type CallAnalyzed struct {
	BaseEvent

	ProjectID    string `json:"project_id"`
	CallRecordID string `json:"call_record_id"`
}

func (e CallAnalyzed) GetType() EventType {
	return CallAnalyzedEvent
}

// RulesApplied reports the outcome of one rule-engine pass over an email.
type RulesApplied struct {
	BaseEvent

	AccountID       string `json:"account_id"`
	EmailID         string `json:"email_id"`
	ExecutedRules   int    `json:"executed_rules"`
	MatchedRules    int    `json:"matched_rules"`
	ActionsExecuted int    `json:"actions_executed"`
}

func (e RulesApplied) GetType() EventType {
	return RulesAppliedEvent
}

// WorkflowsDispatched reports which workflows a call record triggered.
type WorkflowsDispatched struct {
	BaseEvent

	ProjectID            string   `json:"project_id"`
	CallRecordID         string   `json:"call_record_id"`
	TriggeredWorkflowIDs []string `json:"triggered_workflow_ids"`
}

func (e WorkflowsDispatched) GetType() EventType {
	return WorkflowsDispatchedEvent
}

func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]any),
	}
}
