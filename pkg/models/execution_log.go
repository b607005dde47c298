package models

import "time"

// ExecutionStatus summarizes one workflow run.
type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusPartial ExecutionStatus = "partial"
	ExecutionStatusFailed  ExecutionStatus = "failed"
)

// ActionResultStatus is the outcome of one action within a run.
type ActionResultStatus string

const (
	ActionResultCompleted ActionResultStatus = "completed"
	ActionResultFailed    ActionResultStatus = "failed"
	ActionResultDeferred  ActionResultStatus = "deferred"
)

// ActionResult records the outcome of one workflow action.
type ActionResult struct {
	Type   string             `json:"type"`
	Status ActionResultStatus `json:"status"`
	Error  string             `json:"error,omitempty"`
	Detail map[string]any     `json:"detail,omitempty"`
}

// ExecutionLog is the append-only audit row written once per workflow
// execution. Immutable after creation.
type ExecutionLog struct {
	ID              string          `json:"id"`
	WorkflowID      string          `json:"workflow_id"`
	CallRecordID    string          `json:"call_record_id"`
	Status          ExecutionStatus `json:"status"`
	ActionsExecuted []ActionResult  `json:"actions_executed"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
