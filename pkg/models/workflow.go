package models

import "time"

// TriggerOperator is the comparison used by workflow trigger conditions.
type TriggerOperator string

const (
	TriggerOpEquals             TriggerOperator = "equals"
	TriggerOpNotEquals          TriggerOperator = "not_equals"
	TriggerOpGreaterThan        TriggerOperator = "greater_than"
	TriggerOpLessThan           TriggerOperator = "less_than"
	TriggerOpGreaterThanOrEqual TriggerOperator = "greater_than_or_equal"
	TriggerOpLessThanOrEqual    TriggerOperator = "less_than_or_equal"
	TriggerOpContains           TriggerOperator = "contains"
	TriggerOpNotContains        TriggerOperator = "not_contains"
	TriggerOpIsTrue             TriggerOperator = "is_true"
	TriggerOpIsFalse            TriggerOperator = "is_false"
)

// TriggerCondition is one predicate over a call-record field. Validation
// happens when the workflow is created, not via struct tags, because the bare
// condition is legitimately empty when a group form is used.
type TriggerCondition struct {
	Field    string          `json:"field"`
	Operator TriggerOperator `json:"operator"`
	Value    any             `json:"value,omitempty"`
}

// TriggerConditions is either an all-of group, an any-of group, or a single
// bare condition (All and Any empty). All wins when both are present.
type TriggerConditions struct {
	All []TriggerCondition `json:"all,omitempty"`
	Any []TriggerCondition `json:"any,omitempty"`

	TriggerCondition
}

// WorkflowActionType enumerates workflow side effects.
type WorkflowActionType string

const (
	WorkflowActionSendEmail  WorkflowActionType = "send_email"
	WorkflowActionSendSMS    WorkflowActionType = "send_sms"
	WorkflowActionCreateTask WorkflowActionType = "create_task"
)

// WorkflowAction is one step of a workflow's action list. Config carries the
// type-specific fields and is validated against the action's JSON schema when
// the workflow is created.
type WorkflowAction struct {
	Type         string         `json:"type" validate:"required"`
	Config       map[string]any `json:"config"`
	DelayMinutes int            `json:"delay_minutes,omitempty" validate:"gte=0"`
}

// Workflow is a persisted call-record workflow. The engine only writes
// TotalExecutions; the rest belongs to the workflow-management layer.
type Workflow struct {
	ID                string            `json:"id"`
	ProjectID         string            `json:"project_id" validate:"required"`
	Name              string            `json:"name"       validate:"required,min=3"`
	Active            bool              `json:"active"`
	TriggerConditions TriggerConditions `json:"trigger_conditions"`
	Actions           []WorkflowAction  `json:"actions"    validate:"required,min=1,dive"`
	TotalExecutions   int64             `json:"total_executions"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
