package models

import "time"

// RuleField identifies which part of an email a condition reads.
type RuleField string

const (
	RuleFieldSender        RuleField = "sender"
	RuleFieldRecipient     RuleField = "recipient"
	RuleFieldSubject       RuleField = "subject"
	RuleFieldBody          RuleField = "body"
	RuleFieldHasAttachment RuleField = "has_attachment"
	RuleFieldIsImportant   RuleField = "is_important"
	RuleFieldIsRead        RuleField = "is_read"
	RuleFieldLabel         RuleField = "label"
	RuleFieldReceivedAt    RuleField = "received_at"
)

// RuleOperator is the comparison applied between the field and the value.
type RuleOperator string

const (
	RuleOperatorContains   RuleOperator = "contains"
	RuleOperatorEquals     RuleOperator = "equals"
	RuleOperatorStartsWith RuleOperator = "starts_with"
	RuleOperatorEndsWith   RuleOperator = "ends_with"
	RuleOperatorIs         RuleOperator = "is"
	RuleOperatorIsNot      RuleOperator = "is_not"
	RuleOperatorRegex      RuleOperator = "regex"
)

// GroupLogic combines the conditions of a group.
type GroupLogic string

const (
	GroupLogicAnd GroupLogic = "AND"
	GroupLogicOr  GroupLogic = "OR"
)

// RuleCondition is a single predicate over one email field. Value is a string,
// boolean or number depending on the field.
type RuleCondition struct {
	Field    RuleField    `json:"field"    validate:"required"`
	Operator RuleOperator `json:"operator" validate:"required"`
	Value    any          `json:"value"`
}

// ConditionGroup combines predicates with AND/OR. A group with no conditions
// never matches.
type ConditionGroup struct {
	Logic GroupLogic      `json:"logic" validate:"required,oneof=AND OR"`
	Rules []RuleCondition `json:"rules"`
}

// RuleActionType enumerates the mutations a matched rule may apply.
type RuleActionType string

const (
	RuleActionMarkAsRead      RuleActionType = "mark_as_read"
	RuleActionMarkAsStarred   RuleActionType = "mark_as_starred"
	RuleActionMarkAsImportant RuleActionType = "mark_as_important"
	RuleActionMoveToFolder    RuleActionType = "move_to_folder"
	RuleActionDelete          RuleActionType = "delete"
	RuleActionApplyLabel      RuleActionType = "apply_label"
	RuleActionForward         RuleActionType = "forward"
	RuleActionAutoReply       RuleActionType = "auto_reply"
	RuleActionBlockSender     RuleActionType = "block_sender"
	RuleActionRunAITask       RuleActionType = "run_ai_task"
)

// RuleAction describes one side effect of a matched rule.
type RuleAction struct {
	Type  RuleActionType `json:"type" validate:"required"`
	Value any            `json:"value,omitempty"`
}

// Rule is a persisted inbox rule. The engine only writes MatchCount and
// LastTriggeredAt; everything else belongs to the rule-management layer.
type Rule struct {
	ID              string         `json:"id"`
	AccountID       string         `json:"account_id" validate:"required"`
	Name            string         `json:"name"       validate:"required,min=3"`
	Enabled         bool           `json:"enabled"`
	Priority        int            `json:"priority"`
	Conditions      ConditionGroup `json:"conditions"`
	Actions         []RuleAction   `json:"actions"    validate:"required,min=1,dive"`
	MatchCount      int64          `json:"match_count"`
	LastTriggeredAt *time.Time     `json:"last_triggered_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
