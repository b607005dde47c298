// Package web provides the HTTP handlers and request types for the
// automation API.
package web

import "github.com/tdaniel1925/clientflow/pkg/models"

// CreateRuleRequest is the request body for creating an inbox rule.
type CreateRuleRequest struct {
	Name       string                `json:"name"     validate:"required,min=3"`
	Enabled    *bool                 `json:"enabled,omitempty"`
	Priority   int                   `json:"priority"`
	Conditions models.ConditionGroup `json:"conditions"`
	Actions    []models.RuleAction   `json:"actions"  validate:"required,min=1,dive"`
}

// UpdateRuleRequest is the request body for updating an inbox rule. All
// fields are optional to support partial updates.
type UpdateRuleRequest struct {
	Name       *string                `json:"name,omitempty"     validate:"omitempty,min=3"`
	Enabled    *bool                  `json:"enabled,omitempty"`
	Priority   *int                   `json:"priority,omitempty"`
	Conditions *models.ConditionGroup `json:"conditions,omitempty"`
	Actions    []models.RuleAction    `json:"actions,omitempty"  validate:"omitempty,min=1,dive"`
}

// CreateWorkflowRequest is the request body for creating a call workflow.
type CreateWorkflowRequest struct {
	Name              string                   `json:"name"    validate:"required,min=3"`
	Active            *bool                    `json:"active,omitempty"`
	TriggerConditions models.TriggerConditions `json:"trigger_conditions"`
	Actions           []models.WorkflowAction  `json:"actions" validate:"required,min=1,dive"`
}

// UpdateWorkflowRequest is the request body for updating a call workflow.
// All fields are optional to support partial updates.
type UpdateWorkflowRequest struct {
	Name              *string                   `json:"name,omitempty"    validate:"omitempty,min=3"`
	Active            *bool                     `json:"active,omitempty"`
	TriggerConditions *models.TriggerConditions `json:"trigger_conditions,omitempty"`
	Actions           []models.WorkflowAction   `json:"actions,omitempty" validate:"omitempty,min=1,dive"`
}

// IngestEmailRequest is the request body for registering a newly received
// email with the automation pipeline.
type IngestEmailRequest struct {
	ID             string   `json:"id,omitempty"`
	FromAddress    string   `json:"from_address" validate:"required"`
	ToAddresses    []string `json:"to_addresses"`
	Subject        string   `json:"subject"`
	BodyText       string   `json:"body_text"`
	BodyHTML       string   `json:"body_html"`
	HasAttachments bool     `json:"has_attachments"`
	Folder         string   `json:"folder,omitempty"`
	Labels         []string `json:"labels,omitempty"`
}

// IngestCallRequest is the request body for registering an analyzed call
// record with the automation pipeline.
type IngestCallRequest struct {
	ID              string `json:"id,omitempty"`
	CallerName      string `json:"caller_name"`
	CallerPhone     string `json:"caller_phone"`
	Topic           string `json:"topic"`
	Summary         string `json:"summary"`
	Sentiment       string `json:"sentiment"`
	QualityRating   int    `json:"quality_rating"   validate:"gte=0,lte=5"`
	FollowUpNeeded  bool   `json:"follow_up_needed"`
	FollowUpReason  string `json:"follow_up_reason"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
}
