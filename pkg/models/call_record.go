package models

import "time"

// CallRecord holds the AI analysis of a completed voice-campaign call. Workflow
// trigger conditions address its fields by the external (camelCase) key the
// analysis pipeline writes, so the accessor table below is the only supported
// way to read them dynamically.
type CallRecord struct {
	ID                   string     `json:"id"`
	ProjectID            string     `json:"project_id" validate:"required"`
	CallerName           string     `json:"caller_name"`
	CallerPhone          string     `json:"caller_phone"`
	Topic                string     `json:"topic"`
	Summary              string     `json:"summary"`
	Sentiment            string     `json:"sentiment"`
	QualityRating        int        `json:"quality_rating"`
	FollowUpNeeded       bool       `json:"follow_up_needed"`
	FollowUpReason       string     `json:"follow_up_reason"`
	DurationSeconds      int        `json:"duration_seconds"`
	TriggeredWorkflowIDs []string   `json:"triggered_workflow_ids,omitempty"`
	AnalyzedAt           time.Time  `json:"analyzed_at"`
	CreatedAt            time.Time  `json:"created_at"`
	DeletedAt            *time.Time `json:"deleted_at,omitempty"`
}

// callRecordFields is the closed accessor table for dynamic field lookup.
// Values are string, int or bool; unknown keys are rejected up front rather
// than at evaluation time.
var callRecordFields = map[string]func(*CallRecord) any{
	"callerName":          func(r *CallRecord) any { return r.CallerName },
	"callerPhone":         func(r *CallRecord) any { return r.CallerPhone },
	"callTopic":           func(r *CallRecord) any { return r.Topic },
	"callSummary":         func(r *CallRecord) any { return r.Summary },
	"callSentiment":       func(r *CallRecord) any { return r.Sentiment },
	"callQualityRating":   func(r *CallRecord) any { return r.QualityRating },
	"followUpNeeded":      func(r *CallRecord) any { return r.FollowUpNeeded },
	"followUpReason":      func(r *CallRecord) any { return r.FollowUpReason },
	"callDurationSeconds": func(r *CallRecord) any { return r.DurationSeconds },
}

// Field returns the named analysis field, or false when the key is not part of
// the supported set.
func (r *CallRecord) Field(name string) (any, bool) {
	extract, ok := callRecordFields[name]
	if !ok {
		return nil, false
	}

	return extract(r), true
}

// KnownCallRecordField reports whether workflows may reference the field.
func KnownCallRecordField(name string) bool {
	_, ok := callRecordFields[name]

	return ok
}
