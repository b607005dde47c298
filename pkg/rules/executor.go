package rules

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tdaniel1925/clientflow/pkg/persistence"
)

// Summary is the always-successful result of one rule run. Failure detail
// lives in the logs and in per-rule statistics; the trigger path never sees
// an error.
type Summary struct {
	ExecutedRules   int `json:"executed_rules"`
	MatchedRules    int `json:"matched_rules"`
	ActionsExecuted int `json:"actions_executed"`
}

// Executor orchestrates rule evaluation for a single email.
type Executor struct {
	emails  persistence.EmailRepository
	rules   persistence.RuleRepository
	actions *ActionExecutor
	logger  *slog.Logger
}

func NewExecutor(store persistence.Persistence, logger *slog.Logger) *Executor {
	return &Executor{
		emails:  store.Emails(),
		rules:   store.Rules(),
		actions: NewActionExecutor(store.Emails(), logger),
		logger:  logger,
	}
}

// ExecuteForEmail loads the email, evaluates the account's enabled rules in
// ascending priority order and executes matched action lists. Rules are
// evaluated against the evolving in-memory state, so a later rule observes the
// mutations earlier rules applied in the same run. A missing email or a
// failing rule is logged and absorbed, never surfaced to the caller.
func (e *Executor) ExecuteForEmail(ctx context.Context, emailID string) Summary {
	ctx, span := otel.Tracer("rules").Start(ctx, "rules.ExecuteForEmail")
	defer span.End()

	span.SetAttributes(attribute.String("email.id", emailID))

	logger := e.logger.With("email_id", emailID)

	var summary Summary

	email, err := e.emails.GetByID(ctx, emailID)
	if err != nil {
		if persistence.IsEmailNotFound(err) {
			logger.WarnContext(ctx, "email not found, skipping rule run")
		} else {
			logger.ErrorContext(ctx, "failed to load email", "error", err)
		}

		return summary
	}

	ruleList, err := e.rules.ListEnabledByAccount(ctx, email.AccountID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load rules", "error", err)

		return summary
	}

	for _, rule := range ruleList {
		summary.ExecutedRules++

		if !EvaluateGroup(email, rule.Conditions) {
			continue
		}

		summary.MatchedRules++

		ruleLogger := logger.With("rule_id", rule.ID, "rule_name", rule.Name)
		ruleLogger.InfoContext(ctx, "rule matched, executing actions", "actions", len(rule.Actions))

		actionSummary := e.actions.ExecuteAll(ctx, email, rule.Actions)
		summary.ActionsExecuted += actionSummary.Successful

		if actionSummary.Failed > 0 || actionSummary.NotImplemented > 0 {
			ruleLogger.WarnContext(ctx, "some rule actions did not complete",
				"failed", actionSummary.Failed,
				"not_implemented", actionSummary.NotImplemented)
		}

		// Statistics update even when actions failed: the rule did match.
		err := e.rules.IncrementMatchCount(ctx, rule.ID)
		if err != nil {
			ruleLogger.ErrorContext(ctx, "failed to update rule statistics", "error", err)
		}
	}

	logger.InfoContext(ctx, "rule run completed",
		"executed_rules", summary.ExecutedRules,
		"matched_rules", summary.MatchedRules,
		"actions_executed", summary.ActionsExecuted)

	return summary
}
