package rules

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
)

// ActionStatus is the per-action outcome. NotImplemented is distinct from
// Failed so callers can tell "attempted and failed" apart from "this
// deployment does not support the action type yet".
type ActionStatus string

const (
	ActionCompleted      ActionStatus = "completed"
	ActionFailed         ActionStatus = "failed"
	ActionNotImplemented ActionStatus = "not_implemented"
)

// ActionSummary aggregates independent per-action results.
type ActionSummary struct {
	Total          int `json:"total"`
	Successful     int `json:"successful"`
	Failed         int `json:"failed"`
	NotImplemented int `json:"not_implemented"`
}

// ActionExecutor applies rule actions to emails. Every action is one atomic
// mutation persisted through the email repository; the in-memory email is
// mutated too so later rules in the same run observe earlier effects.
type ActionExecutor struct {
	emails persistence.EmailRepository
	logger *slog.Logger
}

func NewActionExecutor(emails persistence.EmailRepository, logger *slog.Logger) *ActionExecutor {
	return &ActionExecutor{emails: emails, logger: logger}
}

// ExecuteAll runs the actions independently: one failure never blocks the
// rest.
func (x *ActionExecutor) ExecuteAll(ctx context.Context, email *models.Email, actions []models.RuleAction) ActionSummary {
	summary := ActionSummary{Total: len(actions)}

	for _, action := range actions {
		switch x.Execute(ctx, email, action) {
		case ActionCompleted:
			summary.Successful++
		case ActionNotImplemented:
			summary.NotImplemented++
		default:
			summary.Failed++
		}
	}

	return summary
}

// Execute applies one action and reports its status. Unsupported and unknown
// action types are logged, never fatal.
func (x *ActionExecutor) Execute(ctx context.Context, email *models.Email, action models.RuleAction) ActionStatus {
	logger := x.logger.With("email_id", email.ID, "action_type", action.Type)

	switch action.Type {
	case models.RuleActionMarkAsRead:
		return x.setFlag(ctx, email, action, func(v bool) models.EmailUpdate {
			email.IsRead = v

			return models.EmailUpdate{IsRead: &v}
		})
	case models.RuleActionMarkAsStarred:
		return x.setFlag(ctx, email, action, func(v bool) models.EmailUpdate {
			email.IsStarred = v

			return models.EmailUpdate{IsStarred: &v}
		})
	case models.RuleActionMarkAsImportant:
		return x.setFlag(ctx, email, action, func(v bool) models.EmailUpdate {
			email.IsImportant = v

			return models.EmailUpdate{IsImportant: &v}
		})
	case models.RuleActionMoveToFolder:
		return x.moveToFolder(ctx, email, action, logger)
	case models.RuleActionDelete:
		now := time.Now().UTC()
		email.DeletedAt = &now

		return x.persist(ctx, email.ID, models.EmailUpdate{DeletedAt: &now}, logger)
	case models.RuleActionApplyLabel:
		return x.applyLabel(ctx, email, action, logger)
	case models.RuleActionForward, models.RuleActionAutoReply,
		models.RuleActionBlockSender, models.RuleActionRunAITask:
		logger.Info("action type not supported by this deployment, skipping")

		return ActionNotImplemented
	default:
		logger.Warn("unknown rule action type")

		return ActionFailed
	}
}

func (x *ActionExecutor) setFlag(ctx context.Context, email *models.Email, action models.RuleAction, apply func(bool) models.EmailUpdate) ActionStatus {
	value := true
	if b, ok := action.Value.(bool); ok {
		value = b
	}

	update := apply(value)

	return x.persist(ctx, email.ID, update, x.logger.With("email_id", email.ID, "action_type", action.Type))
}

// moveToFolder maps the well-known folders to dedicated flags and falls back
// to the free-form folder name for anything else.
func (x *ActionExecutor) moveToFolder(ctx context.Context, email *models.Email, action models.RuleAction, logger *slog.Logger) ActionStatus {
	folder, _ := action.Value.(string)
	enabled := true

	var update models.EmailUpdate

	switch strings.ToLower(folder) {
	case "archive":
		email.IsArchived = true
		update.IsArchived = &enabled
	case "trash":
		email.IsTrashed = true
		update.IsTrashed = &enabled
	case "spam":
		email.IsSpam = true
		update.IsSpam = &enabled
	case "":
		logger.Warn("move_to_folder without a folder name")

		return ActionFailed
	default:
		email.Folder = folder
		update.Folder = &folder
	}

	return x.persist(ctx, email.ID, update, logger)
}

// applyLabel appends the label only when absent, so re-running a rule never
// duplicates labels.
func (x *ActionExecutor) applyLabel(ctx context.Context, email *models.Email, action models.RuleAction, logger *slog.Logger) ActionStatus {
	label, _ := action.Value.(string)
	if label == "" {
		logger.Warn("apply_label without a label value")

		return ActionFailed
	}

	for _, existing := range email.Labels {
		if existing == label {
			return ActionCompleted
		}
	}

	labels := append(append([]string(nil), email.Labels...), label)
	email.Labels = labels

	return x.persist(ctx, email.ID, models.EmailUpdate{Labels: &labels}, logger)
}

func (x *ActionExecutor) persist(ctx context.Context, emailID string, update models.EmailUpdate, logger *slog.Logger) ActionStatus {
	err := x.emails.Update(ctx, emailID, update)
	if err != nil {
		logger.ErrorContext(ctx, "failed to persist rule action", "error", err)

		return ActionFailed
	}

	return ActionCompleted
}
