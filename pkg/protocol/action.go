// Package protocol defines the contracts for pluggable workflow actions.
package protocol

import (
	"context"
	"log/slog"

	"github.com/tdaniel1925/clientflow/pkg/models"
)

// Action executes one workflow step against the triggering call record and
// returns a result map for the execution log.
type Action interface {
	Execute(ctx context.Context, record *models.CallRecord, logger *slog.Logger) (map[string]any, error)
}

// ActionFactory creates action instances and describes their configuration.
type ActionFactory interface {
	// ID returns the action type this factory builds (e.g. "send_email").
	ID() string

	// Name returns the human-readable name for the action type.
	Name() string

	// Description returns a short description of what the action does.
	Description() string

	// Schema returns the JSON schema the action configuration must satisfy.
	Schema() map[string]any

	// Create builds an action from a validated configuration.
	Create(config map[string]any) (Action, error)
}
