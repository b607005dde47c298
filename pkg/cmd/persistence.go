package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
	"github.com/tdaniel1925/clientflow/pkg/persistence/memory"
	"github.com/tdaniel1925/clientflow/pkg/persistence/postgresql"
)

// NewPersistence creates the storage backend for the database URL. Postgres
// URLs get the real store; "memory://" keeps everything in process and is
// meant for development and tests.
func NewPersistence(
	ctx context.Context,
	logger *slog.Logger,
	databaseURL string,
	platform *models.MessagingCredentials,
) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgresql.NewPersistence(ctx, logger, databaseURL, platform)
	case databaseURL == "" || strings.HasPrefix(databaseURL, "memory://"):
		return memory.NewPersistence(platform), nil
	default:
		return nil, fmt.Errorf("unsupported database URL: %s", databaseURL)
	}
}
