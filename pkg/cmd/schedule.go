package cmd

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/tdaniel1925/clientflow/pkg/schedule"
)

// NewScheduleQueue connects the delayed-action queue. An empty URL disables
// scheduling; delayed actions then run immediately.
func NewScheduleQueue(redisURL string, logger *slog.Logger) (*schedule.Queue, error) {
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	return schedule.NewQueue(redis.NewClient(opts), logger), nil
}
