// Package schedule implements the delayed-action queue backing workflow
// actions with a delay_minutes setting.
package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const queueKey = "clientflow:deferred_actions"

// DeferredAction is one workflow action postponed to a later point in time.
// The config is re-validated against the action schema when the action is
// finally executed.
type DeferredAction struct {
	ID           string         `json:"id"`
	WorkflowID   string         `json:"workflow_id"`
	CallRecordID string         `json:"call_record_id"`
	ActionType   string         `json:"action_type"`
	Config       map[string]any `json:"config"`
	DueAt        time.Time      `json:"due_at"`
}

// Queue is a redis sorted set scored by due time.
type Queue struct {
	client *redis.Client
	logger *slog.Logger
}

func NewQueue(client *redis.Client, logger *slog.Logger) *Queue {
	return &Queue{client: client, logger: logger}
}

// Enqueue schedules the action. The member ID is assigned here when empty.
func (q *Queue) Enqueue(ctx context.Context, action DeferredAction) error {
	if action.ID == "" {
		action.ID = uuid.NewString()
	}

	payload, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("failed to marshal deferred action: %w", err)
	}

	err = q.client.ZAdd(ctx, queueKey, redis.Z{
		Score:  float64(action.DueAt.Unix()),
		Member: payload,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue deferred action: %w", err)
	}

	q.logger.InfoContext(ctx, "deferred action enqueued",
		"action_type", action.ActionType,
		"workflow_id", action.WorkflowID,
		"due_at", action.DueAt)

	return nil
}

// PopDue removes and returns every action due at or before now. An entry that
// fails to decode is dropped and logged rather than wedging the queue.
func (q *Queue) PopDue(ctx context.Context, now time.Time) ([]DeferredAction, error) {
	max := fmt.Sprintf("%d", now.Unix())

	members, err := q.client.ZRangeByScore(ctx, queueKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: max,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read due actions: %w", err)
	}

	if len(members) == 0 {
		return nil, nil
	}

	removals := make([]any, len(members))
	for i, m := range members {
		removals[i] = m
	}

	err = q.client.ZRem(ctx, queueKey, removals...).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to remove due actions: %w", err)
	}

	actions := make([]DeferredAction, 0, len(members))

	for _, member := range members {
		var action DeferredAction

		err := json.Unmarshal([]byte(member), &action)
		if err != nil {
			q.logger.ErrorContext(ctx, "dropping undecodable deferred action", "error", err)

			continue
		}

		actions = append(actions, action)
	}

	return actions, nil
}
