package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/campusconnect/backend/internal/pkg/logger"
	"github.com/hibiken/asynq"
)

const TaskDeleteMedia = "media:delete"

// PayloadDeleteMedia lists media objects to remove from the media host
type PayloadDeleteMedia struct {
	Keys []string `json:"keys"`
	// Reason is logged with the task, e.g. "feed 12 deleted"
	Reason string `json:"reason,omitempty"`
}

// DistributeTaskDeleteMedia enqueues a media deletion
func (d *RedisTaskDistributor) DistributeTaskDeleteMedia(
	ctx context.Context,
	payload *PayloadDeleteMedia,
	opts ...asynq.Option,
) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TaskDeleteMedia, jsonPayload, opts...)
	info, err := d.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	logger.Debug().
		Str("type", task.Type()).
		Str("queue", info.Queue).
		Int("max_retry", info.MaxRetry).
		Int("keys", len(payload.Keys)).
		Msg("enqueued task")
	return nil
}

// ProcessTaskDeleteMedia deletes every key of the payload. Failed keys are retried as a whole.
func (p *RedisTaskProcessor) ProcessTaskDeleteMedia(ctx context.Context, task *asynq.Task) error {
	var payload PayloadDeleteMedia
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	var errs []error
	for _, key := range payload.Keys {
		if err := p.store.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to delete %d of %d media objects: %w", len(errs), len(payload.Keys), err)
	}

	p.log.Info().
		Str("type", task.Type()).
		Int("keys", len(payload.Keys)).
		Str("reason", payload.Reason).
		Msg("processed task")
	return nil
}
