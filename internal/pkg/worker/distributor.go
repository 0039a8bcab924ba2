package worker

import (
	"context"

	"github.com/hibiken/asynq"
)

// TaskDistributor enqueues background tasks
type TaskDistributor interface {
	DistributeTaskDeleteMedia(ctx context.Context, payload *PayloadDeleteMedia, opts ...asynq.Option) error
	Close() error
}

// RedisTaskDistributor enqueues tasks on the asynq Redis queue
type RedisTaskDistributor struct {
	client *asynq.Client
}

// NewRedisTaskDistributor creates a RedisTaskDistributor
func NewRedisTaskDistributor(opt asynq.RedisClientOpt) *RedisTaskDistributor {
	return &RedisTaskDistributor{client: asynq.NewClient(opt)}
}

// Close releases the queue connection
func (d *RedisTaskDistributor) Close() error {
	return d.client.Close()
}
