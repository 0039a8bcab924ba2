package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/campusconnect/backend/internal/pkg/filestorage"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const (
	CriticalQueue = "critical"
	DefaultQueue  = "default"
)

// TokenCleaner purges expired refresh tokens
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context, revokedBefore time.Time) (int64, error)
}

// TaskProcessor runs background tasks
type TaskProcessor interface {
	Start() error
	Shutdown()
}

// RedisTaskProcessor consumes tasks from the asynq Redis queue and runs the periodic jobs
type RedisTaskProcessor struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	store     filestorage.MediaStore
	tokens    TokenCleaner
	log       zerolog.Logger
}

// NewRedisTaskProcessor creates a RedisTaskProcessor
func NewRedisTaskProcessor(
	opt asynq.RedisClientOpt,
	concurrency int,
	store filestorage.MediaStore,
	tokens TokenCleaner,
	log zerolog.Logger,
) *RedisTaskProcessor {
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			CriticalQueue: 10,
			DefaultQueue:  5,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("type", task.Type()).Str("payload", string(task.Payload())).Msg("process task failed")
		}),
		Logger: NewLogger(log),
	})
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Logger: NewLogger(log),
	})

	return &RedisTaskProcessor{
		server:    server,
		scheduler: scheduler,
		store:     store,
		tokens:    tokens,
		log:       log,
	}
}

// Start registers the handlers and periodic jobs and begins processing
func (p *RedisTaskProcessor) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskDeleteMedia, p.ProcessTaskDeleteMedia)
	mux.HandleFunc(TaskCleanupTokens, p.ProcessTaskCleanupTokens)

	if _, err := p.scheduler.Register(CleanupTokensSchedule, asynq.NewTask(TaskCleanupTokens, nil),
		asynq.Queue(DefaultQueue)); err != nil {
		return fmt.Errorf("failed to register periodic task: %w", err)
	}
	if err := p.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	return p.server.Start(mux)
}

// Shutdown stops the scheduler and waits for running tasks
func (p *RedisTaskProcessor) Shutdown() {
	p.scheduler.Shutdown()
	p.server.Shutdown()
}
