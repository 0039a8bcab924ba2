package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskCleanupTokens     = "tokens:cleanup"
	CleanupTokensSchedule = "@every 1h"

	// revoked tokens are kept this long for audit
	revokedTokenRetention = 7 * 24 * time.Hour
)

// ProcessTaskCleanupTokens deletes expired and long-revoked refresh tokens
func (p *RedisTaskProcessor) ProcessTaskCleanupTokens(ctx context.Context, task *asynq.Task) error {
	removed, err := p.tokens.CleanupExpiredTokens(ctx, time.Now().Add(-revokedTokenRetention))
	if err != nil {
		return fmt.Errorf("failed to clean up tokens: %w", err)
	}
	p.log.Info().Str("type", task.Type()).Int64("removed", removed).Msg("processed task")
	return nil
}
