package services

import (
	"context"
	"fmt"
	"time"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/repositories"
	"github.com/campusconnect/backend/internal/pkg/filestorage"
	"github.com/campusconnect/backend/internal/pkg/worker"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// MediaCleaner removes media objects from the media host. Failures are logged, never returned:
// a post change does not wait on the media host.
type MediaCleaner interface {
	Clean(ctx context.Context, media []models.Media, reason string)
}

func mediaKeys(media []models.Media) []string {
	keys := make([]string, 0, len(media))
	for _, m := range media {
		if m.Key != "" {
			keys = append(keys, m.Key)
		}
	}
	return keys
}

// authoredMedia collects the media of every post a user created. Deleting the user row cascades to
// those posts, so the media has to be read before the delete.
func authoredMedia(ctx context.Context, feeds repositories.IFeedRepository, userID int64) ([]models.Media, error) {
	posts, err := feeds.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list authored posts: %w", err)
	}
	var media []models.Media
	for _, p := range posts {
		media = append(media, p.Media...)
	}
	return media, nil
}

// InlineMediaCleaner deletes objects in the request goroutine
type InlineMediaCleaner struct {
	store  filestorage.MediaStore
	logger zerolog.Logger
}

// NewInlineMediaCleaner creates a cleaner deleting directly from store
func NewInlineMediaCleaner(store filestorage.MediaStore, logger zerolog.Logger) *InlineMediaCleaner {
	return &InlineMediaCleaner{store: store, logger: logger}
}

// Clean deletes every object of media
func (c *InlineMediaCleaner) Clean(ctx context.Context, media []models.Media, reason string) {
	for _, key := range mediaKeys(media) {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Error().Err(err).Str("key", key).Str("reason", reason).Msg("Failed to delete media object")
		}
	}
}

// QueuedMediaCleaner hands deletions to the background worker and falls back to inline deletion
// when the queue is unavailable
type QueuedMediaCleaner struct {
	distributor worker.TaskDistributor
	fallback    MediaCleaner
	logger      zerolog.Logger
}

// NewQueuedMediaCleaner creates a cleaner enqueueing media:delete tasks
func NewQueuedMediaCleaner(distributor worker.TaskDistributor, fallback MediaCleaner, logger zerolog.Logger) *QueuedMediaCleaner {
	return &QueuedMediaCleaner{distributor: distributor, fallback: fallback, logger: logger}
}

// Clean enqueues one task for all objects of media
func (c *QueuedMediaCleaner) Clean(ctx context.Context, media []models.Media, reason string) {
	keys := mediaKeys(media)
	if len(keys) == 0 {
		return
	}

	payload := &worker.PayloadDeleteMedia{Keys: keys, Reason: reason}
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.ProcessIn(2 * time.Second),
		asynq.Queue(worker.DefaultQueue),
	}
	if err := c.distributor.DistributeTaskDeleteMedia(ctx, payload, opts...); err != nil {
		c.logger.Warn().Err(err).Int("keys", len(keys)).Msg("Failed to enqueue media deletion, deleting inline")
		if c.fallback != nil {
			c.fallback.Clean(ctx, media, reason)
		}
	}
}
