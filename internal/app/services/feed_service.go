package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/models/dto"
	"github.com/campusconnect/backend/internal/app/repositories"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/websocket"
	"github.com/rs/zerolog"
)

// FeedService manages college feed posts, reactions and comments
type FeedService struct {
	feedRepo repositories.IFeedRepository
	uploader MediaUploader
	cleaner  MediaCleaner
	notifier Notifier
	logger   zerolog.Logger
}

// NewFeedService creates a new feed service
func NewFeedService(
	feedRepo repositories.IFeedRepository,
	uploader MediaUploader,
	cleaner MediaCleaner,
	notifier Notifier,
	logger zerolog.Logger,
) *FeedService {
	return &FeedService{
		feedRepo: feedRepo,
		uploader: uploader,
		cleaner:  cleaner,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateFeed publishes a post on the caller's college feed
func (s *FeedService) CreateFeed(ctx context.Context, actor Actor, req *dto.FeedRequest, files []*multipart.FileHeader) (*models.Feed, error) {
	feedType, err := parseFeedType(req.Type)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.NewBadRequestError("Title and content are required")
	}

	media, err := s.upload(ctx, files)
	if err != nil {
		return nil, err
	}

	feed := &models.Feed{
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		CreatedBy: actor.UserID,
		CollegeID: actor.CollegeID,
		Type:      feedType,
		Media:     media,
	}
	if err := s.feedRepo.Create(ctx, feed); err != nil {
		s.cleaner.Clean(ctx, media, "feed create failed")
		return nil, err
	}

	created, err := s.feedRepo.GetByID(ctx, feed.ID)
	if err != nil {
		return nil, err
	}

	s.announce(created)
	s.logger.Info().
		Int64("feedID", created.ID).
		Int64("userID", actor.UserID).
		Int("media", len(media)).
		Msg("Post created")

	return created, nil
}

// GetPosts lists the caller's college feed, newest first
func (s *FeedService) GetPosts(ctx context.Context, actor Actor, query *dto.FeedListQuery) ([]*models.Feed, error) {
	filter := models.FeedFilter{CollegeID: actor.CollegeID}
	if query != nil {
		feedType := models.FeedType(query.Type)
		if query.Type != "" && !feedType.Valid() {
			return nil, apperrors.NewBadRequestError("Invalid feed type")
		}
		filter.Type = feedType
		filter.Before = query.Before
		if query.Limit > 0 {
			filter.Limit = uint64(query.Limit)
		}
	}
	return s.feedRepo.List(ctx, filter)
}

// GetPost returns one post
func (s *FeedService) GetPost(ctx context.Context, feedID int64) (*models.Feed, error) {
	return s.feedRepo.GetByID(ctx, feedID)
}

// EditPost replaces the content and media of a post. The previous media objects are removed.
func (s *FeedService) EditPost(ctx context.Context, actor Actor, feedID int64, req *dto.FeedRequest, files []*multipart.FileHeader) (*models.Feed, error) {
	feed, err := s.ownedPost(ctx, actor, feedID)
	if err != nil {
		return nil, err
	}

	feedType := feed.Type
	if req.Type != "" {
		if feedType, err = parseFeedType(req.Type); err != nil {
			return nil, err
		}
	}

	media, err := s.upload(ctx, files)
	if err != nil {
		return nil, err
	}

	previous := feed.Media
	if t := strings.TrimSpace(req.Title); t != "" {
		feed.Title = t
	}
	if req.Content != "" {
		feed.Content = req.Content
	}
	feed.Type = feedType
	feed.Media = media

	if err := s.feedRepo.Update(ctx, feed); err != nil {
		s.cleaner.Clean(ctx, media, "feed update failed")
		return nil, err
	}
	s.cleaner.Clean(ctx, previous, fmt.Sprintf("feed %d edited", feed.ID))

	updated, err := s.feedRepo.GetByID(ctx, feed.ID)
	if err != nil {
		return nil, err
	}

	s.announce(updated)
	s.logger.Info().Int64("feedID", feed.ID).Int("removedMedia", len(previous)).Msg("Post edited")
	return updated, nil
}

// DeletePost removes a post and its media
func (s *FeedService) DeletePost(ctx context.Context, actor Actor, feedID int64) error {
	feed, err := s.ownedPost(ctx, actor, feedID)
	if err != nil {
		return err
	}

	if err := s.feedRepo.Delete(ctx, feed.ID); err != nil {
		return err
	}
	s.cleaner.Clean(ctx, feed.Media, fmt.Sprintf("feed %d deleted", feed.ID))

	s.logger.Info().Int64("feedID", feed.ID).Int("removedMedia", len(feed.Media)).Msg("Post deleted")
	return nil
}

// React toggles the caller's reaction. It reports whether the reaction is now active.
func (s *FeedService) React(ctx context.Context, actor Actor, feedID int64, kind models.ReactionKind) (*models.Feed, bool, error) {
	if kind != models.ReactionLike && kind != models.ReactionDislike {
		return nil, false, apperrors.NewBadRequestError("Reaction must be like or dislike")
	}
	if _, err := s.feedRepo.GetByID(ctx, feedID); err != nil {
		return nil, false, err
	}

	active, err := s.feedRepo.React(ctx, feedID, actor.UserID, kind)
	if err != nil {
		return nil, false, err
	}

	feed, err := s.feedRepo.GetByID(ctx, feedID)
	if err != nil {
		return nil, false, err
	}
	return feed, active, nil
}

// ReactComment toggles the caller's reaction on a comment with the same rules as React
func (s *FeedService) ReactComment(ctx context.Context, actor Actor, commentID int64, kind models.ReactionKind) (*models.FeedComment, bool, error) {
	if kind != models.ReactionLike && kind != models.ReactionDislike {
		return nil, false, apperrors.NewBadRequestError("Reaction must be like or dislike")
	}
	if _, err := s.feedRepo.GetComment(ctx, commentID); err != nil {
		return nil, false, err
	}

	active, err := s.feedRepo.ReactComment(ctx, commentID, actor.UserID, kind)
	if err != nil {
		return nil, false, err
	}

	comment, err := s.feedRepo.GetComment(ctx, commentID)
	if err != nil {
		return nil, false, err
	}
	return comment, active, nil
}

// AddComment comments on a post
func (s *FeedService) AddComment(ctx context.Context, actor Actor, feedID int64, text string) (*models.FeedComment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewBadRequestError("Comment is required")
	}
	if _, err := s.feedRepo.GetByID(ctx, feedID); err != nil {
		return nil, err
	}

	comment := &models.FeedComment{FeedID: feedID, UserID: actor.UserID, Comment: text}
	if err := s.feedRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return s.feedRepo.GetComment(ctx, comment.ID)
}

// ListComments lists the comments of a post, oldest first
func (s *FeedService) ListComments(ctx context.Context, feedID int64) ([]*models.FeedComment, error) {
	if _, err := s.feedRepo.GetByID(ctx, feedID); err != nil {
		return nil, err
	}
	return s.feedRepo.ListComments(ctx, feedID)
}

// DeleteComment removes a comment written by the caller
func (s *FeedService) DeleteComment(ctx context.Context, actor Actor, commentID int64) error {
	comment, err := s.feedRepo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actor.UserID {
		return apperrors.NewForbiddenError("You can only delete your own comments")
	}
	return s.feedRepo.DeleteComment(ctx, commentID)
}

func (s *FeedService) ownedPost(ctx context.Context, actor Actor, feedID int64) (*models.Feed, error) {
	feed, err := s.feedRepo.GetByID(ctx, feedID)
	if err != nil {
		return nil, err
	}
	if feed.CreatedBy != actor.UserID {
		return nil, apperrors.NewForbiddenError("You can only modify your own posts")
	}
	return feed, nil
}

// upload stores every file, removing the ones already stored when one fails
func (s *FeedService) upload(ctx context.Context, files []*multipart.FileHeader) ([]models.Media, error) {
	media := make([]models.Media, 0, len(files))
	if len(files) == 0 {
		return media, nil
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: no media host configured", apperrors.ErrMediaUpload)
	}

	sub := "feeds/" + time.Now().UTC().Format("2006/01")
	for _, fh := range files {
		obj, kind, err := s.uploader.UploadMedia(ctx, fh, sub)
		if err != nil {
			s.cleaner.Clean(ctx, media, "feed upload aborted")
			return nil, mediaError(err)
		}
		media = append(media, models.Media{URL: obj.URL, Kind: models.MediaKind(kind), Key: obj.Key})
	}
	return media, nil
}

func (s *FeedService) announce(feed *models.Feed) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastToCollege(feed.CollegeID, websocket.EventNewPost, dto.NewFeedResponse(feed))
}

func parseFeedType(raw string) (models.FeedType, error) {
	if raw == "" {
		return models.FeedTypeGeneral, nil
	}
	t := models.FeedType(raw)
	if !t.Valid() {
		return "", apperrors.NewBadRequestError("Invalid feed type")
	}
	return t, nil
}
