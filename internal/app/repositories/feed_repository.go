package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultFeedLimit = 50

// IFeedRepository defines feed database operations
type IFeedRepository interface {
	Create(ctx context.Context, feed *models.Feed) error
	GetByID(ctx context.Context, id int64) (*models.Feed, error)
	List(ctx context.Context, filter models.FeedFilter) ([]*models.Feed, error)
	ListByAuthor(ctx context.Context, userID int64) ([]*models.Feed, error)
	Update(ctx context.Context, feed *models.Feed) error
	Delete(ctx context.Context, id int64) error
	CountByCollege(ctx context.Context, collegeID int64) (int, error)

	React(ctx context.Context, feedID, userID int64, kind models.ReactionKind) (bool, error)

	CreateComment(ctx context.Context, comment *models.FeedComment) error
	GetComment(ctx context.Context, id int64) (*models.FeedComment, error)
	ListComments(ctx context.Context, feedID int64) ([]*models.FeedComment, error)
	DeleteComment(ctx context.Context, id int64) error
	ReactComment(ctx context.Context, commentID, userID int64, kind models.ReactionKind) (bool, error)
}

// FeedRepository handles database operations for feed posts, reactions and comments
type FeedRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFeedRepository creates a new FeedRepository
func NewFeedRepository(db *pgxpool.Pool) *FeedRepository {
	return &FeedRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func encodeMedia(media []models.Media) ([]byte, error) {
	if media == nil {
		media = []models.Media{}
	}
	raw, err := json.Marshal(media)
	if err != nil {
		return nil, fmt.Errorf("failed to encode media: %w", err)
	}
	return raw, nil
}

// Create inserts a post
func (r *FeedRepository) Create(ctx context.Context, feed *models.Feed) error {
	media, err := encodeMedia(feed.Media)
	if err != nil {
		return err
	}

	sql, args, err := r.sb.Insert("feeds").
		Columns("title", "content", "created_by", "college_id", "type", "media").
		Values(feed.Title, feed.Content, feed.CreatedBy, feed.CollegeID, feed.Type, media).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create feed query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&feed.ID, &feed.CreatedAt, &feed.UpdatedAt); err != nil {
		return fmt.Errorf("error creating feed: %w", err)
	}
	return nil
}

// selectFeeds joins author, college and aggregate counts onto feed rows
func (r *FeedRepository) selectFeeds() squirrel.SelectBuilder {
	return r.sb.Select(
		"f.id", "f.title", "f.content", "f.created_by", "f.college_id", "f.type", "f.media",
		"f.created_at", "f.updated_at",
		"u.id", "u.name", "u.profile_image", "u.role",
		"c.id", "c.name",
		"COUNT(DISTINCT fr.user_id) FILTER (WHERE fr.kind = 'like')",
		"COUNT(DISTINCT fr.user_id) FILTER (WHERE fr.kind = 'dislike')",
		"COUNT(DISTINCT fc.id)",
	).
		From("feeds f").
		Join("users u ON u.id = f.created_by").
		Join("colleges c ON c.id = f.college_id").
		LeftJoin("feed_reactions fr ON fr.feed_id = f.id").
		LeftJoin("feed_comments fc ON fc.feed_id = f.id").
		GroupBy("f.id", "u.id", "c.id")
}

func scanFeed(row pgx.Row) (*models.Feed, error) {
	f := &models.Feed{Author: &models.User{}, College: &models.College{}}
	var media []byte
	err := row.Scan(
		&f.ID, &f.Title, &f.Content, &f.CreatedBy, &f.CollegeID, &f.Type, &media,
		&f.CreatedAt, &f.UpdatedAt,
		&f.Author.ID, &f.Author.Name, &f.Author.ProfileImage, &f.Author.Role,
		&f.College.ID, &f.College.Name,
		&f.Likes, &f.Dislikes, &f.CommentCount,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(media, &f.Media); err != nil {
		return nil, fmt.Errorf("failed to decode media: %w", err)
	}
	f.Author.CollegeID = f.CollegeID
	return f, nil
}

// GetByID retrieves a post with author, college and counts
func (r *FeedRepository) GetByID(ctx context.Context, id int64) (*models.Feed, error) {
	sql, args, err := r.selectFeeds().Where(squirrel.Eq{"f.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get feed query: %w", err)
	}

	f, err := scanFeed(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrFeedNotFound
		}
		return nil, fmt.Errorf("error retrieving feed: %w", err)
	}
	return f, nil
}

// List returns the posts of a college, newest first
func (r *FeedRepository) List(ctx context.Context, filter models.FeedFilter) ([]*models.Feed, error) {
	q := r.selectFeeds().Where(squirrel.Eq{"f.college_id": filter.CollegeID})
	if filter.Type != "" {
		q = q.Where(squirrel.Eq{"f.type": filter.Type})
	}
	if filter.Before != nil {
		q = q.Where(squirrel.Lt{"f.created_at": *filter.Before})
	}
	limit := filter.Limit
	if limit == 0 {
		limit = defaultFeedLimit
	}

	sql, args, err := q.OrderBy("f.created_at DESC", "f.id DESC").Limit(limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list feeds query: %w", err)
	}

	return r.queryFeeds(ctx, sql, args)
}

// ListByAuthor returns every post a user created, across colleges
func (r *FeedRepository) ListByAuthor(ctx context.Context, userID int64) ([]*models.Feed, error) {
	sql, args, err := r.selectFeeds().
		Where(squirrel.Eq{"f.created_by": userID}).
		OrderBy("f.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build author feeds query: %w", err)
	}
	return r.queryFeeds(ctx, sql, args)
}

func (r *FeedRepository) queryFeeds(ctx context.Context, sql string, args []interface{}) ([]*models.Feed, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing feeds: %w", err)
	}
	defer rows.Close()

	feeds := make([]*models.Feed, 0)
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning feed row: %w", err)
		}
		feeds = append(feeds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}
	return feeds, nil
}

// Update overwrites the editable fields and media of a post
func (r *FeedRepository) Update(ctx context.Context, feed *models.Feed) error {
	media, err := encodeMedia(feed.Media)
	if err != nil {
		return err
	}
	feed.UpdatedAt = time.Now()

	sql, args, err := r.sb.Update("feeds").
		SetMap(map[string]interface{}{
			"title":      feed.Title,
			"content":    feed.Content,
			"type":       feed.Type,
			"media":      media,
			"updated_at": feed.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": feed.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update feed query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating feed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrFeedNotFound
	}
	return nil
}

// Delete removes a post with its reactions and comments
func (r *FeedRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM feeds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting feed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrFeedNotFound
	}
	return nil
}

// CountByCollege counts the posts of a college
func (r *FeedRepository) CountByCollege(ctx context.Context, collegeID int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM feeds WHERE college_id = $1`, collegeID).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting feeds: %w", err)
	}
	return n, nil
}

// React toggles a reaction. Reacting with the current kind removes it, a different kind replaces it.
// The returned flag reports whether a reaction is set afterwards.
func (r *FeedRepository) React(ctx context.Context, feedID, userID int64, kind models.ReactionKind) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM feed_reactions WHERE feed_id = $1 AND user_id = $2 AND kind = $3`, feedID, userID, kind)
	if err != nil {
		return false, fmt.Errorf("error removing reaction: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO feed_reactions (feed_id, user_id, kind) VALUES ($1, $2, $3)
		ON CONFLICT (feed_id, user_id) DO UPDATE SET kind = EXCLUDED.kind, created_at = NOW()`,
		feedID, userID, kind)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return false, apperrors.ErrFeedNotFound
		}
		return false, fmt.Errorf("error saving reaction: %w", err)
	}
	return true, nil
}

// CreateComment inserts a comment
func (r *FeedRepository) CreateComment(ctx context.Context, comment *models.FeedComment) error {
	sql, args, err := r.sb.Insert("feed_comments").
		Columns("feed_id", "user_id", "comment").
		Values(comment.FeedID, comment.UserID, comment.Comment).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create comment query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&comment.ID, &comment.CreatedAt); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrFeedNotFound
		}
		return fmt.Errorf("error creating comment: %w", err)
	}
	return nil
}

func (r *FeedRepository) selectComments() squirrel.SelectBuilder {
	return r.sb.Select(
		"fc.id", "fc.feed_id", "fc.user_id", "fc.comment", "fc.created_at",
		"u.name", "u.profile_image", "u.role",
		"COUNT(cr.user_id) FILTER (WHERE cr.kind = 'like')",
		"COUNT(cr.user_id) FILTER (WHERE cr.kind = 'dislike')",
	).
		From("feed_comments fc").
		Join("users u ON u.id = fc.user_id").
		LeftJoin("comment_reactions cr ON cr.comment_id = fc.id").
		GroupBy("fc.id", "u.id")
}

func scanComment(row pgx.Row) (*models.FeedComment, error) {
	c := &models.FeedComment{Author: &models.User{}}
	err := row.Scan(&c.ID, &c.FeedID, &c.UserID, &c.Comment, &c.CreatedAt,
		&c.Author.Name, &c.Author.ProfileImage, &c.Author.Role,
		&c.Likes, &c.Dislikes)
	if err != nil {
		return nil, err
	}
	c.Author.ID = c.UserID
	return c, nil
}

// GetComment retrieves a comment by ID
func (r *FeedRepository) GetComment(ctx context.Context, id int64) (*models.FeedComment, error) {
	sql, args, err := r.selectComments().Where(squirrel.Eq{"fc.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get comment query: %w", err)
	}
	c, err := scanComment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("error retrieving comment: %w", err)
	}
	return c, nil
}

// ListComments returns the comments of a post, oldest first
func (r *FeedRepository) ListComments(ctx context.Context, feedID int64) ([]*models.FeedComment, error) {
	sql, args, err := r.selectComments().
		Where(squirrel.Eq{"fc.feed_id": feedID}).
		OrderBy("fc.created_at ASC", "fc.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list comments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.FeedComment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// DeleteComment removes a comment
func (r *FeedRepository) DeleteComment(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM feed_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCommentNotFound
	}
	return nil
}

// ReactComment toggles a reaction on a comment with the same rules as React
func (r *FeedRepository) ReactComment(ctx context.Context, commentID, userID int64, kind models.ReactionKind) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM comment_reactions WHERE comment_id = $1 AND user_id = $2 AND kind = $3`, commentID, userID, kind)
	if err != nil {
		return false, fmt.Errorf("error removing comment reaction: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO comment_reactions (comment_id, user_id, kind) VALUES ($1, $2, $3)
		ON CONFLICT (comment_id, user_id) DO UPDATE SET kind = EXCLUDED.kind, created_at = NOW()`,
		commentID, userID, kind)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return false, apperrors.ErrCommentNotFound
		}
		return false, fmt.Errorf("error saving comment reaction: %w", err)
	}
	return true, nil
}
