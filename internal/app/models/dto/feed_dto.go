package dto

import (
	"time"

	"github.com/campusconnect/backend/internal/app/models"
)

// FeedRequest is the multipart create/edit form; files arrive as "images" (create) or "media" (edit)
type FeedRequest struct {
	Title   string `form:"title" binding:"required,max=255"`
	Content string `form:"content" binding:"required"`
	Type    string `form:"type" binding:"omitempty,oneof=general event announcement achievement opportunity"`
}

// FeedListQuery filters a college feed
type FeedListQuery struct {
	Type   string     `form:"type" binding:"omitempty,oneof=general event announcement achievement opportunity"`
	Limit  int        `form:"limit" binding:"omitempty,min=1,max=100"`
	Before *time.Time `form:"before" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ReactionRequest likes or dislikes a post or comment; repeating the same reaction removes it
type ReactionRequest struct {
	Kind string `json:"kind" binding:"required,oneof=like dislike"`
}

// CommentRequest adds a comment to a post
type CommentRequest struct {
	Comment string `json:"comment" binding:"required,max=2000"`
}

// FeedResponse is a post with its author and college populated
type FeedResponse struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Content      string          `json:"content"`
	Type         string          `json:"type"`
	Media        []models.Media  `json:"media"`
	Author       *UserSummary    `json:"author,omitempty"`
	College      *models.College `json:"college,omitempty"`
	Likes        int             `json:"likes"`
	Dislikes     int             `json:"dislikes"`
	CommentCount int             `json:"commentCount"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// NewFeedResponse converts a post into its API shape
func NewFeedResponse(f *models.Feed) *FeedResponse {
	if f == nil {
		return nil
	}
	media := f.Media
	if media == nil {
		media = []models.Media{}
	}
	return &FeedResponse{
		ID:           f.ID,
		Title:        f.Title,
		Content:      f.Content,
		Type:         string(f.Type),
		Media:        media,
		Author:       NewUserSummary(f.Author),
		College:      f.College,
		Likes:        f.Likes,
		Dislikes:     f.Dislikes,
		CommentCount: f.CommentCount,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// CommentResponse is a comment with its author populated
type CommentResponse struct {
	ID        int64        `json:"id"`
	FeedID    int64        `json:"feedId"`
	Comment   string       `json:"comment"`
	Author    *UserSummary `json:"author,omitempty"`
	Likes     int          `json:"likes"`
	Dislikes  int          `json:"dislikes"`
	CreatedAt time.Time    `json:"createdAt"`
}

// NewCommentResponse converts a comment into its API shape
func NewCommentResponse(c *models.FeedComment) *CommentResponse {
	return &CommentResponse{
		ID:        c.ID,
		FeedID:    c.FeedID,
		Comment:   c.Comment,
		Author:    NewUserSummary(c.Author),
		Likes:     c.Likes,
		Dislikes:  c.Dislikes,
		CreatedAt: c.CreatedAt,
	}
}
