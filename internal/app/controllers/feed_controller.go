package controllers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/models/dto"
	"github.com/campusconnect/backend/internal/app/services"
	"github.com/campusconnect/backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// FeedService is the feed use case the controller drives
type FeedService interface {
	CreateFeed(ctx context.Context, actor services.Actor, req *dto.FeedRequest, files []*multipart.FileHeader) (*models.Feed, error)
	GetPosts(ctx context.Context, actor services.Actor, query *dto.FeedListQuery) ([]*models.Feed, error)
	GetPost(ctx context.Context, feedID int64) (*models.Feed, error)
	EditPost(ctx context.Context, actor services.Actor, feedID int64, req *dto.FeedRequest, files []*multipart.FileHeader) (*models.Feed, error)
	DeletePost(ctx context.Context, actor services.Actor, feedID int64) error
	React(ctx context.Context, actor services.Actor, feedID int64, kind models.ReactionKind) (*models.Feed, bool, error)
	AddComment(ctx context.Context, actor services.Actor, feedID int64, text string) (*models.FeedComment, error)
	ListComments(ctx context.Context, feedID int64) ([]*models.FeedComment, error)
	DeleteComment(ctx context.Context, actor services.Actor, commentID int64) error
	ReactComment(ctx context.Context, actor services.Actor, commentID int64, kind models.ReactionKind) (*models.FeedComment, bool, error)
}

// FeedController handles the campus feed
type FeedController struct {
	feedService FeedService
	logger      zerolog.Logger
}

// NewFeedController creates a new feed controller
func NewFeedController(feedService FeedService, logger zerolog.Logger) *FeedController {
	return &FeedController{feedService: feedService, logger: logger}
}

// formFiles returns the files uploaded under field, or none for a form without files
func formFiles(ctx *gin.Context, field string) []*multipart.FileHeader {
	form, err := ctx.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[field]
}

// CreateFeed publishes a post with optional media
// @Summary Create a post
// @Tags feeds
// @Accept multipart/form-data
// @Produce json
// @Security CookieAuth
// @Param title formData string true "Title"
// @Param content formData string true "Content"
// @Param type formData string false "general, event, announcement, achievement or opportunity"
// @Param images formData file false "Images or videos (repeatable)"
// @Success 201 {object} dto.APIResponse{data=dto.FeedResponse} "Post created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 502 {object} dto.ErrorResponse "Media upload failed"
// @Router /feeds [post]
func (c *FeedController) CreateFeed(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req dto.FeedRequest
	if err := ctx.ShouldBind(&req); err != nil {
		bindError(ctx, err)
		return
	}

	feed, err := c.feedService.CreateFeed(ctx.Request.Context(), actor, &req, formFiles(ctx, "images"))
	if err != nil {
		c.logger.Warn().Err(err).Int64("userID", actor.UserID).Msg("Create post failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewFeedResponse(feed), "Post created successfully"))
}

// GetPosts lists the caller's campus feed
// @Summary List posts
// @Tags feeds
// @Produce json
// @Security CookieAuth
// @Param type query string false "Post type"
// @Param limit query int false "Page size"
// @Param before query string false "RFC3339 cursor"
// @Success 200 {object} dto.APIResponse{data=[]dto.FeedResponse}
// @Router /feeds [get]
func (c *FeedController) GetPosts(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var query dto.FeedListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		bindError(ctx, err)
		return
	}

	feeds, err := c.feedService.GetPosts(ctx.Request.Context(), actor, &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]*dto.FeedResponse, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, dto.NewFeedResponse(f))
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(out, ""))
}

// GetPost returns one post
// @Summary Get a post
// @Tags feeds
// @Produce json
// @Security CookieAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.FeedResponse}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /feeds/{id} [get]
func (c *FeedController) GetPost(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Post")
	if !ok {
		return
	}

	feed, err := c.feedService.GetPost(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewFeedResponse(feed), ""))
}

// EditPost replaces a post's text and media
// @Summary Edit a post
// @Tags feeds
// @Accept multipart/form-data
// @Produce json
// @Security CookieAuth
// @Param id path int true "Post ID"
// @Param title formData string true "Title"
// @Param content formData string true "Content"
// @Param type formData string false "Post type"
// @Param media formData file false "Replacement media (repeatable)"
// @Success 200 {object} dto.APIResponse{data=dto.FeedResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /feeds/{id} [patch]
func (c *FeedController) EditPost(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Post")
	if !ok {
		return
	}

	var req dto.FeedRequest
	if err := ctx.ShouldBind(&req); err != nil {
		bindError(ctx, err)
		return
	}

	feed, err := c.feedService.EditPost(ctx.Request.Context(), actor, id, &req, formFiles(ctx, "media"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewFeedResponse(feed), "Post updated successfully"))
}

// DeletePost removes a post and its media
// @Summary Delete a post
// @Tags feeds
// @Produce json
// @Security CookieAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse "Post deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /feeds/{id} [delete]
func (c *FeedController) DeletePost(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Post")
	if !ok {
		return
	}

	if err := c.feedService.DeletePost(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Post deleted successfully"))
}

// React toggles a like or dislike
// @Summary React to a post
// @Tags feeds
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param id path int true "Post ID"
// @Param request body dto.ReactionRequest true "Reaction"
// @Success 200 {object} dto.APIResponse{data=dto.FeedResponse}
// @Router /feeds/{id}/reactions [post]
func (c *FeedController) React(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Post")
	if !ok {
		return
	}

	var req dto.ReactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	feed, active, err := c.feedService.React(ctx.Request.Context(), actor, id, models.ReactionKind(req.Kind))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	msg := "Reaction removed"
	if active {
		msg = "Reaction added"
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewFeedResponse(feed), msg))
}

// AddComment comments on a post
// @Summary Comment on a post
// @Tags feeds
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param id path int true "Post ID"
// @Param request body dto.CommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=dto.CommentResponse}
// @Router /feeds/{id}/comments [post]
func (c *FeedController) AddComment(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Post")
	if !ok {
		return
	}

	var req dto.CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	comment, err := c.feedService.AddComment(ctx.Request.Context(), actor, id, req.Comment)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewCommentResponse(comment), ""))
}

// ListComments lists a post's comments
// @Summary List comments
// @Tags feeds
// @Produce json
// @Security CookieAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CommentResponse}
// @Router /feeds/{id}/comments [get]
func (c *FeedController) ListComments(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Post")
	if !ok {
		return
	}

	comments, err := c.feedService.ListComments(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]*dto.CommentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, dto.NewCommentResponse(cm))
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(out, ""))
}

// DeleteComment removes the caller's comment
// @Summary Delete a comment
// @Tags feeds
// @Produce json
// @Security CookieAuth
// @Param commentId path int true "Comment ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Router /feeds/comments/{commentId} [delete]
func (c *FeedController) DeleteComment(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "commentId", "Comment")
	if !ok {
		return
	}

	if err := c.feedService.DeleteComment(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Comment deleted"))
}

// ReactComment toggles a like or dislike on a comment
// @Summary React to a comment
// @Tags feeds
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param commentId path int true "Comment ID"
// @Param request body dto.ReactionRequest true "Reaction"
// @Success 200 {object} dto.APIResponse{data=dto.CommentResponse}
// @Failure 404 {object} dto.ErrorResponse "Comment not found"
// @Router /feeds/comments/{commentId}/reactions [post]
func (c *FeedController) ReactComment(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "commentId", "Comment")
	if !ok {
		return
	}

	var req dto.ReactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	comment, active, err := c.feedService.ReactComment(ctx.Request.Context(), actor, id, models.ReactionKind(req.Kind))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	msg := "Reaction removed"
	if active {
		msg = "Reaction added"
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewCommentResponse(comment), msg))
}
