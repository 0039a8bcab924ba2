package controllers

import (
	"context"
	"net/http"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/models/dto"
	"github.com/campusconnect/backend/internal/app/services"
	"github.com/campusconnect/backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// MessageService is the messaging use case the controller drives
type MessageService interface {
	Send(ctx context.Context, actor services.Actor, receiverID int64, content string) (*models.Message, error)
	GetHistory(ctx context.Context, actor services.Actor, otherID int64, query *dto.MessageHistoryQuery) ([]*models.Message, error)
	GetConnections(ctx context.Context, actor services.Actor, variant string) ([]*dto.ConnectionResponse, error)
}

// MessageController handles direct messages and the connection list
type MessageController struct {
	messageService MessageService
	logger         zerolog.Logger
}

// NewMessageController creates a new message controller
func NewMessageController(messageService MessageService, logger zerolog.Logger) *MessageController {
	return &MessageController{messageService: messageService, logger: logger}
}

// GetHistory returns the conversation with another user, oldest first
// @Summary Conversation history
// @Tags messages
// @Produce json
// @Security CookieAuth
// @Param userId path int true "Other user ID"
// @Param before query string false "RFC3339 cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]dto.MessageResponse}
// @Router /messages/{userId} [get]
func (c *MessageController) GetHistory(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	otherID, ok := pathID(ctx, "userId", "User")
	if !ok {
		return
	}

	var query dto.MessageHistoryQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		bindError(ctx, err)
		return
	}

	messages, err := c.messageService.GetHistory(ctx.Request.Context(), actor, otherID, &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]*dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, dto.NewMessageResponse(m))
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(out, ""))
}

// SendMessage stores a message and pushes it to the receiver when connected
// @Summary Send a message
// @Tags messages
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param userId path int true "Receiver ID"
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.ErrorResponse "Receiver not found"
// @Router /messages/{userId} [post]
func (c *MessageController) SendMessage(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	receiverID, ok := pathID(ctx, "userId", "User")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	msg, err := c.messageService.Send(ctx.Request.Context(), actor, receiverID, req.Content)
	if err != nil {
		c.logger.Warn().Err(err).Int64("senderID", actor.UserID).Int64("receiverID", receiverID).Msg("Send message failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewMessageResponse(msg), ""))
}

// GetConnections returns the ranked connection list for a variant
// @Summary Ranked connections
// @Tags messages
// @Produce json
// @Security CookieAuth
// @Param variant query string false "general, alumni, junior or director"
// @Success 200 {object} dto.APIResponse{data=[]dto.ConnectionResponse}
// @Router /connections [get]
func (c *MessageController) GetConnections(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var query dto.ConnectionsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		bindError(ctx, err)
		return
	}

	connections, err := c.messageService.GetConnections(ctx.Request.Context(), actor, query.Variant)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(connections, ""))
}
