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

// BountyService is the bounty board use case the controller drives
type BountyService interface {
	CreateBounty(ctx context.Context, actor services.Actor, req *dto.CreateBountyRequest) (*models.Bounty, error)
	ListBounties(ctx context.Context, actor services.Actor, query *dto.BountyListQuery) ([]*models.Bounty, error)
	GetBounty(ctx context.Context, actor services.Actor, bountyID int64) (*models.Bounty, error)
	ApplyBounty(ctx context.Context, actor services.Actor, bountyID int64, req *dto.ApplyBountyRequest) (*models.Participation, error)
	DeleteBounty(ctx context.Context, actor services.Actor, bountyID int64) error
	CloseBounty(ctx context.Context, actor services.Actor, bountyID int64) (*models.Bounty, error)
	MyParticipations(ctx context.Context, actor services.Actor, activeOnly bool) ([]*models.Participation, error)
}

// BountyController handles the campus bounty board
type BountyController struct {
	bountyService BountyService
	logger        zerolog.Logger
}

// NewBountyController creates a new bounty controller
func NewBountyController(bountyService BountyService, logger zerolog.Logger) *BountyController {
	return &BountyController{bountyService: bountyService, logger: logger}
}

// CreateBounty posts a bounty on the caller's campus
// @Summary Create a bounty
// @Tags bounties
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.CreateBountyRequest true "Bounty"
// @Success 201 {object} dto.APIResponse{data=dto.BountyResponse}
// @Router /bounties [post]
func (c *BountyController) CreateBounty(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req dto.CreateBountyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	bounty, err := c.bountyService.CreateBounty(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewBountyResponse(bounty), "Bounty created successfully"))
}

// ListBounties lists campus bounties, newest first
// @Summary List bounties
// @Tags bounties
// @Produce json
// @Security CookieAuth
// @Param status query string false "active or closed"
// @Param tag query string false "Tag"
// @Success 200 {object} dto.APIResponse{data=[]dto.BountyResponse}
// @Router /bounties [get]
func (c *BountyController) ListBounties(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var query dto.BountyListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		bindError(ctx, err)
		return
	}

	bounties, err := c.bountyService.ListBounties(ctx.Request.Context(), actor, &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]*dto.BountyResponse, 0, len(bounties))
	for _, b := range bounties {
		out = append(out, dto.NewBountyResponse(b))
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(out, ""))
}

// GetBounty returns a bounty with its teams
// @Summary Get a bounty
// @Tags bounties
// @Produce json
// @Security CookieAuth
// @Param id path int true "Bounty ID"
// @Success 200 {object} dto.APIResponse{data=dto.BountyResponse}
// @Failure 404 {object} dto.ErrorResponse "Bounty not found"
// @Router /bounties/{id} [get]
func (c *BountyController) GetBounty(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Bounty")
	if !ok {
		return
	}

	bounty, err := c.bountyService.GetBounty(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewBountyResponse(bounty), ""))
}

// ApplyBounty applies to a bounty as a team
// @Summary Apply to a bounty
// @Tags bounties
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param id path int true "Bounty ID"
// @Param request body dto.ApplyBountyRequest true "Team"
// @Success 201 {object} dto.APIResponse{data=dto.ParticipationResponse}
// @Failure 400 {object} dto.ErrorResponse "Bounty closed or member from another campus"
// @Failure 409 {object} dto.ErrorResponse "Already participating"
// @Router /bounties/{id}/apply [post]
func (c *BountyController) ApplyBounty(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Bounty")
	if !ok {
		return
	}

	var req dto.ApplyBountyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	participation, err := c.bountyService.ApplyBounty(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		c.logger.Warn().Err(err).Int64("bountyID", id).Int64("userID", actor.UserID).Msg("Bounty application failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewParticipationResponse(participation), "Application submitted"))
}

// DeleteBounty removes a bounty and its teams
// @Summary Delete a bounty
// @Tags bounties
// @Produce json
// @Security CookieAuth
// @Param id path int true "Bounty ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not allowed"
// @Router /bounties/{id} [delete]
func (c *BountyController) DeleteBounty(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Bounty")
	if !ok {
		return
	}

	if err := c.bountyService.DeleteBounty(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Bounty deleted successfully"))
}

// CloseBounty stops a bounty from taking applications
// @Summary Close a bounty
// @Tags bounties
// @Produce json
// @Security CookieAuth
// @Param id path int true "Bounty ID"
// @Success 200 {object} dto.APIResponse{data=dto.BountyResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Router /bounties/{id}/close [post]
func (c *BountyController) CloseBounty(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Bounty")
	if !ok {
		return
	}

	bounty, err := c.bountyService.CloseBounty(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewBountyResponse(bounty), "Bounty closed"))
}

// MyParticipations lists the caller's teams
// @Summary My bounty participations
// @Tags bounties
// @Produce json
// @Security CookieAuth
// @Param active query bool false "Only active bounties"
// @Success 200 {object} dto.APIResponse{data=[]dto.ParticipationResponse}
// @Router /bounties/participations/me [get]
func (c *BountyController) MyParticipations(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var query dto.ParticipationQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		bindError(ctx, err)
		return
	}

	participations, err := c.bountyService.MyParticipations(ctx.Request.Context(), actor, query.Active)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]*dto.ParticipationResponse, 0, len(participations))
	for _, p := range participations {
		out = append(out, dto.NewParticipationResponse(p))
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(out, ""))
}
