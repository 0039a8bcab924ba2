package controllers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/models/dto"
	"github.com/campusconnect/backend/internal/app/services"
	"github.com/campusconnect/backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DirectorService is the campus administration use case the controller drives
type DirectorService interface {
	CreateDirector(ctx context.Context, actor services.Actor, req *dto.CreateDirectorRequest, image *multipart.FileHeader) (*models.User, error)
	GetDirector(ctx context.Context, actor services.Actor) (*dto.DirectorResponse, error)
	UpdateDirector(ctx context.Context, actor services.Actor, req *dto.UpdateDirectorRequest) (*models.DirectorDetails, error)
	GetDirectorConnections(ctx context.Context, actor services.Actor) ([]*dto.ConnectionResponse, error)
	RemoveUser(ctx context.Context, actor services.Actor, req *dto.RemoveUserRequest) (*dto.RemoveUserResponse, error)
	GetCampusAnalytics(ctx context.Context, actor services.Actor) (*dto.CampusAnalytics, error)
	GetCampusUsers(ctx context.Context, actor services.Actor, role string) ([]*models.User, error)
	SendCampusMessage(ctx context.Context, actor services.Actor, req *dto.CampusMessageRequest) (*dto.CampusMessageResponse, error)
}

// DirectorController handles director-only campus administration
type DirectorController struct {
	directorService DirectorService
	logger          zerolog.Logger
}

// NewDirectorController creates a new director controller
func NewDirectorController(directorService DirectorService, logger zerolog.Logger) *DirectorController {
	return &DirectorController{directorService: directorService, logger: logger}
}

// CreateDirector adds another director to the caller's campus
// @Summary Create a director
// @Tags directors
// @Accept multipart/form-data
// @Produce json
// @Security CookieAuth
// @Param name formData string true "Full name"
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Param directorRole formData string false "Director role"
// @Param image formData file false "Profile picture"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse "User already exists"
// @Failure 403 {object} dto.ErrorResponse "Missing permission"
// @Router /directors [post]
func (c *DirectorController) CreateDirector(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req dto.CreateDirectorRequest
	if err := ctx.ShouldBind(&req); err != nil {
		bindError(ctx, err)
		return
	}
	image, err := ctx.FormFile("image")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		bindError(ctx, err)
		return
	}

	user, err := c.directorService.CreateDirector(ctx.Request.Context(), actor, &req, image)
	if err != nil {
		c.logger.Warn().Err(err).Int64("directorID", actor.UserID).Msg("Create director failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewUserResponse(user), "Director created successfully"))
}

// GetDirector returns the caller with director details
// @Summary Get my director profile
// @Tags directors
// @Produce json
// @Security CookieAuth
// @Success 200 {object} dto.APIResponse{data=dto.DirectorResponse}
// @Router /directors/me [get]
func (c *DirectorController) GetDirector(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	resp, err := c.directorService.GetDirector(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, resp.Message))
}

// UpdateDirector changes the caller's director details
// @Summary Update my director profile
// @Tags directors
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.UpdateDirectorRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.DirectorDetails}
// @Router /directors/me [put]
func (c *DirectorController) UpdateDirector(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req dto.UpdateDirectorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	details, err := c.directorService.UpdateDirector(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(details, "Director updated successfully"))
}

// GetConnections lists campus staff ranked by recent conversation
// @Summary Director connections
// @Tags directors
// @Produce json
// @Security CookieAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ConnectionResponse}
// @Router /directors/connections [get]
func (c *DirectorController) GetConnections(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	connections, err := c.directorService.GetDirectorConnections(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(connections, ""))
}

// RemoveUser deletes a non-director user of the caller's campus
// @Summary Remove a campus user
// @Tags directors
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.RemoveUserRequest true "User to remove"
// @Success 200 {object} dto.APIResponse{data=dto.RemoveUserResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing user ID"
// @Failure 403 {object} dto.ErrorResponse "Not allowed"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /directors/remove-user [post]
func (c *DirectorController) RemoveUser(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req dto.RemoveUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	resp, err := c.directorService.RemoveUser(ctx.Request.Context(), actor, &req)
	if err != nil {
		c.logger.Warn().Err(err).Int64("directorID", actor.UserID).Int64("targetID", req.UserID).Msg("Remove user failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, resp.Message))
}

// GetAnalytics returns campus user counts
// @Summary Campus analytics
// @Tags directors
// @Produce json
// @Security CookieAuth
// @Success 200 {object} dto.APIResponse{data=dto.CampusAnalytics}
// @Router /directors/analytics [get]
func (c *DirectorController) GetAnalytics(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	analytics, err := c.directorService.GetCampusAnalytics(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(analytics, ""))
}

// GetCampusUsers lists campus users, newest first
// @Summary Campus users
// @Tags directors
// @Produce json
// @Security CookieAuth
// @Param role query string false "Student, Alumni, Director or Faculty"
// @Success 200 {object} dto.APIResponse{data=[]dto.UserResponse}
// @Router /directors/users [get]
func (c *DirectorController) GetCampusUsers(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var query dto.CampusUsersQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		bindError(ctx, err)
		return
	}

	users, err := c.directorService.GetCampusUsers(ctx.Request.Context(), actor, query.Role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(userResponses(users), ""))
}

// SendCampusMessage sends one message to many campus users
// @Summary Campus message
// @Tags directors
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.CampusMessageRequest true "Recipients and message"
// @Success 200 {object} dto.APIResponse{data=dto.CampusMessageResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing recipients or message"
// @Failure 403 {object} dto.ErrorResponse "Missing permission"
// @Router /directors/campus-message [post]
func (c *DirectorController) SendCampusMessage(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req dto.CampusMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	resp, err := c.directorService.SendCampusMessage(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, resp.Message))
}
