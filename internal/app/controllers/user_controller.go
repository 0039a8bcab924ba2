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

// UserService is the profile use case the controller drives
type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest, image *multipart.FileHeader) (*models.User, error)
	UpdateUserInfo(ctx context.Context, userID int64, req *dto.UpdateUserInfoRequest) (*models.UserInfo, error)
	AddSkill(ctx context.Context, userID int64, skill string) (*models.UserInfo, error)
	RemoveSkill(ctx context.Context, userID int64, skill string) (*models.UserInfo, error)
	AddProject(ctx context.Context, userID int64, req *dto.ProjectRequest) (*models.Project, error)
	RemoveProject(ctx context.Context, userID int64, projectID string) error
	GetAlumniDetails(ctx context.Context, actor services.Actor) (*models.AlumniDetails, error)
	UpsertAlumniDetails(ctx context.Context, actor services.Actor, req *dto.AlumniDetailsRequest) (*models.AlumniDetails, error)
	Deactivate(ctx context.Context, userID int64) error
}

// UserController handles user-related operations
type UserController struct {
	userService UserService
	logger      zerolog.Logger
}

// NewUserController creates a new user controller
func NewUserController(userService UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// GetProfile returns the caller's profile
// @Summary Get my profile
// @Tags users
// @Produce json
// @Security CookieAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Profile retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/me [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	user, err := c.userService.GetProfile(ctx.Request.Context(), actor.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewUserResponse(user), ""))
}

// GetUserByID retrieves user information by ID
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Security CookieAuth
// @Param id path int true "User ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "User retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid user ID format"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (c *UserController) GetUserByID(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "User")
	if !ok {
		return
	}

	user, err := c.userService.GetUser(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewUserResponse(user), ""))
}

// UpdateProfile changes the caller's name and profile picture
// @Summary Update my profile
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security CookieAuth
// @Param name formData string false "Full name"
// @Param imageUrl formData string false "Profile picture URL"
// @Param image formData file false "Profile picture"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Profile updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Router /users/me [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBind(&req); err != nil {
		bindError(ctx, err)
		return
	}
	image, err := ctx.FormFile("image")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		bindError(ctx, err)
		return
	}

	user, err := c.userService.UpdateProfile(ctx.Request.Context(), actor.UserID, &req, image)
	if err != nil {
		c.logger.Warn().Err(err).Int64("userID", actor.UserID).Msg("Profile update failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewUserResponse(user), "Profile updated successfully"))
}

// UpdateUserInfo patches bio, address and links
// @Summary Update my user info
// @Tags users
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.UpdateUserInfoRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.UserInfo} "User info updated"
// @Router /users/me/info [put]
func (c *UserController) UpdateUserInfo(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req dto.UpdateUserInfoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	info, err := c.userService.UpdateUserInfo(ctx.Request.Context(), actor.UserID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(info, "User info updated successfully"))
}

// AddSkill adds a skill to the caller's profile
// @Summary Add a skill
// @Tags users
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.SkillRequest true "Skill"
// @Success 200 {object} dto.APIResponse{data=models.UserInfo} "Skill added"
// @Router /users/me/skills [post]
func (c *UserController) AddSkill(ctx *gin.Context) {
	c.changeSkill(ctx, c.userService.AddSkill)
}

// RemoveSkill removes a skill from the caller's profile
// @Summary Remove a skill
// @Tags users
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.SkillRequest true "Skill"
// @Success 200 {object} dto.APIResponse{data=models.UserInfo} "Skill removed"
// @Router /users/me/skills [delete]
func (c *UserController) RemoveSkill(ctx *gin.Context) {
	c.changeSkill(ctx, c.userService.RemoveSkill)
}

func (c *UserController) changeSkill(ctx *gin.Context, change func(context.Context, int64, string) (*models.UserInfo, error)) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req dto.SkillRequest
	if skill := ctx.Query("skill"); skill != "" {
		req.Skill = skill
	} else if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	info, err := change(ctx.Request.Context(), actor.UserID, req.Skill)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(info, ""))
}

// AddProject adds a portfolio project
// @Summary Add a project
// @Tags users
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.ProjectRequest true "Project"
// @Success 201 {object} dto.APIResponse{data=models.Project} "Project added"
// @Router /users/me/projects [post]
func (c *UserController) AddProject(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req dto.ProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	project, err := c.userService.AddProject(ctx.Request.Context(), actor.UserID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(project, "Project added successfully"))
}

// RemoveProject deletes a portfolio project
// @Summary Remove a project
// @Tags users
// @Produce json
// @Security CookieAuth
// @Param projectId path string true "Project ID"
// @Success 200 {object} dto.APIResponse "Project removed"
// @Failure 404 {object} dto.ErrorResponse "Project not found"
// @Router /users/me/projects/{projectId} [delete]
func (c *UserController) RemoveProject(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	if err := c.userService.RemoveProject(ctx.Request.Context(), actor.UserID, ctx.Param("projectId")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Project removed successfully"))
}

// GetAlumniDetails returns the caller's alumni details
// @Summary Get my alumni details
// @Tags alumni
// @Produce json
// @Security CookieAuth
// @Success 200 {object} dto.APIResponse{data=models.AlumniDetails}
// @Failure 403 {object} dto.ErrorResponse "Not an alumnus"
// @Router /alumni/me [get]
func (c *UserController) GetAlumniDetails(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	details, err := c.userService.GetAlumniDetails(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(details, ""))
}

// UpsertAlumniDetails creates or updates the caller's alumni details
// @Summary Update my alumni details
// @Tags alumni
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.AlumniDetailsRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.AlumniDetails}
// @Failure 403 {object} dto.ErrorResponse "Not an alumnus"
// @Router /alumni/me [put]
func (c *UserController) UpsertAlumniDetails(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req dto.AlumniDetailsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	details, err := c.userService.UpsertAlumniDetails(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(details, "Alumni details saved"))
}

// Deactivate deletes the caller's account
// @Summary Delete my account
// @Tags users
// @Produce json
// @Security CookieAuth
// @Success 200 {object} dto.APIResponse "Account deleted"
// @Router /users/me [delete]
func (c *UserController) Deactivate(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	if err := c.userService.Deactivate(ctx.Request.Context(), actor.UserID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", actor.UserID).Msg("Account deleted")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Account deleted successfully"))
}
