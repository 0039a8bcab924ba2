package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/models/dto"
	"github.com/campusconnect/backend/internal/app/repositories"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/presence"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserService manages profiles, profile details and role details
type UserService struct {
	userRepo    repositories.IUserRepository
	collegeRepo repositories.ICollegeRepository
	tokenRepo   repositories.ITokenRepository
	feedRepo    repositories.IFeedRepository
	uploader    MediaUploader
	cleaner     MediaCleaner
	presence    PresenceReader
	logger      zerolog.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.IUserRepository,
	collegeRepo repositories.ICollegeRepository,
	tokenRepo repositories.ITokenRepository,
	feedRepo repositories.IFeedRepository,
	uploader MediaUploader,
	cleaner MediaCleaner,
	presenceReader PresenceReader,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		collegeRepo: collegeRepo,
		tokenRepo:   tokenRepo,
		feedRepo:    feedRepo,
		uploader:    uploader,
		cleaner:     cleaner,
		presence:    presenceReader,
		logger:      logger,
	}
}

// GetProfile returns the caller with college, profile and role details populated
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return s.GetUser(ctx, userID)
}

// GetUser returns any user with relations populated and live presence applied
func (s *UserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := populateUser(ctx, s.userRepo, s.collegeRepo, user); err != nil {
		return nil, err
	}
	s.applyPresence(ctx, user)
	return user, nil
}

// applyPresence overlays the presence mirror on the stored flags. A mirror without a last-seen
// time for the user keeps the stored one.
func (s *UserService) applyPresence(ctx context.Context, user *models.User) {
	if s.presence == nil {
		return
	}
	st, err := s.presence.Status(ctx, user.ID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to read presence, using stored flags")
		return
	}
	user.IsOnline = st.Status == presence.StatusOnline
	if st.LastSeen > 0 {
		seen := time.Unix(st.LastSeen, 0).UTC()
		user.LastSeen = &seen
	}
}

// UpdateProfile changes the display name and, when given, the profile picture
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest, image *multipart.FileHeader) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := user.Name
	if n := strings.TrimSpace(req.Name); n != "" {
		name = n
	}

	profileImage := user.ProfileImage
	switch {
	case strings.TrimSpace(req.ImageURL) != "":
		profileImage = strings.TrimSpace(req.ImageURL)
	case image != nil && s.uploader != nil:
		obj, err := s.uploader.UploadImage(ctx, image, "profiles", profileImageWidth)
		if err != nil {
			return nil, mediaError(err)
		}
		profileImage = obj.URL
	}

	if err := s.userRepo.UpdateUserProfile(ctx, userID, name, profileImage); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", userID).Msg("Profile updated")
	return s.GetUser(ctx, userID)
}

// UpdateUserInfo patches bio, address and links, creating the profile details if missing
func (s *UserService) UpdateUserInfo(ctx context.Context, userID int64, req *dto.UpdateUserInfoRequest) (*models.UserInfo, error) {
	info, err := s.ensureUserInfo(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Bio != nil {
		info.Bio = *req.Bio
	}
	if req.Address != nil {
		info.Address = *req.Address
	}
	if req.Links != nil {
		info.Links = *req.Links
	}

	if err := s.userRepo.UpdateUserInfo(ctx, info); err != nil {
		return nil, err
	}
	return info, nil
}

// AddSkill adds a skill once; adding a present skill is a no-op
func (s *UserService) AddSkill(ctx context.Context, userID int64, skill string) (*models.UserInfo, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return nil, apperrors.NewBadRequestError("Skill is required")
	}
	if _, err := s.ensureUserInfo(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.userRepo.AddSkill(ctx, userID, skill); err != nil {
		return nil, err
	}
	return s.userRepo.GetUserInfo(ctx, userID)
}

// RemoveSkill removes a skill; removing an absent skill is a no-op
func (s *UserService) RemoveSkill(ctx context.Context, userID int64, skill string) (*models.UserInfo, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return nil, apperrors.NewBadRequestError("Skill is required")
	}
	if err := s.userRepo.RemoveSkill(ctx, userID, skill); err != nil {
		return nil, err
	}
	return s.userRepo.GetUserInfo(ctx, userID)
}

// AddProject appends a portfolio project with a generated id
func (s *UserService) AddProject(ctx context.Context, userID int64, req *dto.ProjectRequest) (*models.Project, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.NewBadRequestError("Project title is required")
	}
	if _, err := s.ensureUserInfo(ctx, userID); err != nil {
		return nil, err
	}

	project := models.Project{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		URL:         req.URL,
	}
	if err := s.userRepo.AddProject(ctx, userID, project); err != nil {
		return nil, err
	}
	return &project, nil
}

// RemoveProject drops a portfolio project
func (s *UserService) RemoveProject(ctx context.Context, userID int64, projectID string) error {
	if projectID == "" {
		return apperrors.NewBadRequestError("Project id is required")
	}
	if err := s.userRepo.RemoveProject(ctx, userID, projectID); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewResourceNotFoundError("Project not found")
		}
		return err
	}
	return nil
}

func (s *UserService) ensureUserInfo(ctx context.Context, userID int64) (*models.UserInfo, error) {
	info, err := s.userRepo.GetUserInfo(ctx, userID)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}

	info = &models.UserInfo{UserID: userID}
	if err := s.userRepo.CreateUserInfo(ctx, info); err != nil {
		return nil, fmt.Errorf("failed to create user info: %w", err)
	}
	if err := s.userRepo.LinkUserInfo(ctx, userID, info.ID); err != nil {
		return nil, fmt.Errorf("failed to link user info: %w", err)
	}
	return info, nil
}

// GetAlumniDetails returns the career details of an Alumni caller
func (s *UserService) GetAlumniDetails(ctx context.Context, actor Actor) (*models.AlumniDetails, error) {
	user, err := s.alumnus(ctx, actor)
	if err != nil {
		return nil, err
	}
	if user.AlumniDetailsID == nil {
		return nil, apperrors.NewResourceNotFoundError("Alumni details not found")
	}
	return s.userRepo.GetAlumniDetails(ctx, *user.AlumniDetailsID)
}

// UpsertAlumniDetails patches the career details of an Alumni caller, creating them if missing
func (s *UserService) UpsertAlumniDetails(ctx context.Context, actor Actor, req *dto.AlumniDetailsRequest) (*models.AlumniDetails, error) {
	user, err := s.alumnus(ctx, actor)
	if err != nil {
		return nil, err
	}

	details := &models.AlumniDetails{}
	if user.AlumniDetailsID != nil {
		details, err = s.userRepo.GetAlumniDetails(ctx, *user.AlumniDetailsID)
		if err != nil {
			return nil, err
		}
	}

	if req.Company != nil {
		details.Company = *req.Company
	}
	if req.JobTitle != nil {
		details.JobTitle = *req.JobTitle
	}
	if req.GraduationYear != nil {
		details.GraduationYear = *req.GraduationYear
	}
	if req.Department != nil {
		details.Department = *req.Department
	}
	if req.LinkedIn != nil {
		details.LinkedIn = *req.LinkedIn
	}

	if user.AlumniDetailsID != nil {
		if err := s.userRepo.UpdateAlumniDetails(ctx, details); err != nil {
			return nil, err
		}
		return details, nil
	}

	if err := s.userRepo.CreateAlumniDetails(ctx, details); err != nil {
		return nil, err
	}
	if err := s.userRepo.LinkAlumniDetails(ctx, user.ID, details.ID); err != nil {
		return nil, fmt.Errorf("failed to link alumni details: %w", err)
	}
	return details, nil
}

func (s *UserService) alumnus(ctx context.Context, actor Actor) (*models.User, error) {
	if actor.Role != models.RoleAlumni {
		return nil, apperrors.NewForbiddenError("Only alumni have alumni details")
	}
	return s.userRepo.GetUserByID(ctx, actor.UserID)
}

// Deactivate deletes the caller's account after revoking their sessions. The media of their posts
// is removed from the media host once the account is gone.
func (s *UserService) Deactivate(ctx context.Context, userID int64) error {
	media, err := authoredMedia(ctx, s.feedRepo, userID)
	if err != nil {
		return err
	}
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.cleaner.Clean(ctx, media, "account deactivated")
	s.logger.Info().Int64("userID", userID).Int("mediaObjects", len(media)).Msg("Account deactivated")
	return nil
}
