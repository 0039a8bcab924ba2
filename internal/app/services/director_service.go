package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/models/dto"
	"github.com/campusconnect/backend/internal/app/repositories"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/auth"
	"github.com/campusconnect/backend/internal/pkg/websocket"
	"github.com/rs/zerolog"
)

// DirectorService implements campus administration for directors
type DirectorService struct {
	userRepo    repositories.IUserRepository
	collegeRepo repositories.ICollegeRepository
	tokenRepo   repositories.ITokenRepository
	feedRepo    repositories.IFeedRepository
	bountyRepo  repositories.IBountyRepository
	messageRepo repositories.IMessageRepository
	messages    *MessageService
	uploader    MediaUploader
	cleaner     MediaCleaner
	notifier    Notifier
	presence    PresenceReader
	logger      zerolog.Logger

	hashPassword func(string) (string, error)
}

// NewDirectorService creates a new director service
func NewDirectorService(
	userRepo repositories.IUserRepository,
	collegeRepo repositories.ICollegeRepository,
	tokenRepo repositories.ITokenRepository,
	feedRepo repositories.IFeedRepository,
	bountyRepo repositories.IBountyRepository,
	messageRepo repositories.IMessageRepository,
	messages *MessageService,
	uploader MediaUploader,
	cleaner MediaCleaner,
	notifier Notifier,
	presenceReader PresenceReader,
	logger zerolog.Logger,
) *DirectorService {
	return &DirectorService{
		userRepo:     userRepo,
		collegeRepo:  collegeRepo,
		tokenRepo:    tokenRepo,
		feedRepo:     feedRepo,
		bountyRepo:   bountyRepo,
		messageRepo:  messageRepo,
		messages:     messages,
		uploader:     uploader,
		cleaner:      cleaner,
		notifier:     notifier,
		presence:     presenceReader,
		logger:       logger,
		hashPassword: auth.HashPassword,
	}
}

// director loads the caller and their details, requiring the Director role
func (s *DirectorService) director(ctx context.Context, actor Actor) (*models.User, *models.DirectorDetails, error) {
	if !actor.IsDirector() {
		return nil, nil, apperrors.NewForbiddenError("Access denied. Directors only.")
	}
	user, err := s.userRepo.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user.Role != models.RoleDirector {
		return nil, nil, apperrors.NewForbiddenError("Access denied. Directors only.")
	}
	if user.DirectorDetailsID == nil {
		return user, nil, nil
	}
	details, err := s.userRepo.GetDirectorDetails(ctx, *user.DirectorDetailsID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, nil, err
	}
	return user, details, nil
}

// permitted loads the calling director and checks one permission
func (s *DirectorService) permitted(ctx context.Context, actor Actor, allowed func(models.DirectorPermissions) bool, message string) (*models.User, error) {
	user, details, err := s.director(ctx, actor)
	if err != nil {
		return nil, err
	}
	if details == nil || !allowed(details.Permissions) {
		return nil, apperrors.NewForbiddenError(message)
	}
	return user, nil
}

// CreateDirector adds a director to the caller's campus
func (s *DirectorService) CreateDirector(ctx context.Context, actor Actor, req *dto.CreateDirectorRequest, image *multipart.FileHeader) (*models.User, error) {
	creator, err := s.permitted(ctx, actor, func(p models.DirectorPermissions) bool { return p.CanCreateDirectors },
		"You do not have permission to create directors")
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" || req.Password == "" {
		return nil, apperrors.NewBadRequestError("Name, email and password are required")
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	profileImage := strings.TrimSpace(req.ImageURL)
	if profileImage == "" && image != nil && s.uploader != nil {
		obj, err := s.uploader.UploadImage(ctx, image, "profiles", profileImageWidth)
		if err != nil {
			return nil, mediaError(err)
		}
		profileImage = obj.URL
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		Password:     hash,
		ProfileImage: profileImage,
		Role:         models.RoleDirector,
		CollegeID:    creator.CollegeID,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	details := &models.DirectorDetails{
		Title:        "Director",
		DirectorRole: req.DirectorRole,
		ContactEmail: email,
		Permissions:  models.DefaultDirectorPermissions(),
	}
	if err := s.userRepo.CreateDirectorDetails(ctx, details); err != nil {
		return nil, fmt.Errorf("failed to create director details: %w", err)
	}
	if err := s.userRepo.LinkDirectorDetails(ctx, user.ID, details.ID); err != nil {
		return nil, fmt.Errorf("failed to link director details: %w", err)
	}
	user.DirectorDetailsID = &details.ID
	user.DirectorDetails = details

	info := &models.UserInfo{UserID: user.ID}
	if err := s.userRepo.CreateUserInfo(ctx, info); err != nil {
		return nil, fmt.Errorf("failed to create user info: %w", err)
	}
	if err := s.userRepo.LinkUserInfo(ctx, user.ID, info.ID); err != nil {
		return nil, fmt.Errorf("failed to link user info: %w", err)
	}
	user.UserInfoID = &info.ID
	user.UserInfo = info

	s.logger.Info().
		Int64("directorID", user.ID).
		Int64("createdBy", creator.ID).
		Int64("collegeID", user.CollegeID).
		Msg("Director created")

	return user, nil
}

// GetDirector returns the calling director with details
func (s *DirectorService) GetDirector(ctx context.Context, actor Actor) (*dto.DirectorResponse, error) {
	user, details, err := s.director(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := populateUser(ctx, s.userRepo, s.collegeRepo, user); err != nil {
		return nil, err
	}

	resp := &dto.DirectorResponse{User: dto.NewUserResponse(user), Details: details}
	if details == nil {
		resp.Message = "Director details not found. Update your profile to add them."
	}
	return resp, nil
}

// UpdateDirector changes the allowed detail fields, creating the details if missing.
// Permissions are never changed here.
func (s *DirectorService) UpdateDirector(ctx context.Context, actor Actor, req *dto.UpdateDirectorRequest) (*models.DirectorDetails, error) {
	user, details, err := s.director(ctx, actor)
	if err != nil {
		return nil, err
	}

	create := details == nil
	if create {
		details = &models.DirectorDetails{
			Title:       "Director",
			Permissions: models.DefaultDirectorPermissions(),
		}
	}

	if req.Title != nil {
		details.Title = *req.Title
	}
	if req.Department != nil {
		details.Department = *req.Department
	}
	if req.DirectorRole != nil {
		details.DirectorRole = *req.DirectorRole
	}
	if req.Expertise != nil {
		details.Expertise = *req.Expertise
	}
	if req.OfficeLocation != nil {
		details.OfficeLocation = *req.OfficeLocation
	}
	if req.ContactEmail != nil {
		details.ContactEmail = *req.ContactEmail
	}
	if req.ManagedDepartments != nil {
		details.ManagedDepartments = *req.ManagedDepartments
	}
	if req.ReportingTo != nil {
		details.ReportingTo = *req.ReportingTo
	}
	if req.ResearchInterests != nil {
		details.ResearchInterests = *req.ResearchInterests
	}
	if req.Publications != nil {
		details.Publications = *req.Publications
	}
	if req.TeachingSubjects != nil {
		details.TeachingSubjects = *req.TeachingSubjects
	}
	if req.OfficeHours != nil {
		details.OfficeHours = *req.OfficeHours
	}
	if req.Achievements != nil {
		details.Achievements = *req.Achievements
	}
	if req.Guidance != nil {
		details.Guidance = *req.Guidance
	}

	if !create {
		if err := s.userRepo.UpdateDirectorDetails(ctx, details); err != nil {
			return nil, err
		}
		return details, nil
	}

	if err := s.userRepo.CreateDirectorDetails(ctx, details); err != nil {
		return nil, err
	}
	if err := s.userRepo.LinkDirectorDetails(ctx, user.ID, details.ID); err != nil {
		return nil, fmt.Errorf("failed to link director details: %w", err)
	}
	return details, nil
}

// GetDirectorConnections ranks the directors and faculty of the caller's campus
func (s *DirectorService) GetDirectorConnections(ctx context.Context, actor Actor) ([]*dto.ConnectionResponse, error) {
	if !actor.IsDirector() {
		return nil, apperrors.NewForbiddenError("Access denied. Directors only.")
	}
	return s.messages.GetConnections(ctx, actor, VariantDirector)
}

// RemoveUser deletes a non-director user of the caller's campus
func (s *DirectorService) RemoveUser(ctx context.Context, actor Actor, req *dto.RemoveUserRequest) (*dto.RemoveUserResponse, error) {
	if req.UserID <= 0 {
		return nil, apperrors.NewBadRequestError("User id is required")
	}

	director, err := s.permitted(ctx, actor, func(p models.DirectorPermissions) bool { return p.CanRemoveUsers },
		"You do not have permission to remove users")
	if err != nil {
		return nil, err
	}

	target, err := s.userRepo.GetUserByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if target.CollegeID != director.CollegeID {
		return nil, apperrors.NewForbiddenError("You can only remove users from your own campus")
	}
	if target.Role == models.RoleDirector {
		return nil, apperrors.NewForbiddenError("Directors cannot be removed")
	}

	media, err := authoredMedia(ctx, s.feedRepo, target.ID)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, target.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke tokens: %w", err)
	}
	if err := s.userRepo.DeleteUser(ctx, target.ID); err != nil {
		return nil, err
	}
	s.cleaner.Clean(ctx, media, "user removed")

	s.logger.Info().
		Int64("directorID", director.ID).
		Int64("removedUserID", target.ID).
		Str("reason", req.Reason).
		Int("mediaObjects", len(media)).
		Msg("User removed by director")

	return &dto.RemoveUserResponse{
		Message:       "User removed successfully",
		RemovedUserID: target.ID,
		Reason:        req.Reason,
	}, nil
}

// GetCampusAnalytics counts the users and content of the caller's campus
func (s *DirectorService) GetCampusAnalytics(ctx context.Context, actor Actor) (*dto.CampusAnalytics, error) {
	director, err := s.permitted(ctx, actor, func(p models.DirectorPermissions) bool { return p.CanViewAnalytics },
		"You do not have permission to view analytics")
	if err != nil {
		return nil, err
	}

	byRole, online, err := s.userRepo.CountUsersByRole(ctx, director.CollegeID)
	if err != nil {
		return nil, err
	}
	posts, err := s.feedRepo.CountByCollege(ctx, director.CollegeID)
	if err != nil {
		return nil, err
	}
	bounties, err := s.bountyRepo.CountByCollege(ctx, director.CollegeID)
	if err != nil {
		return nil, err
	}

	if live, err := s.onlineInCollege(ctx, director.CollegeID); err != nil {
		s.logger.Warn().Err(err).Int64("collegeID", director.CollegeID).Msg("Failed to read presence, using stored online count")
	} else if live >= 0 {
		online = live
	}

	analytics := &dto.CampusAnalytics{
		CollegeID:   director.CollegeID,
		OnlineUsers: online,
		ByRole:      make(map[string]int, 4),
		Totals:      dto.CampusFeedTotals{Posts: posts, Bounties: bounties},
	}
	for _, role := range []models.RoleType{models.RoleStudent, models.RoleAlumni, models.RoleDirector, models.RoleFaculty} {
		analytics.ByRole[string(role)] = byRole[role]
		analytics.TotalUsers += byRole[role]
	}
	return analytics, nil
}

// onlineInCollege counts the college's users in the presence mirror; -1 without a mirror
func (s *DirectorService) onlineInCollege(ctx context.Context, collegeID int64) (int, error) {
	if s.presence == nil {
		return -1, nil
	}
	ids, err := s.presence.OnlineUsers(ctx)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	users, err := s.userRepo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, u := range users {
		if u.CollegeID == collegeID {
			n++
		}
	}
	return n, nil
}

// GetCampusUsers lists the users of the caller's campus, newest first
func (s *DirectorService) GetCampusUsers(ctx context.Context, actor Actor, role string) ([]*models.User, error) {
	director, _, err := s.director(ctx, actor)
	if err != nil {
		return nil, err
	}

	filter := repositories.UserFilter{CollegeID: director.CollegeID}
	if role != "" {
		r := models.RoleType(role)
		if !r.Valid() {
			return nil, apperrors.NewBadRequestError("Invalid role")
		}
		filter.Roles = []models.RoleType{r}
	}
	return s.userRepo.ListUsers(ctx, filter)
}

// SendCampusMessage stores one message per recipient and pushes it to connected recipients
func (s *DirectorService) SendCampusMessage(ctx context.Context, actor Actor, req *dto.CampusMessageRequest) (*dto.CampusMessageResponse, error) {
	director, err := s.permitted(ctx, actor, func(p models.DirectorPermissions) bool { return p.CanSendCampusMessages },
		"You do not have permission to send campus messages")
	if err != nil {
		return nil, err
	}

	if len(req.Recipients) == 0 || strings.TrimSpace(req.Message) == "" {
		return nil, apperrors.NewBadRequestError("Recipients and message are required")
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = models.MessageTypeText
	}

	seen := make(map[int64]bool, len(req.Recipients))
	ids := make([]int64, 0, len(req.Recipients))
	for _, id := range req.Recipients {
		if id <= 0 || id == director.ID || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	// unknown ids and users of other campuses are dropped
	var recipients []*models.User
	if len(ids) > 0 {
		recipients, err = s.userRepo.GetUsersByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	msgs := make([]*models.Message, 0, len(recipients))
	for _, u := range recipients {
		if u.CollegeID != director.CollegeID {
			continue
		}
		msgs = append(msgs, &models.Message{
			SenderID:        director.ID,
			ReceiverID:      u.ID,
			Content:         req.Message,
			MessageType:     messageType,
			IsCampusMessage: true,
		})
	}
	if len(msgs) == 0 {
		return nil, apperrors.NewBadRequestError("No valid recipients")
	}

	if err := s.messageRepo.CreateMany(ctx, msgs); err != nil {
		return nil, err
	}

	delivered := 0
	if s.notifier != nil {
		for _, m := range msgs {
			if s.notifier.SendToUser(m.ReceiverID, websocket.EventReceiveMessage, m) {
				delivered++
			}
		}
	}

	s.logger.Info().
		Int64("directorID", director.ID).
		Int("requested", len(ids)).
		Int("sentTo", len(msgs)).
		Int("delivered", delivered).
		Msg("Campus message sent")

	return &dto.CampusMessageResponse{
		Message: "Campus message sent successfully",
		SentTo:  len(msgs),
	}, nil
}
