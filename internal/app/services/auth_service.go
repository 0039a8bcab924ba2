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
	"github.com/rs/zerolog"
)

// profileImageWidth is the width profile pictures are normalised to
const profileImageWidth = 512

// AuthService handles authentication operations
type AuthService struct {
	userRepo    repositories.IUserRepository
	collegeRepo repositories.ICollegeRepository
	tokenRepo   repositories.ITokenRepository
	jwtService  *auth.JWTService
	uploader    MediaUploader
	logger      zerolog.Logger

	hashPassword func(string) (string, error)
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	collegeRepo repositories.ICollegeRepository,
	tokenRepo repositories.ITokenRepository,
	jwtService *auth.JWTService,
	uploader MediaUploader,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		collegeRepo:  collegeRepo,
		tokenRepo:    tokenRepo,
		jwtService:   jwtService,
		uploader:     uploader,
		logger:       logger,
		hashPassword: auth.HashPassword,
	}
}

// Signup registers a user, creating the college on first use
func (s *AuthService) Signup(ctx context.Context, req *dto.SignupRequest, image *multipart.FileHeader) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.College = strings.TrimSpace(req.College)

	missing := make(map[string]interface{})
	for field, value := range map[string]string{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
		"college":  req.College,
	} {
		if value == "" {
			missing[field] = "is required"
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("Missing required fields", missing)
	}

	role := models.RoleType(req.Role)
	if role == "" {
		role = models.RoleStudent
	}
	if !role.Valid() {
		return nil, apperrors.NewBadRequestError("Invalid role")
	}
	if role == models.RoleDirector {
		return nil, apperrors.NewBadRequestError("Directors can only be created by another director")
	}

	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	college, err := s.collegeRepo.FindOrCreate(ctx, req.College)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve college: %w", err)
	}

	profileImage, err := s.profileImage(ctx, req.ImageURL, image)
	if err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Password:     hash,
		ProfileImage: profileImage,
		Role:         role,
		CollegeID:    college.ID,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	info := &models.UserInfo{UserID: user.ID}
	if err := s.userRepo.CreateUserInfo(ctx, info); err != nil {
		return nil, fmt.Errorf("failed to create user info: %w", err)
	}
	if err := s.userRepo.LinkUserInfo(ctx, user.ID, info.ID); err != nil {
		return nil, fmt.Errorf("failed to link user info: %w", err)
	}
	user.UserInfoID = &info.ID
	user.UserInfo = info

	if role == models.RoleAlumni {
		details := &models.AlumniDetails{
			Company:        req.Company,
			JobTitle:       req.JobTitle,
			GraduationYear: req.GraduationYear,
			Department:     req.Department,
		}
		if err := s.userRepo.CreateAlumniDetails(ctx, details); err != nil {
			return nil, fmt.Errorf("failed to create alumni details: %w", err)
		}
		if err := s.userRepo.LinkAlumniDetails(ctx, user.ID, details.ID); err != nil {
			return nil, fmt.Errorf("failed to link alumni details: %w", err)
		}
		user.AlumniDetailsID = &details.ID
		user.AlumniDetails = details
	}

	user.College = college

	s.logger.Info().
		Int64("userID", user.ID).
		Str("role", string(user.Role)).
		Int64("collegeID", college.ID).
		Msg("User signed up")

	return user, nil
}

// profileImage resolves the picture of a new account: a given URL wins over an upload
func (s *AuthService) profileImage(ctx context.Context, url string, image *multipart.FileHeader) (string, error) {
	if url = strings.TrimSpace(url); url != "" {
		return url, nil
	}
	if image == nil || s.uploader == nil {
		return "", nil
	}
	obj, err := s.uploader.UploadImage(ctx, image, "profiles", profileImageWidth)
	if err != nil {
		return "", mediaError(err)
	}
	return obj.URL, nil
}

// Login authenticates a user and issues a token pair
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// DirectorLogin authenticates a user holding the Director role. An unknown email, a wrong password
// and a non-director account all fail with the same 401 so the response reveals nothing about the account.
func (s *AuthService) DirectorLogin(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			return nil, errDirectorCredentials()
		}
		return nil, err
	}
	if user.Role != models.RoleDirector {
		s.logger.Warn().Int64("userID", user.ID).Msg("Non-director attempted director login")
		return nil, errDirectorCredentials()
	}
	return s.issue(ctx, user)
}

func errDirectorCredentials() error {
	return apperrors.NewCustomError(apperrors.ErrUnauthorized, "Invalid credentials")
}

func (s *AuthService) authenticate(ctx context.Context, req *dto.LoginRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperrors.NewBadRequestError("Email and password are required")
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// issue creates and stores a token pair, then loads the user's relations for the response
func (s *AuthService) issue(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	if err := populateUser(ctx, s.userRepo, s.collegeRepo, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User logged in")

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           pair.AccessToken,
			TokenType:             "Bearer",
			ExpiresIn:             pair.ExpiresIn,
			RefreshToken:          pair.RefreshToken,
			RefreshTokenExpiresIn: pair.RefreshExpiresIn,
		},
		User: dto.NewUserResponse(user),
	}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new pair is issued
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.tokenRepo.GetToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, err
	}

	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return s.issue(ctx, user)
}

// Logout revokes the refresh token if one was presented
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
