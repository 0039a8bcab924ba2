package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/repositories"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/filestorage"
)

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID    int64
	CollegeID int64
	Role      models.RoleType
}

// IsDirector reports whether the caller holds the Director role
func (a Actor) IsDirector() bool {
	return a.Role == models.RoleDirector
}

// Notifier pushes events to connected sockets
type Notifier interface {
	SendToUser(userID int64, event string, data any) bool
	BroadcastToCollege(collegeID int64, event string, data any)
}

// MediaUploader puts uploads on the media host
type MediaUploader interface {
	UploadMedia(ctx context.Context, fh *multipart.FileHeader, sub string) (*filestorage.Object, string, error)
	UploadImage(ctx context.Context, fh *multipart.FileHeader, sub string, width int) (*filestorage.Object, error)
}

// mediaError maps upload failures onto request or media host errors
func mediaError(err error) error {
	if errors.Is(err, filestorage.ErrUnsupportedMedia) || errors.Is(err, filestorage.ErrFileTooLarge) {
		return apperrors.NewBadRequestError(err.Error())
	}
	return fmt.Errorf("%w: %v", apperrors.ErrMediaUpload, err)
}

// populateUser loads the college, profile and role details of u
func populateUser(ctx context.Context, users repositories.IUserRepository, colleges repositories.ICollegeRepository, u *models.User) error {
	college, err := colleges.GetByID(ctx, u.CollegeID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return fmt.Errorf("failed to load college: %w", err)
	}
	u.College = college

	if u.UserInfoID != nil {
		info, err := users.GetUserInfo(ctx, u.ID)
		if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
			return fmt.Errorf("failed to load user info: %w", err)
		}
		u.UserInfo = info
	}

	if u.AlumniDetailsID != nil {
		details, err := users.GetAlumniDetails(ctx, *u.AlumniDetailsID)
		if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
			return fmt.Errorf("failed to load alumni details: %w", err)
		}
		u.AlumniDetails = details
	}

	if u.DirectorDetailsID != nil {
		details, err := users.GetDirectorDetails(ctx, *u.DirectorDetailsID)
		if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
			return fmt.Errorf("failed to load director details: %w", err)
		}
		u.DirectorDetails = details
	}
	return nil
}
