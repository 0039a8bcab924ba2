package dto

import (
	"time"

	"github.com/campusconnect/backend/internal/app/models"
)

// UserSummary is the compact user shape embedded in posts, messages and connection lists
type UserSummary struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	ProfileImage string     `json:"profileImage"`
	Role         string     `json:"role"`
	IsOnline     bool       `json:"isOnline"`
	LastSeen     *time.Time `json:"lastSeen,omitempty"`
}

// UserResponse is the full user profile with college and role details populated
type UserResponse struct {
	UserSummary
	CollegeID       int64                   `json:"collegeId"`
	College         *models.College         `json:"college,omitempty"`
	UserInfo        *models.UserInfo        `json:"userInfo,omitempty"`
	AlumniDetails   *models.AlumniDetails   `json:"alumniDetails,omitempty"`
	DirectorDetails *models.DirectorDetails `json:"directorDetails,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
}

// NewUserSummary converts a user into its compact shape
func NewUserSummary(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
		Role:         string(u.Role),
		IsOnline:     u.IsOnline,
		LastSeen:     u.LastSeen,
	}
}

// NewUserResponse converts a populated user into its API shape
func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		UserSummary:     *NewUserSummary(u),
		CollegeID:       u.CollegeID,
		College:         u.College,
		UserInfo:        u.UserInfo,
		AlumniDetails:   u.AlumniDetails,
		DirectorDetails: u.DirectorDetails,
		CreatedAt:       u.CreatedAt,
	}
}

// UpdateProfileRequest is the multipart profile update; a new picture arrives as "image"
type UpdateProfileRequest struct {
	Name     string `form:"name" json:"name"`
	ImageURL string `form:"imageUrl" json:"imageUrl"`
}

// UpdateUserInfoRequest patches the free-form profile; nil fields are left unchanged
type UpdateUserInfoRequest struct {
	Bio     *string        `json:"bio"`
	Address *string        `json:"address"`
	Links   *[]models.Link `json:"links"`
}

// SkillRequest adds or removes a skill
type SkillRequest struct {
	Skill string `json:"skill" binding:"required,max=64"`
}

// ProjectRequest adds a portfolio project
type ProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	URL         string `json:"url" binding:"omitempty,url"`
}

// AlumniDetailsRequest patches alumni career details; nil fields are left unchanged
type AlumniDetailsRequest struct {
	Company        *string `json:"company"`
	JobTitle       *string `json:"jobTitle"`
	GraduationYear *int    `json:"graduationYear" binding:"omitempty,min=1900,max=2100"`
	Department     *string `json:"department"`
	LinkedIn       *string `json:"linkedin"`
}
