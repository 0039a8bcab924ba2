package dto

import "github.com/campusconnect/backend/internal/app/models"

// CreateDirectorRequest is the multipart form used by a director to add another director
type CreateDirectorRequest struct {
	Name         string `form:"name" binding:"required"`
	Email        string `form:"email" binding:"required,email"`
	Password     string `form:"password" binding:"required,min=6"`
	DirectorRole string `form:"directorRole"`
	ImageURL     string `form:"imageUrl"`
}

// UpdateDirectorRequest lists the director detail fields that may be changed
type UpdateDirectorRequest struct {
	Title              *string   `json:"title"`
	Department         *string   `json:"department"`
	DirectorRole       *string   `json:"directorRole"`
	Expertise          *[]string `json:"expertise"`
	OfficeLocation     *string   `json:"officeLocation"`
	ContactEmail       *string   `json:"contactEmail" binding:"omitempty,email"`
	ManagedDepartments *[]string `json:"managedDepartments"`
	ReportingTo        *string   `json:"reportingTo"`
	ResearchInterests  *[]string `json:"researchInterests"`
	Publications       *[]string `json:"publications"`
	TeachingSubjects   *[]string `json:"teachingSubjects"`
	OfficeHours        *string   `json:"officeHours" binding:"omitempty,max=255"`
	Achievements       *[]string `json:"achievements"`
	Guidance           *string   `json:"guidance"`
}

// DirectorResponse is a director with details; Message is set when no details exist yet
type DirectorResponse struct {
	User    *UserResponse           `json:"user"`
	Details *models.DirectorDetails `json:"details,omitempty"`
	Message string                  `json:"message,omitempty"`
}

// RemoveUserRequest removes a user from the director's campus
type RemoveUserRequest struct {
	UserID int64  `json:"userId"`
	Reason string `json:"reason"`
}

// RemoveUserResponse confirms a removal
type RemoveUserResponse struct {
	Message       string `json:"message"`
	RemovedUserID int64  `json:"removedUserId"`
	Reason        string `json:"reason,omitempty"`
}

// CampusUsersQuery filters the campus user list
type CampusUsersQuery struct {
	Role string `form:"role" binding:"omitempty,oneof=Student Alumni Director Faculty"`
}

// CampusAnalytics counts the users of a campus
type CampusAnalytics struct {
	CollegeID   int64            `json:"collegeId"`
	TotalUsers  int              `json:"totalUsers"`
	OnlineUsers int              `json:"onlineUsers"`
	ByRole      map[string]int   `json:"byRole"`
	Totals      CampusFeedTotals `json:"totals"`
}

// CampusFeedTotals counts campus content
type CampusFeedTotals struct {
	Posts    int `json:"posts"`
	Bounties int `json:"bounties"`
}

// CampusMessageRequest broadcasts one message to many campus users
type CampusMessageRequest struct {
	Recipients  []int64 `json:"recipients"`
	Message     string  `json:"message"`
	MessageType string  `json:"messageType"`
}

// CampusMessageResponse reports how many messages were stored
type CampusMessageResponse struct {
	Message string `json:"message"`
	SentTo  int    `json:"sentTo"`
}
