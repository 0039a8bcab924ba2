package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID                int64      `json:"id" db:"id"`
	Name              string     `json:"name" db:"name"`
	Email             string     `json:"email" db:"email"`
	Password          string     `json:"-" db:"password"`
	ProfileImage      string     `json:"profileImage" db:"profile_image"`
	Role              RoleType   `json:"role" db:"role"`
	CollegeID         int64      `json:"collegeId" db:"college_id"`
	AlumniDetailsID   *int64     `json:"alumniDetailsId,omitempty" db:"alumni_details_id"`
	DirectorDetailsID *int64     `json:"directorDetailsId,omitempty" db:"director_details_id"`
	UserInfoID        *int64     `json:"userInfoId,omitempty" db:"user_info_id"`
	IsOnline          bool       `json:"isOnline" db:"is_online"`
	LastSeen          *time.Time `json:"lastSeen,omitempty" db:"last_seen"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`

	// Relations, populated on demand
	College         *College         `json:"college,omitempty"`
	UserInfo        *UserInfo        `json:"userInfo,omitempty"`
	AlumniDetails   *AlumniDetails   `json:"alumniDetails,omitempty"`
	DirectorDetails *DirectorDetails `json:"directorDetails,omitempty"`
}

// College groups users, posts and bounties into a campus
type College struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Location    string    `json:"location" db:"location"`
	Departments []string  `json:"departments" db:"departments"`
	Website     string    `json:"website" db:"website"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Link is a labelled external link on a profile
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Project is a portfolio entry on a profile
type Project struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}

// UserInfo holds the free-form profile of a user; there is at most one per user
type UserInfo struct {
	ID       int64     `json:"id" db:"id"`
	UserID   int64     `json:"userId" db:"user_id"`
	Bio      string    `json:"bio" db:"bio"`
	Skills   []string  `json:"skills" db:"skills"`
	Links    []Link    `json:"links" db:"links"`
	Projects []Project `json:"projects" db:"projects"`
	Address  string    `json:"address" db:"address"`
}

// AlumniDetails holds career information for Alumni users
type AlumniDetails struct {
	ID             int64     `json:"id" db:"id"`
	Company        string    `json:"company" db:"company"`
	JobTitle       string    `json:"jobTitle" db:"job_title"`
	GraduationYear int       `json:"graduationYear" db:"graduation_year"`
	Department     string    `json:"department" db:"department"`
	LinkedIn       string    `json:"linkedin" db:"linkedin"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// DirectorPermissions gates administrative operations of a director
type DirectorPermissions struct {
	CanRemoveUsers        bool `json:"canRemoveUsers"`
	CanSendCampusMessages bool `json:"canSendCampusMessages"`
	CanViewAnalytics      bool `json:"canViewAnalytics"`
	CanCreateDirectors    bool `json:"canCreateDirectors"`
}

// DefaultDirectorPermissions is granted to directors created by other directors and by the seed
func DefaultDirectorPermissions() DirectorPermissions {
	return DirectorPermissions{
		CanRemoveUsers:        true,
		CanSendCampusMessages: true,
		CanViewAnalytics:      true,
		CanCreateDirectors:    true,
	}
}

// DirectorDetails holds the administrative profile of a Director
type DirectorDetails struct {
	ID                 int64               `json:"id" db:"id"`
	Title              string              `json:"title" db:"title"`
	Department         string              `json:"department" db:"department"`
	DirectorRole       string              `json:"directorRole" db:"director_role"`
	Expertise          []string            `json:"expertise" db:"expertise"`
	OfficeLocation     string              `json:"officeLocation" db:"office_location"`
	ContactEmail       string              `json:"contactEmail" db:"contact_email"`
	Permissions        DirectorPermissions `json:"permissions" db:"permissions"`
	ManagedDepartments []string            `json:"managedDepartments" db:"managed_departments"`
	ReportingTo        string              `json:"reportingTo" db:"reporting_to"`
	ResearchInterests  []string            `json:"researchInterests" db:"research_interests"`
	Publications       []string            `json:"publications" db:"publications"`
	TeachingSubjects   []string            `json:"teachingSubjects" db:"teaching_subjects"`
	OfficeHours        string              `json:"officeHours" db:"office_hours"`
	Achievements       []string            `json:"achievements" db:"achievements"`
	Guidance           string              `json:"guidance" db:"guidance"`
	UpdatedAt          time.Time           `json:"updatedAt" db:"updated_at"`
}

// RefreshToken is a persisted, revocable refresh token
type RefreshToken struct {
	Token     string    `db:"token"`
	UserID    int64     `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
	CreatedAt time.Time `db:"created_at"`
}
