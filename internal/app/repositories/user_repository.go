package repositories

import (
	"context"
	"time"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/repositories/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserFilter selects the users of a college
type UserFilter = user.Filter

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetUsersByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]*models.User, error)
	UpdateUserProfile(ctx context.Context, userID int64, name, profileImage string) error
	LinkUserInfo(ctx context.Context, userID, infoID int64) error
	LinkAlumniDetails(ctx context.Context, userID, detailsID int64) error
	LinkDirectorDetails(ctx context.Context, userID, detailsID int64) error
	SetPresence(ctx context.Context, userID int64, online bool, at time.Time) error
	DeleteUser(ctx context.Context, userID int64) error
	CountUsersByRole(ctx context.Context, collegeID int64) (map[models.RoleType]int, int, error)

	// Profile
	CreateUserInfo(ctx context.Context, info *models.UserInfo) error
	GetUserInfo(ctx context.Context, userID int64) (*models.UserInfo, error)
	UpdateUserInfo(ctx context.Context, info *models.UserInfo) error
	AddSkill(ctx context.Context, userID int64, skill string) error
	RemoveSkill(ctx context.Context, userID int64, skill string) error
	AddProject(ctx context.Context, userID int64, project models.Project) error
	RemoveProject(ctx context.Context, userID int64, projectID string) error

	// Role details
	CreateAlumniDetails(ctx context.Context, d *models.AlumniDetails) error
	GetAlumniDetails(ctx context.Context, id int64) (*models.AlumniDetails, error)
	UpdateAlumniDetails(ctx context.Context, d *models.AlumniDetails) error
	CreateDirectorDetails(ctx context.Context, d *models.DirectorDetails) error
	GetDirectorDetails(ctx context.Context, id int64) (*models.DirectorDetails, error)
	UpdateDirectorDetails(ctx context.Context, d *models.DirectorDetails) error
}

// UserRepository combines all user-related repositories
type UserRepository struct {
	*user.CommonRepository
	*user.InfoRepository
	*user.AlumniRepository
	*user.DirectorRepository
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		CommonRepository:   user.NewCommonRepository(db),
		InfoRepository:     user.NewInfoRepository(db),
		AlumniRepository:   user.NewAlumniRepository(db),
		DirectorRepository: user.NewDirectorRepository(db),
	}
}

var _ IUserRepository = (*UserRepository)(nil)
