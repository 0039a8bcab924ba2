package user

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Columns selected for a bare user row, in scanUser order
var userColumns = []string{
	"u.id", "u.name", "u.email", "u.password", "u.profile_image", "u.role", "u.college_id",
	"u.alumni_details_id", "u.director_details_id", "u.user_info_id",
	"u.is_online", "u.last_seen", "u.created_at", "u.updated_at",
}

// Filter selects users of a college
type Filter struct {
	CollegeID int64
	Roles     []models.RoleType
	ExcludeID int64
	// OrderByName sorts by name instead of newest first
	OrderByName bool
}

// CommonRepository handles operations on the users table
type CommonRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCommonRepository creates a new CommonRepository
func NewCommonRepository(db *pgxpool.Pool) *CommonRepository {
	return &CommonRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanUser(row pgx.Row, u *models.User, extra ...any) error {
	dest := []any{
		&u.ID, &u.Name, &u.Email, &u.Password, &u.ProfileImage, &u.Role, &u.CollegeID,
		&u.AlumniDetailsID, &u.DirectorDetailsID, &u.UserInfoID,
		&u.IsOnline, &u.LastSeen, &u.CreatedAt, &u.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// CreateUser inserts a user and fills in its generated fields
func (r *CommonRepository) CreateUser(ctx context.Context, u *models.User) error {
	sql, args, err := r.sb.Insert("users").
		Columns("name", "email", "password", "profile_image", "role", "college_id").
		Values(u.Name, u.Email, u.Password, u.ProfileImage, u.Role, u.CollegeID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *CommonRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users u").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	u := &models.User{}
	if err := scanUser(r.db.QueryRow(ctx, sql, args...), u); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return u, nil
}

// GetUserByID retrieves a user by ID
func (r *CommonRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.id": id})
}

// GetUserByEmail retrieves a user by email
func (r *CommonRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.email": email})
}

// EmailExists checks if an email is already registered
func (r *CommonRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

// GetUsersByIDs returns the users among ids that exist, in no particular order
func (r *CommonRepository) GetUsersByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	return r.list(ctx, r.sb.Select(userColumns...).From("users u").Where(squirrel.Eq{"u.id": ids}))
}

// ListUsers returns the users of a college matching filter
func (r *CommonRepository) ListUsers(ctx context.Context, filter Filter) ([]*models.User, error) {
	q := r.sb.Select(userColumns...).From("users u").Where(squirrel.Eq{"u.college_id": filter.CollegeID})
	if len(filter.Roles) > 0 {
		q = q.Where(squirrel.Eq{"u.role": filter.Roles})
	}
	if filter.ExcludeID > 0 {
		q = q.Where(squirrel.NotEq{"u.id": filter.ExcludeID})
	}
	if filter.OrderByName {
		q = q.OrderBy("u.name ASC", "u.id ASC")
	} else {
		q = q.OrderBy("u.created_at DESC", "u.id DESC")
	}
	return r.list(ctx, q)
}

func (r *CommonRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*models.User, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u := &models.User{}
		if err := scanUser(rows, u); err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// UpdateUserProfile changes the display name and profile image
func (r *CommonRepository) UpdateUserProfile(ctx context.Context, userID int64, name, profileImage string) error {
	return r.update(ctx, userID, map[string]interface{}{"name": name, "profile_image": profileImage})
}

// LinkUserInfo points a user at its UserInfo row
func (r *CommonRepository) LinkUserInfo(ctx context.Context, userID, infoID int64) error {
	return r.update(ctx, userID, map[string]interface{}{"user_info_id": infoID})
}

// LinkAlumniDetails points a user at its AlumniDetails row
func (r *CommonRepository) LinkAlumniDetails(ctx context.Context, userID, detailsID int64) error {
	return r.update(ctx, userID, map[string]interface{}{"alumni_details_id": detailsID})
}

// LinkDirectorDetails points a user at its DirectorDetails row
func (r *CommonRepository) LinkDirectorDetails(ctx context.Context, userID, detailsID int64) error {
	return r.update(ctx, userID, map[string]interface{}{"director_details_id": detailsID})
}

func (r *CommonRepository) update(ctx context.Context, userID int64, set map[string]interface{}) error {
	set["updated_at"] = time.Now()
	sql, args, err := r.sb.Update("users").SetMap(set).Where(squirrel.Eq{"id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// SetPresence records the online flag and, when going offline, the last seen time
func (r *CommonRepository) SetPresence(ctx context.Context, userID int64, online bool, at time.Time) error {
	q := r.sb.Update("users").Set("is_online", online).Where(squirrel.Eq{"id": userID})
	if !online {
		q = q.Set("last_seen", at)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build presence query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error updating presence: %w", err)
	}
	return nil
}

// ResetPresence marks every user offline; run at startup since no socket survives a restart
func (r *CommonRepository) ResetPresence(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE users SET is_online = FALSE, last_seen = NOW() WHERE is_online`)
	if err != nil {
		return 0, fmt.Errorf("error resetting presence: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteUser removes a user; dependent rows cascade
func (r *CommonRepository) DeleteUser(ctx context.Context, userID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// CountUsersByRole counts the users of a college per role, plus how many are online
func (r *CommonRepository) CountUsersByRole(ctx context.Context, collegeID int64) (map[models.RoleType]int, int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT role, COUNT(*), COUNT(*) FILTER (WHERE is_online)
		FROM users
		WHERE college_id = $1
		GROUP BY role`, collegeID)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.RoleType]int)
	online := 0
	for rows.Next() {
		var role models.RoleType
		var total, on int
		if err := rows.Scan(&role, &total, &on); err != nil {
			return nil, 0, fmt.Errorf("error scanning user counts: %w", err)
		}
		counts[role] = total
		online += on
	}
	return counts, online, rows.Err()
}
