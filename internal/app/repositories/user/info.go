package user

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5/pgxpool"
)

var infoColumns = []string{"id", "user_id", "bio", "skills", "links", "projects", "address"}

// InfoRepository handles operations on the user_infos table
type InfoRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewInfoRepository creates a new InfoRepository
func NewInfoRepository(db *pgxpool.Pool) *InfoRepository {
	return &InfoRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateUserInfo inserts the profile row of a user
func (r *InfoRepository) CreateUserInfo(ctx context.Context, info *models.UserInfo) error {
	links, projects, err := encodeInfoJSON(info)
	if err != nil {
		return err
	}
	skills := info.Skills
	if skills == nil {
		skills = []string{}
	}

	sql, args, err := r.sb.Insert("user_infos").
		Columns("user_id", "bio", "skills", "links", "projects", "address").
		Values(info.UserID, info.Bio, skills, links, projects, info.Address).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user info query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&info.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "user_infos_user_id_key") {
			return apperrors.NewConflictError("user info already exists")
		}
		return fmt.Errorf("error creating user info: %w", err)
	}
	return nil
}

// GetUserInfo returns the profile row of a user
func (r *InfoRepository) GetUserInfo(ctx context.Context, userID int64) (*models.UserInfo, error) {
	sql, args, err := r.sb.Select(infoColumns...).From("user_infos").Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user info query: %w", err)
	}

	info := &models.UserInfo{}
	var links, projects []byte
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&info.ID, &info.UserID, &info.Bio, &info.Skills, &links, &projects, &info.Address,
	)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("user info not found")
		}
		return nil, fmt.Errorf("error retrieving user info: %w", err)
	}
	if err := decodeInfoJSON(info, links, projects); err != nil {
		return nil, err
	}
	return info, nil
}

// UpdateUserInfo writes bio, address and links back
func (r *InfoRepository) UpdateUserInfo(ctx context.Context, info *models.UserInfo) error {
	links, _, err := encodeInfoJSON(info)
	if err != nil {
		return err
	}
	sql, args, err := r.sb.Update("user_infos").
		Set("bio", info.Bio).
		Set("address", info.Address).
		Set("links", links).
		Where(squirrel.Eq{"user_id": info.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user info query: %w", err)
	}
	return r.exec(ctx, sql, args)
}

// AddSkill appends skill unless the user already has it
func (r *InfoRepository) AddSkill(ctx context.Context, userID int64, skill string) error {
	return r.exec(ctx, `
		UPDATE user_infos SET skills = array_append(skills, $2::text)
		WHERE user_id = $1 AND NOT ($2::text = ANY(skills))`, []interface{}{userID, skill}, true)
}

// RemoveSkill drops skill from the user's skills
func (r *InfoRepository) RemoveSkill(ctx context.Context, userID int64, skill string) error {
	return r.exec(ctx, `UPDATE user_infos SET skills = array_remove(skills, $2::text) WHERE user_id = $1`,
		[]interface{}{userID, skill})
}

// AddProject appends a project to the user's portfolio
func (r *InfoRepository) AddProject(ctx context.Context, userID int64, project models.Project) error {
	raw, err := json.Marshal([]models.Project{project})
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	return r.exec(ctx, `UPDATE user_infos SET projects = projects || $2::jsonb WHERE user_id = $1`,
		[]interface{}{userID, raw})
}

// RemoveProject drops the project with projectID; it reports ErrResourceNotFound when absent
func (r *InfoRepository) RemoveProject(ctx context.Context, userID int64, projectID string) error {
	return r.exec(ctx, `
		UPDATE user_infos
		SET projects = COALESCE(
			(SELECT jsonb_agg(p) FROM jsonb_array_elements(projects) p WHERE p->>'id' <> $2),
			'[]'::jsonb)
		WHERE user_id = $1 AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(projects) p WHERE p->>'id' = $2)`,
		[]interface{}{userID, projectID})
}

// exec runs an update on one user_infos row. With allowNoop a zero row count is not an error.
func (r *InfoRepository) exec(ctx context.Context, sql string, args []interface{}, allowNoop ...bool) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating user info: %w", err)
	}
	if tag.RowsAffected() == 0 && !(len(allowNoop) > 0 && allowNoop[0]) {
		return apperrors.NewResourceNotFoundError("user info not found")
	}
	return nil
}

func encodeInfoJSON(info *models.UserInfo) ([]byte, []byte, error) {
	links := info.Links
	if links == nil {
		links = []models.Link{}
	}
	projects := info.Projects
	if projects == nil {
		projects = []models.Project{}
	}
	l, err := json.Marshal(links)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode links: %w", err)
	}
	p, err := json.Marshal(projects)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode projects: %w", err)
	}
	return l, p, nil
}

func decodeInfoJSON(info *models.UserInfo, links, projects []byte) error {
	if err := json.Unmarshal(links, &info.Links); err != nil {
		return fmt.Errorf("failed to decode links: %w", err)
	}
	if err := json.Unmarshal(projects, &info.Projects); err != nil {
		return fmt.Errorf("failed to decode projects: %w", err)
	}
	if info.Skills == nil {
		info.Skills = []string{}
	}
	return nil
}
