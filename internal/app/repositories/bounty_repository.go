package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/db"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BountyFilter narrows a bounty board listing
type BountyFilter struct {
	CollegeID int64
	Status    models.BountyStatus
	Tag       string
}

// IBountyRepository defines bounty board database operations
type IBountyRepository interface {
	Create(ctx context.Context, b *models.Bounty) error
	GetByID(ctx context.Context, id int64) (*models.Bounty, error)
	List(ctx context.Context, filter BountyFilter) ([]*models.Bounty, error)
	UpdateStatus(ctx context.Context, id int64, status models.BountyStatus) error
	Delete(ctx context.Context, id int64) error
	CountByCollege(ctx context.Context, collegeID int64) (int, error)

	CreateParticipation(ctx context.Context, p *models.Participation) error
	ListParticipations(ctx context.Context, bountyID int64) ([]*models.Participation, error)
	ListUserParticipations(ctx context.Context, userID int64, activeOnly bool) ([]*models.Participation, error)
}

// BountyRepository handles database operations for bounties and team participations
type BountyRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewBountyRepository creates a new BountyRepository
func NewBountyRepository(db *pgxpool.Pool) *BountyRepository {
	return &BountyRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var bountyColumns = []string{
	"b.id", "b.title", "b.description", "b.reward", "b.tags", "b.college_id", "b.created_by",
	"b.status", "b.deadline", "b.created_at",
	"u.name", "u.profile_image", "u.role",
}

func scanBounty(row pgx.Row) (*models.Bounty, error) {
	b := &models.Bounty{Creator: &models.User{}}
	err := row.Scan(&b.ID, &b.Title, &b.Description, &b.Reward, &b.Tags, &b.CollegeID, &b.CreatedBy,
		&b.Status, &b.Deadline, &b.CreatedAt,
		&b.Creator.Name, &b.Creator.ProfileImage, &b.Creator.Role)
	if err != nil {
		return nil, err
	}
	b.Creator.ID = b.CreatedBy
	b.Creator.CollegeID = b.CollegeID
	return b, nil
}

// Create inserts a bounty
func (r *BountyRepository) Create(ctx context.Context, b *models.Bounty) error {
	if b.Status == "" {
		b.Status = models.BountyActive
	}
	sql, args, err := r.sb.Insert("bounties").
		Columns("title", "description", "reward", "tags", "college_id", "created_by", "status", "deadline").
		Values(b.Title, b.Description, b.Reward, nonNilStrings(b.Tags), b.CollegeID, b.CreatedBy, b.Status, b.Deadline).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create bounty query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		return fmt.Errorf("error creating bounty: %w", err)
	}
	return nil
}

// GetByID retrieves a bounty with its creator
func (r *BountyRepository) GetByID(ctx context.Context, id int64) (*models.Bounty, error) {
	sql, args, err := r.sb.Select(bountyColumns...).
		From("bounties b").
		Join("users u ON u.id = b.created_by").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get bounty query: %w", err)
	}

	b, err := scanBounty(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrBountyNotFound
		}
		return nil, fmt.Errorf("error retrieving bounty: %w", err)
	}
	return b, nil
}

// List returns the bounties of a college, newest first
func (r *BountyRepository) List(ctx context.Context, filter BountyFilter) ([]*models.Bounty, error) {
	q := r.sb.Select(bountyColumns...).
		From("bounties b").
		Join("users u ON u.id = b.created_by").
		Where(squirrel.Eq{"b.college_id": filter.CollegeID})
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.Tag != "" {
		q = q.Where("? = ANY(b.tags)", filter.Tag)
	}

	sql, args, err := q.OrderBy("b.created_at DESC", "b.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list bounties query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing bounties: %w", err)
	}
	defer rows.Close()

	bounties := make([]*models.Bounty, 0)
	for rows.Next() {
		b, err := scanBounty(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning bounty row: %w", err)
		}
		bounties = append(bounties, b)
	}
	return bounties, rows.Err()
}

// UpdateStatus sets the lifecycle state of a bounty
func (r *BountyRepository) UpdateStatus(ctx context.Context, id int64, status models.BountyStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE bounties SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("error updating bounty status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBountyNotFound
	}
	return nil
}

// Delete removes a bounty; its participations cascade
func (r *BountyRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bounties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting bounty: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBountyNotFound
	}
	return nil
}

// CountByCollege counts the bounties of a college
func (r *BountyRepository) CountByCollege(ctx context.Context, collegeID int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bounties WHERE college_id = $1`, collegeID).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting bounties: %w", err)
	}
	return n, nil
}

// CreateParticipation inserts a team and its members atomically.
// A member already on another team of the same bounty yields ErrAlreadyParticipant.
func (r *BountyRepository) CreateParticipation(ctx context.Context, p *models.Participation) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("participations").
			Columns("bounty_id", "team_name", "created_by").
			Values(p.BountyID, p.TeamName, p.CreatedBy).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create participation query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
			if dberrors.IsForeignKeyError(err) {
				return apperrors.ErrBountyNotFound
			}
			return fmt.Errorf("error creating participation: %w", err)
		}

		members := r.sb.Insert("participation_members").Columns("participation_id", "bounty_id", "user_id")
		for _, id := range p.MemberIDs {
			members = members.Values(p.ID, p.BountyID, id)
		}
		sql, args, err = members.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build participation members query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			if dberrors.IsDuplicateConstraintError(err, "participation_members_bounty_user_key") ||
				dberrors.IsDuplicateConstraintError(err, "participation_members_pkey") {
				return apperrors.ErrAlreadyParticipant
			}
			if dberrors.IsForeignKeyError(err) {
				return apperrors.ErrUserNotFound
			}
			return fmt.Errorf("error adding participation members: %w", err)
		}
		return nil
	})
}

func (r *BountyRepository) listParticipations(ctx context.Context, where squirrel.Sqlizer) ([]*models.Participation, error) {
	sql, args, err := r.sb.Select(
		"p.id", "p.bounty_id", "p.team_name", "p.created_by", "p.created_at",
		"COALESCE(array_agg(pm.user_id ORDER BY pm.user_id) FILTER (WHERE pm.user_id IS NOT NULL), '{}')",
	).
		From("participations p").
		Join("bounties b ON b.id = p.bounty_id").
		LeftJoin("participation_members pm ON pm.participation_id = p.id").
		Where(where).
		GroupBy("p.id").
		OrderBy("p.created_at DESC", "p.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list participations query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing participations: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Participation, 0)
	for rows.Next() {
		p := &models.Participation{}
		if err := rows.Scan(&p.ID, &p.BountyID, &p.TeamName, &p.CreatedBy, &p.CreatedAt, &p.MemberIDs); err != nil {
			return nil, fmt.Errorf("error scanning participation row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListParticipations returns the teams applied to a bounty
func (r *BountyRepository) ListParticipations(ctx context.Context, bountyID int64) ([]*models.Participation, error) {
	return r.listParticipations(ctx, squirrel.Eq{"p.bounty_id": bountyID})
}

// ListUserParticipations returns the teams userID is a member of, optionally only on active bounties
func (r *BountyRepository) ListUserParticipations(ctx context.Context, userID int64, activeOnly bool) ([]*models.Participation, error) {
	where := squirrel.And{
		squirrel.Expr("p.id IN (SELECT participation_id FROM participation_members WHERE user_id = ?)", userID),
	}
	if activeOnly {
		where = append(where, squirrel.Eq{"b.status": models.BountyActive})
	}
	return r.listParticipations(ctx, where)
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
