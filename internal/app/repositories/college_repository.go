package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ICollegeRepository defines college database operations
type ICollegeRepository interface {
	FindOrCreate(ctx context.Context, name string) (*models.College, error)
	GetByID(ctx context.Context, id int64) (*models.College, error)
}

// CollegeRepository handles database operations for colleges
type CollegeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCollegeRepository creates a new CollegeRepository
func NewCollegeRepository(db *pgxpool.Pool) *CollegeRepository {
	return &CollegeRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FindOrCreate returns the college named name, creating it on first reference
func (r *CollegeRepository) FindOrCreate(ctx context.Context, name string) (*models.College, error) {
	// The no-op update makes RETURNING yield the existing row on conflict
	sql, args, err := r.sb.Insert("colleges").
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT ON CONSTRAINT colleges_name_key DO UPDATE SET name = EXCLUDED.name").
		Suffix("RETURNING id, name, location, departments, website, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find or create college query: %w", err)
	}

	c := &models.College{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.Name, &c.Location, &c.Departments, &c.Website, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error finding or creating college: %w", err)
	}
	return c, nil
}

// GetByID retrieves a college by ID
func (r *CollegeRepository) GetByID(ctx context.Context, id int64) (*models.College, error) {
	sql, args, err := r.sb.Select("id", "name", "location", "departments", "website", "created_at").
		From("colleges").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get college query: %w", err)
	}

	c := &models.College{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.Name, &c.Location, &c.Departments, &c.Website, &c.CreatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("college not found")
		}
		return nil, fmt.Errorf("error retrieving college: %w", err)
	}
	return c, nil
}
