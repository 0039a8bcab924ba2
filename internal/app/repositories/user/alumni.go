package user

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AlumniRepository handles operations on the alumni_details table
type AlumniRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAlumniRepository creates a new AlumniRepository
func NewAlumniRepository(db *pgxpool.Pool) *AlumniRepository {
	return &AlumniRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateAlumniDetails inserts a details row
func (r *AlumniRepository) CreateAlumniDetails(ctx context.Context, d *models.AlumniDetails) error {
	sql, args, err := r.sb.Insert("alumni_details").
		Columns("company", "job_title", "graduation_year", "department", "linkedin").
		Values(d.Company, d.JobTitle, d.GraduationYear, d.Department, d.LinkedIn).
		Suffix("RETURNING id, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create alumni details query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&d.ID, &d.UpdatedAt); err != nil {
		return fmt.Errorf("error creating alumni details: %w", err)
	}
	return nil
}

// GetAlumniDetails retrieves a details row by ID
func (r *AlumniRepository) GetAlumniDetails(ctx context.Context, id int64) (*models.AlumniDetails, error) {
	sql, args, err := r.sb.Select("id", "company", "job_title", "graduation_year", "department", "linkedin", "updated_at").
		From("alumni_details").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get alumni details query: %w", err)
	}

	d := &models.AlumniDetails{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&d.ID, &d.Company, &d.JobTitle, &d.GraduationYear, &d.Department, &d.LinkedIn, &d.UpdatedAt,
	)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("alumni details not found")
		}
		return nil, fmt.Errorf("error retrieving alumni details: %w", err)
	}
	return d, nil
}

// UpdateAlumniDetails overwrites a details row
func (r *AlumniRepository) UpdateAlumniDetails(ctx context.Context, d *models.AlumniDetails) error {
	d.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("alumni_details").
		SetMap(map[string]interface{}{
			"company":         d.Company,
			"job_title":       d.JobTitle,
			"graduation_year": d.GraduationYear,
			"department":      d.Department,
			"linkedin":        d.LinkedIn,
			"updated_at":      d.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": d.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update alumni details query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating alumni details: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("alumni details not found")
	}
	return nil
}
