package user

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DirectorRepository handles operations on the director_details table
type DirectorRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDirectorRepository creates a new DirectorRepository
func NewDirectorRepository(db *pgxpool.Pool) *DirectorRepository {
	return &DirectorRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func directorValues(d *models.DirectorDetails) (map[string]interface{}, error) {
	perms, err := json.Marshal(d.Permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode director permissions: %w", err)
	}
	return map[string]interface{}{
		"title":               d.Title,
		"department":          d.Department,
		"director_role":       d.DirectorRole,
		"expertise":           nonNil(d.Expertise),
		"office_location":     d.OfficeLocation,
		"contact_email":       d.ContactEmail,
		"permissions":         perms,
		"managed_departments": nonNil(d.ManagedDepartments),
		"reporting_to":        d.ReportingTo,
		"research_interests":  nonNil(d.ResearchInterests),
		"publications":        nonNil(d.Publications),
		"teaching_subjects":   nonNil(d.TeachingSubjects),
		"office_hours":        d.OfficeHours,
		"achievements":        nonNil(d.Achievements),
		"guidance":            d.Guidance,
	}, nil
}

// CreateDirectorDetails inserts a details row
func (r *DirectorRepository) CreateDirectorDetails(ctx context.Context, d *models.DirectorDetails) error {
	values, err := directorValues(d)
	if err != nil {
		return err
	}
	sql, args, err := r.sb.Insert("director_details").
		SetMap(values).
		Suffix("RETURNING id, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create director details query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&d.ID, &d.UpdatedAt); err != nil {
		return fmt.Errorf("error creating director details: %w", err)
	}
	return nil
}

// GetDirectorDetails retrieves a details row by ID
func (r *DirectorRepository) GetDirectorDetails(ctx context.Context, id int64) (*models.DirectorDetails, error) {
	sql, args, err := r.sb.Select(
		"id", "title", "department", "director_role", "expertise", "office_location",
		"contact_email", "permissions", "managed_departments", "reporting_to",
		"research_interests", "publications", "teaching_subjects", "office_hours", "achievements", "guidance",
		"updated_at",
	).From("director_details").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get director details query: %w", err)
	}

	d := &models.DirectorDetails{}
	var perms []byte
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&d.ID, &d.Title, &d.Department, &d.DirectorRole, &d.Expertise, &d.OfficeLocation,
		&d.ContactEmail, &perms, &d.ManagedDepartments, &d.ReportingTo,
		&d.ResearchInterests, &d.Publications, &d.TeachingSubjects, &d.OfficeHours, &d.Achievements, &d.Guidance,
		&d.UpdatedAt,
	)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("director details not found")
		}
		return nil, fmt.Errorf("error retrieving director details: %w", err)
	}
	if err := json.Unmarshal(perms, &d.Permissions); err != nil {
		return nil, fmt.Errorf("failed to decode director permissions: %w", err)
	}
	return d, nil
}

// UpdateDirectorDetails overwrites a details row
func (r *DirectorRepository) UpdateDirectorDetails(ctx context.Context, d *models.DirectorDetails) error {
	values, err := directorValues(d)
	if err != nil {
		return err
	}
	d.UpdatedAt = time.Now()
	values["updated_at"] = d.UpdatedAt

	sql, args, err := r.sb.Update("director_details").SetMap(values).Where(squirrel.Eq{"id": d.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update director details query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating director details: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("director details not found")
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
