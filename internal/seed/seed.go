package seed

import (
	"context"
	"errors"
	"strings"

	appModels "github.com/campusconnect/backend/internal/app/models"
	appRepos "github.com/campusconnect/backend/internal/app/repositories"
	"github.com/campusconnect/backend/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// Defaults describes the campus and director created on first start
type Defaults struct {
	College          string
	DirectorName     string
	DirectorEmail    string
	DirectorPassword string
}

// CreateDefaultData creates the default college and its first director if they don't exist.
// Errors are collected so one failing step does not hide the others.
func CreateDefaultData(
	ctx context.Context,
	colleges appRepos.ICollegeRepository,
	users appRepos.IUserRepository,
	defaults Defaults,
	lgr zerolog.Logger,
) error {
	lgr.Info().Msg("Checking/Creating default data (college/director)...")
	var finalErr error

	collegeName := strings.TrimSpace(defaults.College)
	if collegeName == "" {
		lgr.Info().Msg("No default college configured, skipping seed")
		return nil
	}

	college, err := colleges.FindOrCreate(ctx, collegeName)
	if err != nil {
		lgr.Error().Err(err).Str("college", collegeName).Msg("Error creating default college")
		return err
	}

	email := strings.ToLower(strings.TrimSpace(defaults.DirectorEmail))
	if email == "" || defaults.DirectorPassword == "" {
		lgr.Info().Msg("No default director configured")
		return nil
	}

	exists, err := users.EmailExists(ctx, email)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if director exists")
		return err
	}
	if exists {
		lgr.Info().Msg("Default director already exists, skipping creation")
		return nil
	}

	hash, err := auth.HashPassword(defaults.DirectorPassword)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing director password")
		return err
	}

	name := defaults.DirectorName
	if name == "" {
		name = "Campus Director"
	}
	director := &appModels.User{
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      appModels.RoleDirector,
		CollegeID: college.ID,
	}
	if err := users.CreateUser(ctx, director); err != nil {
		lgr.Error().Err(err).Msg("Error creating default director")
		return err
	}

	details := &appModels.DirectorDetails{
		Title:        "Director",
		ContactEmail: email,
		Permissions:  appModels.DefaultDirectorPermissions(),
	}
	if err := users.CreateDirectorDetails(ctx, details); err != nil {
		lgr.Error().Err(err).Msg("Error creating director details")
		finalErr = errors.Join(finalErr, err)
	} else if err := users.LinkDirectorDetails(ctx, director.ID, details.ID); err != nil {
		lgr.Error().Err(err).Msg("Error linking director details")
		finalErr = errors.Join(finalErr, err)
	}

	info := &appModels.UserInfo{UserID: director.ID}
	if err := users.CreateUserInfo(ctx, info); err != nil {
		lgr.Error().Err(err).Msg("Error creating director user info")
		finalErr = errors.Join(finalErr, err)
	} else if err := users.LinkUserInfo(ctx, director.ID, info.ID); err != nil {
		lgr.Error().Err(err).Msg("Error linking director user info")
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Int64("directorID", director.ID).Int64("collegeID", college.ID).Msg("Default director created")
	return finalErr
}
