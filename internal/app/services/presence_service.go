package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusconnect/backend/internal/pkg/presence"
	"github.com/rs/zerolog"
)

// PresenceRepository persists the online flag of users
type PresenceRepository interface {
	SetPresence(ctx context.Context, userID int64, online bool, at time.Time) error
	ResetPresence(ctx context.Context) (int64, error)
}

// PresenceService records online/offline transitions in the database and the presence mirror
type PresenceService struct {
	repo   PresenceRepository
	store  presence.Store
	logger zerolog.Logger
}

// PresenceReader answers live presence questions from the presence mirror
type PresenceReader interface {
	OnlineUsers(ctx context.Context) ([]int64, error)
	Status(ctx context.Context, userID int64) (*presence.Status, error)
}

// NewPresenceService creates a new presence service
func NewPresenceService(repo PresenceRepository, store presence.Store, logger zerolog.Logger) *PresenceService {
	return &PresenceService{repo: repo, store: store, logger: logger}
}

// SetOnline marks a user online
func (s *PresenceService) SetOnline(ctx context.Context, userID int64) error {
	var errs []error
	if err := s.repo.SetPresence(ctx, userID, true, time.Now()); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	if err := s.store.SetOnline(ctx, userID); err != nil {
		errs = append(errs, fmt.Errorf("presence store: %w", err))
	}
	return errors.Join(errs...)
}

// SetOffline marks a user offline with last seen at
func (s *PresenceService) SetOffline(ctx context.Context, userID int64, at time.Time) error {
	var errs []error
	if err := s.repo.SetPresence(ctx, userID, false, at); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	if err := s.store.SetOffline(ctx, userID, at); err != nil {
		errs = append(errs, fmt.Errorf("presence store: %w", err))
	}
	return errors.Join(errs...)
}

// Reset marks everybody offline. It runs at startup, before any socket is accepted.
func (s *PresenceService) Reset(ctx context.Context) error {
	n, err := s.repo.ResetPresence(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset presence: %w", err)
	}
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset presence store: %w", err)
	}
	s.logger.Info().Int64("users", n).Msg("Presence reset")
	return nil
}

// OnlineUsers lists the users holding at least one live socket
func (s *PresenceService) OnlineUsers(ctx context.Context) ([]int64, error) {
	return s.store.OnlineUsers(ctx)
}

// Status returns the last known presence of a user
func (s *PresenceService) Status(ctx context.Context, userID int64) (*presence.Status, error) {
	return s.store.Get(ctx, userID)
}
