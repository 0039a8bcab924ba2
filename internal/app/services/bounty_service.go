package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/models/dto"
	"github.com/campusconnect/backend/internal/app/repositories"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/websocket"
	"github.com/rs/zerolog"
)

// BountyService runs the campus bounty board
type BountyService struct {
	bountyRepo repositories.IBountyRepository
	userRepo   repositories.IUserRepository
	notifier   Notifier
	logger     zerolog.Logger
}

// NewBountyService creates a new bounty service
func NewBountyService(
	bountyRepo repositories.IBountyRepository,
	userRepo repositories.IUserRepository,
	notifier Notifier,
	logger zerolog.Logger,
) *BountyService {
	return &BountyService{
		bountyRepo: bountyRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		logger:     logger,
	}
}

// CreateBounty posts a bounty on the caller's campus and announces it
func (s *BountyService) CreateBounty(ctx context.Context, actor Actor, req *dto.CreateBountyRequest) (*models.Bounty, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, apperrors.NewBadRequestError("Title and description are required")
	}

	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}

	bounty := &models.Bounty{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Reward:      req.Reward,
		Tags:        tags,
		CollegeID:   actor.CollegeID,
		CreatedBy:   actor.UserID,
		Status:      models.BountyActive,
		Deadline:    req.Deadline,
	}
	if err := s.bountyRepo.Create(ctx, bounty); err != nil {
		return nil, err
	}

	created, err := s.bountyRepo.GetByID(ctx, bounty.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.BroadcastToCollege(created.CollegeID, websocket.EventNewBounty, dto.NewBountyResponse(created))
	}
	s.logger.Info().Int64("bountyID", created.ID).Int64("userID", actor.UserID).Msg("Bounty created")
	return created, nil
}

// ListBounties lists the bounties of the caller's campus, newest first
func (s *BountyService) ListBounties(ctx context.Context, actor Actor, query *dto.BountyListQuery) ([]*models.Bounty, error) {
	filter := repositories.BountyFilter{CollegeID: actor.CollegeID}
	if query != nil {
		switch models.BountyStatus(query.Status) {
		case "", models.BountyActive, models.BountyClosed:
			filter.Status = models.BountyStatus(query.Status)
		default:
			return nil, apperrors.NewBadRequestError("Invalid bounty status")
		}
		filter.Tag = strings.ToLower(strings.TrimSpace(query.Tag))
	}
	return s.bountyRepo.List(ctx, filter)
}

// GetBounty returns a bounty of the caller's campus with its teams
func (s *BountyService) GetBounty(ctx context.Context, actor Actor, bountyID int64) (*models.Bounty, error) {
	bounty, err := s.campusBounty(ctx, actor, bountyID)
	if err != nil {
		return nil, err
	}

	participations, err := s.bountyRepo.ListParticipations(ctx, bounty.ID)
	if err != nil {
		return nil, err
	}
	if err := s.populateMembers(ctx, participations); err != nil {
		return nil, err
	}
	bounty.Participations = participations
	return bounty, nil
}

// ApplyBounty registers a team. The caller is always a member and every member must
// belong to the bounty's campus and to no other team of the bounty.
func (s *BountyService) ApplyBounty(ctx context.Context, actor Actor, bountyID int64, req *dto.ApplyBountyRequest) (*models.Participation, error) {
	teamName := strings.TrimSpace(req.TeamName)
	if teamName == "" {
		return nil, apperrors.NewBadRequestError("Team name is required")
	}

	bounty, err := s.campusBounty(ctx, actor, bountyID)
	if err != nil {
		return nil, err
	}
	if bounty.Status != models.BountyActive {
		return nil, apperrors.ErrBountyClosed
	}

	memberIDs := []int64{actor.UserID}
	seen := map[int64]bool{actor.UserID: true}
	for _, id := range req.MemberIDs {
		if id > 0 && !seen[id] {
			seen[id] = true
			memberIDs = append(memberIDs, id)
		}
	}

	members, err := s.userRepo.GetUsersByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	if len(members) != len(memberIDs) {
		return nil, apperrors.NewResourceNotFoundError("One or more team members were not found")
	}
	for _, m := range members {
		if m.CollegeID != bounty.CollegeID {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("%s does not belong to this campus", m.Name))
		}
	}

	existing, err := s.bountyRepo.ListParticipations(ctx, bounty.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		for _, id := range p.MemberIDs {
			if seen[id] {
				return nil, apperrors.NewCustomError(apperrors.ErrAlreadyParticipant,
					fmt.Sprintf("User %d is already in team %q", id, p.TeamName))
			}
		}
	}

	participation := &models.Participation{
		BountyID:  bounty.ID,
		TeamName:  teamName,
		CreatedBy: actor.UserID,
		MemberIDs: memberIDs,
	}
	if err := s.bountyRepo.CreateParticipation(ctx, participation); err != nil {
		return nil, err
	}
	participation.Members = members

	s.logger.Info().
		Int64("bountyID", bounty.ID).
		Int64("participationID", participation.ID).
		Int("members", len(memberIDs)).
		Msg("Bounty application submitted")

	return participation, nil
}

// DeleteBounty removes a bounty and its teams. Allowed for the creator and the campus directors.
func (s *BountyService) DeleteBounty(ctx context.Context, actor Actor, bountyID int64) error {
	bounty, err := s.bountyRepo.GetByID(ctx, bountyID)
	if err != nil {
		return err
	}

	owner := bounty.CreatedBy == actor.UserID
	campusDirector := actor.IsDirector() && bounty.CollegeID == actor.CollegeID
	if !owner && !campusDirector {
		return apperrors.NewForbiddenError("Only the creator or a campus director can delete this bounty")
	}

	if err := s.bountyRepo.Delete(ctx, bounty.ID); err != nil {
		return err
	}
	s.logger.Info().Int64("bountyID", bounty.ID).Int64("userID", actor.UserID).Msg("Bounty deleted")
	return nil
}

// CloseBounty stops accepting applications. Only the creator may close a bounty.
func (s *BountyService) CloseBounty(ctx context.Context, actor Actor, bountyID int64) (*models.Bounty, error) {
	bounty, err := s.bountyRepo.GetByID(ctx, bountyID)
	if err != nil {
		return nil, err
	}
	if bounty.CreatedBy != actor.UserID {
		return nil, apperrors.NewForbiddenError("Only the creator can close this bounty")
	}

	if bounty.Status != models.BountyClosed {
		if err := s.bountyRepo.UpdateStatus(ctx, bounty.ID, models.BountyClosed); err != nil {
			return nil, err
		}
		bounty.Status = models.BountyClosed
	}
	return bounty, nil
}

// MyParticipations lists the caller's teams with bounty and members populated
func (s *BountyService) MyParticipations(ctx context.Context, actor Actor, activeOnly bool) ([]*models.Participation, error) {
	participations, err := s.bountyRepo.ListUserParticipations(ctx, actor.UserID, activeOnly)
	if err != nil {
		return nil, err
	}
	if err := s.populateMembers(ctx, participations); err != nil {
		return nil, err
	}

	bounties := make(map[int64]*models.Bounty)
	for _, p := range participations {
		b, ok := bounties[p.BountyID]
		if !ok {
			if b, err = s.bountyRepo.GetByID(ctx, p.BountyID); err != nil {
				return nil, err
			}
			bounties[p.BountyID] = b
		}
		p.Bounty = b
	}
	return participations, nil
}

func (s *BountyService) campusBounty(ctx context.Context, actor Actor, bountyID int64) (*models.Bounty, error) {
	bounty, err := s.bountyRepo.GetByID(ctx, bountyID)
	if err != nil {
		return nil, err
	}
	if bounty.CollegeID != actor.CollegeID {
		return nil, apperrors.ErrBountyNotFound
	}
	return bounty, nil
}

// populateMembers loads the members of every participation with a single query
func (s *BountyService) populateMembers(ctx context.Context, participations []*models.Participation) error {
	var ids []int64
	seen := make(map[int64]bool)
	for _, p := range participations {
		for _, id := range p.MemberIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := s.userRepo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[int64]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for _, p := range participations {
		p.Members = make([]*models.User, 0, len(p.MemberIDs))
		for _, id := range p.MemberIDs {
			if u, ok := byID[id]; ok {
				p.Members = append(p.Members, u)
			}
		}
	}
	return nil
}
