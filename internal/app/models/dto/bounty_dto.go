package dto

import (
	"time"

	"github.com/campusconnect/backend/internal/app/models"
)

// CreateBountyRequest posts a new bounty on the caller's campus
type CreateBountyRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Description string     `json:"description" binding:"required"`
	Reward      string     `json:"reward" binding:"max=255"`
	Tags        []string   `json:"tags" binding:"omitempty,max=10,dive,max=32"`
	Deadline    *time.Time `json:"deadline"`
}

// BountyListQuery filters the bounty board
type BountyListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=active closed"`
	Tag    string `form:"tag"`
}

// ApplyBountyRequest applies to a bounty as a team; the caller is always a member
type ApplyBountyRequest struct {
	TeamName  string  `json:"teamName" binding:"required,max=255"`
	MemberIDs []int64 `json:"memberIds" binding:"omitempty,max=10"`
}

// ParticipationQuery filters the caller's participations
type ParticipationQuery struct {
	Active bool `form:"active"`
}

// BountyResponse is a bounty with its creator and participations populated
type BountyResponse struct {
	ID             int64                    `json:"id"`
	Title          string                   `json:"title"`
	Description    string                   `json:"description"`
	Reward         string                   `json:"reward"`
	Tags           []string                 `json:"tags"`
	Status         string                   `json:"status"`
	Deadline       *time.Time               `json:"deadline,omitempty"`
	Creator        *UserSummary             `json:"creator,omitempty"`
	Participations []*ParticipationResponse `json:"participations,omitempty"`
	CreatedAt      time.Time                `json:"createdAt"`
}

// ParticipationResponse is a team with its members and, optionally, its bounty
type ParticipationResponse struct {
	ID        int64           `json:"id"`
	BountyID  int64           `json:"bountyId"`
	TeamName  string          `json:"teamName"`
	CreatedBy int64           `json:"createdBy"`
	Members   []*UserSummary  `json:"members"`
	Bounty    *BountyResponse `json:"bounty,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewBountyResponse converts a bounty into its API shape
func NewBountyResponse(b *models.Bounty) *BountyResponse {
	if b == nil {
		return nil
	}
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	resp := &BountyResponse{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Reward:      b.Reward,
		Tags:        tags,
		Status:      string(b.Status),
		Deadline:    b.Deadline,
		Creator:     NewUserSummary(b.Creator),
		CreatedAt:   b.CreatedAt,
	}
	for _, p := range b.Participations {
		resp.Participations = append(resp.Participations, NewParticipationResponse(p))
	}
	return resp
}

// NewParticipationResponse converts a participation into its API shape
func NewParticipationResponse(p *models.Participation) *ParticipationResponse {
	resp := &ParticipationResponse{
		ID:        p.ID,
		BountyID:  p.BountyID,
		TeamName:  p.TeamName,
		CreatedBy: p.CreatedBy,
		Members:   make([]*UserSummary, 0, len(p.Members)),
		Bounty:    NewBountyResponse(p.Bounty),
		CreatedAt: p.CreatedAt,
	}
	for _, m := range p.Members {
		resp.Members = append(resp.Members, NewUserSummary(m))
	}
	return resp
}
