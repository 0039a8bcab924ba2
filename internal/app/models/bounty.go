package models

import "time"

// Bounty is a freelance task posted on a college's bounty board
type Bounty struct {
	ID          int64        `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	Reward      string       `json:"reward" db:"reward"`
	Tags        []string     `json:"tags" db:"tags"`
	CollegeID   int64        `json:"collegeId" db:"college_id"`
	CreatedBy   int64        `json:"createdBy" db:"created_by"`
	Status      BountyStatus `json:"status" db:"status"`
	Deadline    *time.Time   `json:"deadline,omitempty" db:"deadline"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`

	Creator        *User            `json:"creator,omitempty"`
	Participations []*Participation `json:"participations,omitempty"`
}

// Participation is a team applying to a bounty
type Participation struct {
	ID        int64     `json:"id" db:"id"`
	BountyID  int64     `json:"bountyId" db:"bounty_id"`
	TeamName  string    `json:"teamName" db:"team_name"`
	CreatedBy int64     `json:"createdBy" db:"created_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	MemberIDs []int64   `json:"memberIds" db:"member_ids"`

	Members []*User `json:"members,omitempty"`
	Bounty  *Bounty `json:"bounty,omitempty"`
}
