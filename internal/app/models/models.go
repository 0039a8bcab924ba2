package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent  RoleType = "Student"
	RoleAlumni   RoleType = "Alumni"
	RoleDirector RoleType = "Director"
	RoleFaculty  RoleType = "Faculty"
)

// Valid reports whether r is one of the known roles
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleAlumni, RoleDirector, RoleFaculty:
		return true
	}
	return false
}

// FeedType classifies a feed post
type FeedType string

const (
	FeedTypeGeneral      FeedType = "general"
	FeedTypeEvent        FeedType = "event"
	FeedTypeAnnouncement FeedType = "announcement"
	FeedTypeAchievement  FeedType = "achievement"
	FeedTypeOpportunity  FeedType = "opportunity"
)

// Valid reports whether t is one of the known feed types
func (t FeedType) Valid() bool {
	switch t {
	case FeedTypeGeneral, FeedTypeEvent, FeedTypeAnnouncement, FeedTypeAchievement, FeedTypeOpportunity:
		return true
	}
	return false
}

// MediaKind is the kind of a media object attached to a post
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// ReactionKind is a like or dislike on a post
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// BountyStatus is the lifecycle state of a bounty
type BountyStatus string

const (
	BountyActive BountyStatus = "active"
	BountyClosed BountyStatus = "closed"
)

// MessageTypeText is the only message type clients can send
const MessageTypeText = "text"
