package models

import "time"

// Media is a media object stored on the media host and referenced by a post
type Media struct {
	URL  string    `json:"url"`
	Kind MediaKind `json:"kind"`
	// Key identifies the object on the media host for deletion
	Key string `json:"key"`
}

// Feed is a post on a college feed
type Feed struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	CreatedBy int64     `json:"createdBy" db:"created_by"`
	CollegeID int64     `json:"collegeId" db:"college_id"`
	Type      FeedType  `json:"type" db:"type"`
	Media     []Media   `json:"media" db:"media"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Author       *User    `json:"author,omitempty"`
	College      *College `json:"college,omitempty"`
	Likes        int      `json:"likes"`
	Dislikes     int      `json:"dislikes"`
	CommentCount int      `json:"commentCount"`
}

// FeedComment is a comment on a post
type FeedComment struct {
	ID        int64     `json:"id" db:"id"`
	FeedID    int64     `json:"feedId" db:"feed_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Author   *User `json:"author,omitempty"`
	Likes    int   `json:"likes"`
	Dislikes int   `json:"dislikes"`
}

// FeedFilter narrows a college feed listing
type FeedFilter struct {
	CollegeID int64
	Type      FeedType
	Before    *time.Time
	Limit     uint64
}
