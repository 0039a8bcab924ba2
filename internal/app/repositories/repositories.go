package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	CollegeRepository *CollegeRepository
	UserRepository    *UserRepository
	TokenRepository   *TokenRepository
	FeedRepository    *FeedRepository
	MessageRepository *MessageRepository
	BountyRepository  *BountyRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		CollegeRepository: NewCollegeRepository(db),
		UserRepository:    NewUserRepository(db),
		TokenRepository:   NewTokenRepository(db),
		FeedRepository:    NewFeedRepository(db),
		MessageRepository: NewMessageRepository(db),
		BountyRepository:  NewBountyRepository(db),
	}
}
