package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/repositories"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/filestorage"
	"github.com/campusconnect/backend/internal/pkg/presence"
	"golang.org/x/crypto/bcrypt"
)

func fastHash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(b), err
}

// fakeUsers is an in-memory IUserRepository
type fakeUsers struct {
	mu        sync.Mutex
	nextID    int64
	users     map[int64]*models.User
	infos     map[int64]*models.UserInfo // by user id
	alumni    map[int64]*models.AlumniDetails
	directors map[int64]*models.DirectorDetails
	presence  map[int64]bool
	deleted   []int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		users:     make(map[int64]*models.User),
		infos:     make(map[int64]*models.UserInfo),
		alumni:    make(map[int64]*models.AlumniDetails),
		directors: make(map[int64]*models.DirectorDetails),
		presence:  make(map[int64]bool),
	}
}

var _ repositories.IUserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) id() int64 {
	f.nextID++
	return f.nextID
}

// add stores a user directly and returns it
func (f *fakeUsers) add(name string, role models.RoleType, collegeID int64) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &models.User{
		ID:        f.id(),
		Name:      name,
		Email:     fmt.Sprintf("%s@campus.test", name),
		Role:      role,
		CollegeID: collegeID,
		CreatedAt: time.Now(),
	}
	f.users[u.ID] = u
	return u
}

// addDirector stores a director with the given permissions
func (f *fakeUsers) addDirector(name string, collegeID int64, perms models.DirectorPermissions) *models.User {
	u := f.add(name, models.RoleDirector, collegeID)
	f.mu.Lock()
	defer f.mu.Unlock()
	d := &models.DirectorDetails{ID: f.id(), Title: "Director", Permissions: perms}
	f.directors[d.ID] = d
	u.DirectorDetailsID = &d.ID
	return u
}

func (f *fakeUsers) copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (f *fakeUsers) CreateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	u.ID = f.id()
	u.CreatedAt = time.Now()
	f.users[u.ID] = f.copyUser(u)
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return f.copyUser(u), nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return f.copyUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUsers) GetUsersByIDs(_ context.Context, ids []int64) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, f.copyUser(u))
		}
	}
	return out, nil
}

func (f *fakeUsers) ListUsers(_ context.Context, filter repositories.UserFilter) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, u := range f.users {
		if filter.CollegeID != 0 && u.CollegeID != filter.CollegeID {
			continue
		}
		if filter.ExcludeID != 0 && u.ID == filter.ExcludeID {
			continue
		}
		if len(filter.Roles) > 0 {
			match := false
			for _, r := range filter.Roles {
				if u.Role == r {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, f.copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.OrderByName {
			return out[i].Name < out[j].Name
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeUsers) UpdateUserProfile(_ context.Context, userID int64, name, profileImage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Name = name
	u.ProfileImage = profileImage
	return nil
}

func (f *fakeUsers) link(userID int64, set func(*models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	set(u)
	return nil
}

func (f *fakeUsers) LinkUserInfo(_ context.Context, userID, infoID int64) error {
	return f.link(userID, func(u *models.User) { u.UserInfoID = &infoID })
}

func (f *fakeUsers) LinkAlumniDetails(_ context.Context, userID, detailsID int64) error {
	return f.link(userID, func(u *models.User) { u.AlumniDetailsID = &detailsID })
}

func (f *fakeUsers) LinkDirectorDetails(_ context.Context, userID, detailsID int64) error {
	return f.link(userID, func(u *models.User) { u.DirectorDetailsID = &detailsID })
}

func (f *fakeUsers) SetPresence(_ context.Context, userID int64, online bool, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presence[userID] = online
	return nil
}

func (f *fakeUsers) ResetPresence(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.presence))
	f.presence = make(map[int64]bool)
	return n, nil
}

func (f *fakeUsers) DeleteUser(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[userID]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(f.users, userID)
	f.deleted = append(f.deleted, userID)
	return nil
}

func (f *fakeUsers) CountUsersByRole(_ context.Context, collegeID int64) (map[models.RoleType]int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[models.RoleType]int)
	online := 0
	for _, u := range f.users {
		if u.CollegeID != collegeID {
			continue
		}
		counts[u.Role]++
		if f.presence[u.ID] {
			online++
		}
	}
	return counts, online, nil
}

func (f *fakeUsers) CreateUserInfo(_ context.Context, info *models.UserInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.infos[info.UserID]; ok {
		return apperrors.NewConflictError("user info already exists")
	}
	info.ID = f.id()
	c := *info
	f.infos[info.UserID] = &c
	return nil
}

func (f *fakeUsers) GetUserInfo(_ context.Context, userID int64) (*models.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.infos[userID]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("user info not found")
	}
	c := *info
	c.Skills = append([]string(nil), info.Skills...)
	c.Projects = append([]models.Project(nil), info.Projects...)
	return &c, nil
}

func (f *fakeUsers) UpdateUserInfo(_ context.Context, info *models.UserInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.infos[info.UserID]
	if !ok {
		return apperrors.NewResourceNotFoundError("user info not found")
	}
	stored.Bio, stored.Address, stored.Links = info.Bio, info.Address, info.Links
	return nil
}

func (f *fakeUsers) AddSkill(_ context.Context, userID int64, skill string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.infos[userID]
	if !ok {
		return nil
	}
	for _, s := range info.Skills {
		if s == skill {
			return nil
		}
	}
	info.Skills = append(info.Skills, skill)
	return nil
}

func (f *fakeUsers) RemoveSkill(_ context.Context, userID int64, skill string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.infos[userID]
	if !ok {
		return nil
	}
	kept := info.Skills[:0]
	for _, s := range info.Skills {
		if s != skill {
			kept = append(kept, s)
		}
	}
	info.Skills = kept
	return nil
}

func (f *fakeUsers) AddProject(_ context.Context, userID int64, project models.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.infos[userID]
	if !ok {
		return apperrors.NewResourceNotFoundError("user info not found")
	}
	info.Projects = append(info.Projects, project)
	return nil
}

func (f *fakeUsers) RemoveProject(_ context.Context, userID int64, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.infos[userID]
	if !ok {
		return apperrors.NewResourceNotFoundError("user info not found")
	}
	for i, p := range info.Projects {
		if p.ID == projectID {
			info.Projects = append(info.Projects[:i], info.Projects[i+1:]...)
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("project not found")
}

func (f *fakeUsers) CreateAlumniDetails(_ context.Context, d *models.AlumniDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.ID = f.id()
	c := *d
	f.alumni[d.ID] = &c
	return nil
}

func (f *fakeUsers) GetAlumniDetails(_ context.Context, id int64) (*models.AlumniDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.alumni[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("alumni details not found")
	}
	c := *d
	return &c, nil
}

func (f *fakeUsers) UpdateAlumniDetails(_ context.Context, d *models.AlumniDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.alumni[d.ID]; !ok {
		return apperrors.NewResourceNotFoundError("alumni details not found")
	}
	c := *d
	f.alumni[d.ID] = &c
	return nil
}

func (f *fakeUsers) CreateDirectorDetails(_ context.Context, d *models.DirectorDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.ID = f.id()
	c := *d
	f.directors[d.ID] = &c
	return nil
}

func (f *fakeUsers) GetDirectorDetails(_ context.Context, id int64) (*models.DirectorDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.directors[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("director details not found")
	}
	c := *d
	return &c, nil
}

func (f *fakeUsers) UpdateDirectorDetails(_ context.Context, d *models.DirectorDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.directors[d.ID]; !ok {
		return apperrors.NewResourceNotFoundError("director details not found")
	}
	c := *d
	f.directors[d.ID] = &c
	return nil
}

// fakeColleges is an in-memory ICollegeRepository
type fakeColleges struct {
	mu     sync.Mutex
	byName map[string]*models.College
	byID   map[int64]*models.College
}

func newFakeColleges() *fakeColleges {
	return &fakeColleges{byName: make(map[string]*models.College), byID: make(map[int64]*models.College)}
}

func (f *fakeColleges) FindOrCreate(_ context.Context, name string) (*models.College, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byName[name]; ok {
		return c, nil
	}
	c := &models.College{ID: int64(len(f.byID) + 1), Name: name}
	f.byName[name] = c
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeColleges) GetByID(_ context.Context, id int64) (*models.College, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("college not found")
	}
	return c, nil
}

// fakeTokens is an in-memory ITokenRepository
type fakeTokens struct {
	mu      sync.Mutex
	tokens  map[string]*models.RefreshToken
	revoked []int64
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: make(map[string]*models.RefreshToken)}
}

func (f *fakeTokens) CreateToken(_ context.Context, token string, userID int64, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &models.RefreshToken{Token: token, UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeTokens) GetToken(_ context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	if t.Revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	return t, nil
}

func (f *fakeTokens) RevokeToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.Revoked = true
	return nil
}

func (f *fakeTokens) RevokeAllUserTokens(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	f.revoked = append(f.revoked, userID)
	return nil
}

func (f *fakeTokens) CleanupExpiredTokens(context.Context, time.Time) (int64, error) { return 0, nil }

// fakeFeeds is an in-memory IFeedRepository
type fakeFeeds struct {
	mu        sync.Mutex
	nextID    int64
	feeds     map[int64]*models.Feed
	reactions map[[2]int64]models.ReactionKind
	comments  map[int64]*models.FeedComment
	// comment reactions keyed by (commentID, userID)
	commentReactions map[[2]int64]models.ReactionKind
}

func newFakeFeeds() *fakeFeeds {
	return &fakeFeeds{
		feeds:            make(map[int64]*models.Feed),
		reactions:        make(map[[2]int64]models.ReactionKind),
		comments:         make(map[int64]*models.FeedComment),
		commentReactions: make(map[[2]int64]models.ReactionKind),
	}
}

func (f *fakeFeeds) Create(_ context.Context, feed *models.Feed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	feed.ID = f.nextID
	feed.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Millisecond)
	c := *feed
	f.feeds[feed.ID] = &c
	return nil
}

func (f *fakeFeeds) GetByID(_ context.Context, id int64) (*models.Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	feed, ok := f.feeds[id]
	if !ok {
		return nil, apperrors.ErrFeedNotFound
	}
	c := *feed
	c.Likes, c.Dislikes = 0, 0
	for key, kind := range f.reactions {
		if key[0] != id {
			continue
		}
		if kind == models.ReactionLike {
			c.Likes++
		} else {
			c.Dislikes++
		}
	}
	return &c, nil
}

func (f *fakeFeeds) List(_ context.Context, filter models.FeedFilter) ([]*models.Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Feed
	for _, feed := range f.feeds {
		if feed.CollegeID != filter.CollegeID {
			continue
		}
		if filter.Type != "" && feed.Type != filter.Type {
			continue
		}
		c := *feed
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeFeeds) ListByAuthor(_ context.Context, userID int64) ([]*models.Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Feed, 0)
	for _, feed := range f.feeds {
		if feed.CreatedBy == userID {
			c := *feed
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeFeeds) Update(_ context.Context, feed *models.Feed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.feeds[feed.ID]; !ok {
		return apperrors.ErrFeedNotFound
	}
	c := *feed
	f.feeds[feed.ID] = &c
	return nil
}

func (f *fakeFeeds) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.feeds[id]; !ok {
		return apperrors.ErrFeedNotFound
	}
	delete(f.feeds, id)
	return nil
}

func (f *fakeFeeds) CountByCollege(_ context.Context, collegeID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, feed := range f.feeds {
		if feed.CollegeID == collegeID {
			n++
		}
	}
	return n, nil
}

func (f *fakeFeeds) React(_ context.Context, feedID, userID int64, kind models.ReactionKind) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int64{feedID, userID}
	if f.reactions[key] == kind {
		delete(f.reactions, key)
		return false, nil
	}
	f.reactions[key] = kind
	return true, nil
}

func (f *fakeFeeds) CreateComment(_ context.Context, comment *models.FeedComment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	comment.ID = f.nextID
	comment.CreatedAt = time.Now()
	c := *comment
	f.comments[c.ID] = &c
	return nil
}

func (f *fakeFeeds) GetComment(_ context.Context, id int64) (*models.FeedComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, apperrors.ErrCommentNotFound
	}
	return f.countedComment(c), nil
}

// countedComment copies c with its reaction counts; callers hold mu
func (f *fakeFeeds) countedComment(c *models.FeedComment) *models.FeedComment {
	out := *c
	for key, kind := range f.commentReactions {
		if key[0] != c.ID {
			continue
		}
		if kind == models.ReactionLike {
			out.Likes++
		} else {
			out.Dislikes++
		}
	}
	return &out
}

func (f *fakeFeeds) ListComments(_ context.Context, feedID int64) ([]*models.FeedComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.FeedComment
	for _, c := range f.comments {
		if c.FeedID == feedID {
			out = append(out, f.countedComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeFeeds) DeleteComment(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return apperrors.ErrCommentNotFound
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeFeeds) ReactComment(_ context.Context, commentID, userID int64, kind models.ReactionKind) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[commentID]; !ok {
		return false, apperrors.ErrCommentNotFound
	}
	key := [2]int64{commentID, userID}
	if f.commentReactions[key] == kind {
		delete(f.commentReactions, key)
		return false, nil
	}
	f.commentReactions[key] = kind
	return true, nil
}

// fakeMessages is an in-memory IMessageRepository
type fakeMessages struct {
	mu     sync.Mutex
	nextID int64
	msgs   []*models.Message
	last   []models.LastMessage
}

func (f *fakeMessages) Create(_ context.Context, msg *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	msg.ID = f.nextID
	msg.RoomID = models.RoomID(msg.SenderID, msg.ReceiverID)
	msg.CreatedAt = time.Now()
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeMessages) CreateMany(ctx context.Context, msgs []*models.Message) error {
	for _, m := range msgs {
		if err := f.Create(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeMessages) ListByRoom(_ context.Context, filter models.MessageFilter) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Message
	for _, m := range f.msgs {
		if m.RoomID == filter.RoomID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) LastMessages(context.Context, int64) ([]models.LastMessage, error) {
	return f.last, nil
}

// fakeBounties is an in-memory IBountyRepository
type fakeBounties struct {
	mu             sync.Mutex
	nextID         int64
	bounties       map[int64]*models.Bounty
	participations []*models.Participation
}

func newFakeBounties() *fakeBounties {
	return &fakeBounties{bounties: make(map[int64]*models.Bounty)}
}

func (f *fakeBounties) Create(_ context.Context, b *models.Bounty) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = time.Now()
	c := *b
	f.bounties[b.ID] = &c
	return nil
}

func (f *fakeBounties) GetByID(_ context.Context, id int64) (*models.Bounty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bounties[id]
	if !ok {
		return nil, apperrors.ErrBountyNotFound
	}
	c := *b
	return &c, nil
}

func (f *fakeBounties) List(_ context.Context, filter repositories.BountyFilter) ([]*models.Bounty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Bounty
	for _, b := range f.bounties {
		if b.CollegeID != filter.CollegeID || (filter.Status != "" && b.Status != filter.Status) {
			continue
		}
		c := *b
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeBounties) UpdateStatus(_ context.Context, id int64, status models.BountyStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bounties[id]
	if !ok {
		return apperrors.ErrBountyNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeBounties) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bounties[id]; !ok {
		return apperrors.ErrBountyNotFound
	}
	delete(f.bounties, id)
	kept := f.participations[:0]
	for _, p := range f.participations {
		if p.BountyID != id {
			kept = append(kept, p)
		}
	}
	f.participations = kept
	return nil
}

func (f *fakeBounties) CountByCollege(_ context.Context, collegeID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.bounties {
		if b.CollegeID == collegeID {
			n++
		}
	}
	return n, nil
}

func (f *fakeBounties) CreateParticipation(_ context.Context, p *models.Participation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now()
	c := *p
	f.participations = append(f.participations, &c)
	return nil
}

func (f *fakeBounties) ListParticipations(_ context.Context, bountyID int64) ([]*models.Participation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Participation
	for _, p := range f.participations {
		if p.BountyID == bountyID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeBounties) ListUserParticipations(_ context.Context, userID int64, activeOnly bool) ([]*models.Participation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Participation
	for _, p := range f.participations {
		member := false
		for _, id := range p.MemberIDs {
			if id == userID {
				member = true
			}
		}
		if !member {
			continue
		}
		if activeOnly && f.bounties[p.BountyID].Status != models.BountyActive {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	return out, nil
}

// fakeUploader stores nothing and hands out sequential keys
type fakeUploader struct {
	mu   sync.Mutex
	n    int
	fail error
}

func (f *fakeUploader) UploadMedia(_ context.Context, fh *multipart.FileHeader, sub string) (*filestorage.Object, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, "", f.fail
	}
	f.n++
	key := fmt.Sprintf("%s/%d-%s", sub, f.n, fh.Filename)
	kind := filestorage.KindImage
	if fh.Header.Get("Content-Type") == "video/mp4" {
		kind = filestorage.KindVideo
	}
	return &filestorage.Object{Key: key, URL: "http://media.test/" + key}, kind, nil
}

func (f *fakeUploader) UploadImage(ctx context.Context, fh *multipart.FileHeader, sub string, _ int) (*filestorage.Object, error) {
	obj, _, err := f.UploadMedia(ctx, fh, sub)
	return obj, err
}

// recordingCleaner remembers every key it was asked to delete
type recordingCleaner struct {
	mu   sync.Mutex
	keys []string
}

func (c *recordingCleaner) Clean(_ context.Context, media []models.Media, _ string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, mediaKeys(media)...)
}

// failingPresence is a presence mirror that cannot be reached
type failingPresence struct{}

func (failingPresence) OnlineUsers(context.Context) ([]int64, error) {
	return nil, errors.New("presence unavailable")
}

func (failingPresence) Status(context.Context, int64) (*presence.Status, error) {
	return nil, errors.New("presence unavailable")
}

type pushed struct {
	target int64
	event  string
	data   any
}

// recordingNotifier remembers pushes; users in online receive direct pushes
type recordingNotifier struct {
	mu         sync.Mutex
	online     map[int64]bool
	direct     []pushed
	broadcasts []pushed
}

func (n *recordingNotifier) SendToUser(userID int64, event string, data any) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.online[userID] {
		return false
	}
	n.direct = append(n.direct, pushed{target: userID, event: event, data: data})
	return true
}

func (n *recordingNotifier) BroadcastToCollege(collegeID int64, event string, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcasts = append(n.broadcasts, pushed{target: collegeID, event: event, data: data})
}

func fileHeader(name, contentType string) *multipart.FileHeader {
	fh := &multipart.FileHeader{Filename: name, Header: make(map[string][]string)}
	fh.Header.Set("Content-Type", contentType)
	return fh
}
