package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/models/dto"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/presence"
	"github.com/campusconnect/backend/internal/pkg/worker"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture() (*UserService, *fakeUsers, *fakeTokens) {
	users := newFakeUsers()
	tokens := newFakeTokens()
	colleges := newFakeColleges()
	_, _ = colleges.FindOrCreate(context.Background(), "North Campus")
	return NewUserService(users, colleges, tokens, newFakeFeeds(), &fakeUploader{}, &recordingCleaner{}, nil, zerolog.Nop()), users, tokens
}

func TestUpdateProfile(t *testing.T) {
	svc, users, _ := newUserFixture()
	ctx := context.Background()
	u := users.add("ada", models.RoleStudent, 1)

	got, err := svc.UpdateProfile(ctx, u.ID, &dto.UpdateProfileRequest{Name: " Ada L. "}, fileHeader("me.png", "image/png"))
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)
	assert.Contains(t, got.ProfileImage, "profiles/")
	require.NotNil(t, got.College)

	got, err = svc.UpdateProfile(ctx, u.ID, &dto.UpdateProfileRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)
}

func TestSkillsHaveSetSemantics(t *testing.T) {
	svc, users, _ := newUserFixture()
	ctx := context.Background()
	u := users.add("ada", models.RoleStudent, 1)

	_, err := svc.AddSkill(ctx, u.ID, "go")
	require.NoError(t, err)
	info, err := svc.AddSkill(ctx, u.ID, "go")
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, info.Skills)

	info, err = svc.RemoveSkill(ctx, u.ID, "rust")
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, info.Skills)

	info, err = svc.RemoveSkill(ctx, u.ID, "go")
	require.NoError(t, err)
	assert.Empty(t, info.Skills)

	_, err = svc.AddSkill(ctx, u.ID, " ")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestProjectsAndInfo(t *testing.T) {
	svc, users, _ := newUserFixture()
	ctx := context.Background()
	u := users.add("ada", models.RoleStudent, 1)

	p, err := svc.AddProject(ctx, u.ID, &dto.ProjectRequest{Title: "Compiler", URL: "https://example.test"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)

	require.NoError(t, svc.RemoveProject(ctx, u.ID, p.ID))
	assert.ErrorIs(t, svc.RemoveProject(ctx, u.ID, p.ID), apperrors.ErrResourceNotFound)

	bio := "Hello"
	links := []models.Link{{Label: "site", URL: "https://ada.test"}}
	info, err := svc.UpdateUserInfo(ctx, u.ID, &dto.UpdateUserInfoRequest{Bio: &bio, Links: &links})
	require.NoError(t, err)
	assert.Equal(t, "Hello", info.Bio)
	assert.Equal(t, links, info.Links)

	profile, err := svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.UserInfo)
	assert.Equal(t, "Hello", profile.UserInfo.Bio)
}

func TestAlumniDetailsUpsert(t *testing.T) {
	svc, users, _ := newUserFixture()
	ctx := context.Background()
	alum := users.add("alum", models.RoleAlumni, 1)
	student := users.add("stu", models.RoleStudent, 1)

	_, err := svc.GetAlumniDetails(ctx, actorOf(student))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.GetAlumniDetails(ctx, actorOf(alum))
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	company := "Initech"
	d, err := svc.UpsertAlumniDetails(ctx, actorOf(alum), &dto.AlumniDetailsRequest{Company: &company})
	require.NoError(t, err)
	assert.Equal(t, "Initech", d.Company)

	year := 2020
	d, err = svc.UpsertAlumniDetails(ctx, actorOf(alum), &dto.AlumniDetailsRequest{GraduationYear: &year})
	require.NoError(t, err)
	assert.Equal(t, "Initech", d.Company)
	assert.Equal(t, 2020, d.GraduationYear)

	got, err := svc.GetAlumniDetails(ctx, actorOf(alum))
	require.NoError(t, err)
	assert.Equal(t, 2020, got.GraduationYear)
}

func TestDeactivate(t *testing.T) {
	svc, users, tokens := newUserFixture()
	ctx := context.Background()
	u := users.add("ada", models.RoleStudent, 1)

	require.NoError(t, svc.Deactivate(ctx, u.ID))
	assert.Equal(t, []int64{u.ID}, tokens.revoked)
	_, err := svc.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestDeactivateCleansAuthoredMedia(t *testing.T) {
	svc, users, _ := newUserFixture()
	feeds := svc.feedRepo.(*fakeFeeds)
	cleaner := svc.cleaner.(*recordingCleaner)
	ctx := context.Background()
	u := users.add("ada", models.RoleStudent, 1)
	other := users.add("bob", models.RoleStudent, 1)

	require.NoError(t, feeds.Create(ctx, &models.Feed{CreatedBy: u.ID, CollegeID: 1, Media: []models.Media{
		{URL: "/u/a.png", Kind: models.MediaKindImage, Key: "feeds/a.png"},
		{URL: "/u/b.mp4", Kind: models.MediaKindVideo, Key: "feeds/b.mp4"},
	}}))
	require.NoError(t, feeds.Create(ctx, &models.Feed{CreatedBy: u.ID, CollegeID: 1, Media: []models.Media{
		{URL: "/u/c.png", Kind: models.MediaKindImage, Key: "feeds/c.png"},
	}}))
	require.NoError(t, feeds.Create(ctx, &models.Feed{CreatedBy: other.ID, CollegeID: 1, Media: []models.Media{
		{URL: "/u/keep.png", Kind: models.MediaKindImage, Key: "feeds/keep.png"},
	}}))

	require.NoError(t, svc.Deactivate(ctx, u.ID))
	assert.ElementsMatch(t, []string{"feeds/a.png", "feeds/b.mp4", "feeds/c.png"}, cleaner.keys)
}

func TestDeactivateUnknownUserKeepsMedia(t *testing.T) {
	svc, _, _ := newUserFixture()
	cleaner := svc.cleaner.(*recordingCleaner)
	feeds := svc.feedRepo.(*fakeFeeds)
	ctx := context.Background()
	require.NoError(t, feeds.Create(ctx, &models.Feed{CreatedBy: 404, CollegeID: 1, Media: []models.Media{
		{URL: "/u/a.png", Kind: models.MediaKindImage, Key: "feeds/a.png"},
	}}))

	assert.ErrorIs(t, svc.Deactivate(ctx, 404), apperrors.ErrUserNotFound)
	assert.Empty(t, cleaner.keys)
}

func TestGetUserAppliesPresenceMirror(t *testing.T) {
	svc, users, _ := newUserFixture()
	ctx := context.Background()
	store := presence.NewMemoryStore()
	svc.presence = NewPresenceService(users, store, zerolog.Nop())
	u := users.add("ada", models.RoleStudent, 1)

	// never seen by the mirror: stored flags stay
	got, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOnline)
	assert.Nil(t, got.LastSeen)

	require.NoError(t, store.SetOnline(ctx, u.ID))
	got, err = svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOnline)

	left := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.SetOffline(ctx, u.ID, left))
	got, err = svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOnline)
	require.NotNil(t, got.LastSeen)
	assert.True(t, left.Equal(*got.LastSeen))

	svc.presence = failingPresence{}
	got, err = svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestPresenceServiceMirrorsTransitions(t *testing.T) {
	users := newFakeUsers()
	store := presence.NewMemoryStore()
	svc := NewPresenceService(users, store, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, svc.SetOnline(ctx, 7))
	assert.True(t, users.presence[7])
	online, err := store.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, online)

	require.NoError(t, svc.SetOffline(ctx, 7, time.Now()))
	assert.False(t, users.presence[7])
	online, err = store.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, online)

	require.NoError(t, svc.SetOnline(ctx, 8))
	require.NoError(t, svc.Reset(ctx))
	online, err = store.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, online)
}

type fakeDistributor struct {
	payloads []*worker.PayloadDeleteMedia
	err      error
}

func (d *fakeDistributor) DistributeTaskDeleteMedia(_ context.Context, p *worker.PayloadDeleteMedia, _ ...asynq.Option) error {
	if d.err != nil {
		return d.err
	}
	d.payloads = append(d.payloads, p)
	return nil
}

func (d *fakeDistributor) Close() error { return nil }

func TestQueuedMediaCleaner(t *testing.T) {
	media := []models.Media{{Key: "a"}, {Key: ""}, {Key: "b"}}
	ctx := context.Background()

	dist := &fakeDistributor{}
	fallback := &recordingCleaner{}
	cleaner := NewQueuedMediaCleaner(dist, fallback, zerolog.Nop())

	cleaner.Clean(ctx, media, "feed 1 deleted")
	require.Len(t, dist.payloads, 1)
	assert.Equal(t, []string{"a", "b"}, dist.payloads[0].Keys)
	assert.Empty(t, fallback.keys)

	cleaner.Clean(ctx, nil, "nothing")
	assert.Len(t, dist.payloads, 1)

	dist.err = errors.New("redis down")
	cleaner.Clean(ctx, media, "feed 2 deleted")
	assert.Equal(t, []string{"a", "b"}, fallback.keys)
}
