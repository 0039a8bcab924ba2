package services

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/models/dto"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/filestorage"
	"github.com/campusconnect/backend/internal/pkg/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedFixture struct {
	svc      *FeedService
	feeds    *fakeFeeds
	uploader *fakeUploader
	cleaner  *recordingCleaner
	notifier *recordingNotifier
}

func newFeedFixture() *feedFixture {
	f := &feedFixture{
		feeds:    newFakeFeeds(),
		uploader: &fakeUploader{},
		cleaner:  &recordingCleaner{},
		notifier: &recordingNotifier{},
	}
	f.svc = NewFeedService(f.feeds, f.uploader, f.cleaner, f.notifier, zerolog.Nop())
	return f
}

var (
	author   = Actor{UserID: 1, CollegeID: 10, Role: models.RoleStudent}
	stranger = Actor{UserID: 2, CollegeID: 10, Role: models.RoleStudent}
)

func (f *feedFixture) post(t *testing.T, files ...*multipart.FileHeader) *models.Feed {
	t.Helper()
	feed, err := f.svc.CreateFeed(context.Background(), author, &dto.FeedRequest{Title: "Hello", Content: "World"}, files)
	require.NoError(t, err)
	return feed
}

func TestCreateFeedUploadsMediaAndAnnounces(t *testing.T) {
	f := newFeedFixture()

	feed := f.post(t, fileHeader("a.png", "image/png"), fileHeader("b.mp4", "video/mp4"))

	assert.Equal(t, int64(10), feed.CollegeID)
	assert.Equal(t, models.FeedTypeGeneral, feed.Type)
	require.Len(t, feed.Media, 2)
	assert.Equal(t, models.MediaKindImage, feed.Media[0].Kind)
	assert.Equal(t, models.MediaKindVideo, feed.Media[1].Kind)

	require.Len(t, f.notifier.broadcasts, 1)
	assert.Equal(t, int64(10), f.notifier.broadcasts[0].target)
	assert.Equal(t, websocket.EventNewPost, f.notifier.broadcasts[0].event)
}

func TestCreateFeedRejectsUnknownType(t *testing.T) {
	f := newFeedFixture()
	_, err := f.svc.CreateFeed(context.Background(), author, &dto.FeedRequest{Title: "t", Content: "c", Type: "meme"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestCreateFeedUnsupportedMediaIsBadRequest(t *testing.T) {
	f := newFeedFixture()
	f.uploader.fail = filestorage.ErrUnsupportedMedia

	_, err := f.svc.CreateFeed(context.Background(), author, &dto.FeedRequest{Title: "t", Content: "c"},
		[]*multipart.FileHeader{fileHeader("a.exe", "application/octet-stream")})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Empty(t, f.feeds.feeds)
}

func TestOnlyAuthorMayEditOrDelete(t *testing.T) {
	f := newFeedFixture()
	ctx := context.Background()
	feed := f.post(t)

	_, err := f.svc.EditPost(ctx, stranger, feed.ID, &dto.FeedRequest{Title: "x", Content: "y"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	err = f.svc.DeletePost(ctx, stranger, feed.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	err = f.svc.DeletePost(ctx, author, 999)
	assert.ErrorIs(t, err, apperrors.ErrFeedNotFound)
}

func TestEditPostReplacesAllMedia(t *testing.T) {
	f := newFeedFixture()
	ctx := context.Background()
	feed := f.post(t, fileHeader("a.png", "image/png"), fileHeader("b.png", "image/png"))
	oldKeys := mediaKeys(feed.Media)

	edited, err := f.svc.EditPost(ctx, author, feed.ID,
		&dto.FeedRequest{Title: "New", Content: "Body", Type: "event"},
		[]*multipart.FileHeader{fileHeader("c.png", "image/png")})
	require.NoError(t, err)

	assert.Equal(t, "New", edited.Title)
	assert.Equal(t, models.FeedTypeEvent, edited.Type)
	require.Len(t, edited.Media, 1)
	assert.ElementsMatch(t, oldKeys, f.cleaner.keys)
}

func TestDeletePostRemovesAllMedia(t *testing.T) {
	f := newFeedFixture()
	ctx := context.Background()
	feed := f.post(t, fileHeader("a.png", "image/png"), fileHeader("b.mp4", "video/mp4"))

	require.NoError(t, f.svc.DeletePost(ctx, author, feed.ID))

	assert.ElementsMatch(t, mediaKeys(feed.Media), f.cleaner.keys)
	_, err := f.svc.GetPost(ctx, feed.ID)
	assert.ErrorIs(t, err, apperrors.ErrFeedNotFound)
}

func TestGetPostsIsCollegeScoped(t *testing.T) {
	f := newFeedFixture()
	ctx := context.Background()
	f.post(t)
	f.post(t)
	_, err := f.svc.CreateFeed(ctx, Actor{UserID: 3, CollegeID: 20}, &dto.FeedRequest{Title: "t", Content: "c"}, nil)
	require.NoError(t, err)

	posts, err := f.svc.GetPosts(ctx, author, nil)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.True(t, posts[0].CreatedAt.After(posts[1].CreatedAt))
}

func TestReactToggles(t *testing.T) {
	f := newFeedFixture()
	ctx := context.Background()
	feed := f.post(t)

	got, active, err := f.svc.React(ctx, stranger, feed.ID, models.ReactionLike)
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, 1, got.Likes)

	got, active, err = f.svc.React(ctx, stranger, feed.ID, models.ReactionDislike)
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, 0, got.Likes)
	assert.Equal(t, 1, got.Dislikes)

	got, active, err = f.svc.React(ctx, stranger, feed.ID, models.ReactionDislike)
	require.NoError(t, err)
	assert.False(t, active)
	assert.Equal(t, 0, got.Dislikes)

	_, _, err = f.svc.React(ctx, stranger, feed.ID, "love")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestComments(t *testing.T) {
	f := newFeedFixture()
	ctx := context.Background()
	feed := f.post(t)

	c, err := f.svc.AddComment(ctx, stranger, feed.ID, " nice ")
	require.NoError(t, err)
	assert.Equal(t, "nice", c.Comment)

	_, err = f.svc.AddComment(ctx, stranger, 999, "x")
	assert.ErrorIs(t, err, apperrors.ErrFeedNotFound)

	list, err := f.svc.ListComments(ctx, feed.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, f.svc.DeleteComment(ctx, author, c.ID), apperrors.ErrPermissionDenied)
	require.NoError(t, f.svc.DeleteComment(ctx, stranger, c.ID))
	assert.ErrorIs(t, f.svc.DeleteComment(ctx, stranger, c.ID), apperrors.ErrCommentNotFound)
}

func TestReactCommentToggles(t *testing.T) {
	f := newFeedFixture()
	ctx := context.Background()
	feed := f.post(t)
	c, err := f.svc.AddComment(ctx, stranger, feed.ID, "first")
	require.NoError(t, err)

	got, active, err := f.svc.ReactComment(ctx, author, c.ID, models.ReactionLike)
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, 1, got.Likes)

	got, active, err = f.svc.ReactComment(ctx, stranger, c.ID, models.ReactionDislike)
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, 1, got.Dislikes)

	// switching kind replaces the reaction
	got, _, err = f.svc.ReactComment(ctx, author, c.ID, models.ReactionDislike)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Likes)
	assert.Equal(t, 2, got.Dislikes)

	got, active, err = f.svc.ReactComment(ctx, author, c.ID, models.ReactionDislike)
	require.NoError(t, err)
	assert.False(t, active)
	assert.Equal(t, 1, got.Dislikes)

	list, err := f.svc.ListComments(ctx, feed.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Dislikes)

	_, _, err = f.svc.ReactComment(ctx, author, 999, models.ReactionLike)
	assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)
	_, _, err = f.svc.ReactComment(ctx, author, c.ID, "love")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}
