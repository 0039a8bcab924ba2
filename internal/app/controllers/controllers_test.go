package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/models/dto"
	"github.com/campusconnect/backend/internal/app/services"
	"github.com/campusconnect/backend/internal/middleware"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for the auth middleware
func asUser(userID, collegeID int64, role models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextCollegeID, collegeID)
		c.Set(middleware.ContextRoleType, string(role))
		c.Next()
	}
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func doJSON(r http.Handler, method, path string, body *bytes.Reader) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type multipartFile struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, files ...multipartFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeResponse(t, w)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected an error object in %s", w.Body.String())
	return errObj["code"].(string)
}

// --- auth ---

type stubAuth struct {
	AuthService
	signup func(*dto.SignupRequest, *multipart.FileHeader) (*models.User, error)
	login  func(*dto.LoginRequest) (*dto.AuthResponse, error)
	logout []string
}

func (s *stubAuth) Signup(_ context.Context, req *dto.SignupRequest, image *multipart.FileHeader) (*models.User, error) {
	return s.signup(req, image)
}

func (s *stubAuth) Login(_ context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	return s.login(req)
}

func (s *stubAuth) DirectorLogin(_ context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	return nil, apperrors.NewCustomError(apperrors.ErrUnauthorized, "Invalid credentials")
}

func (s *stubAuth) Logout(_ context.Context, token string) error {
	s.logout = append(s.logout, token)
	return nil
}

func authRouter(svc AuthService) *gin.Engine {
	c := NewAuthController(svc, CookieConfig{Name: "auth_token", MaxAge: time.Hour}, zerolog.Nop())
	r := gin.New()
	r.POST("/auth/signup", c.Signup)
	r.POST("/auth/login", c.Login)
	r.POST("/auth/director/login", c.DirectorLogin)
	r.POST("/auth/logout", c.Logout)
	return r
}

func TestSignupMultipart(t *testing.T) {
	var gotImage *multipart.FileHeader
	svc := &stubAuth{signup: func(req *dto.SignupRequest, image *multipart.FileHeader) (*models.User, error) {
		gotImage = image
		return &models.User{ID: 5, Name: req.Name, Email: req.Email, Role: models.RoleStudent, CollegeID: 1}, nil
	}}

	req := multipartRequest(t, http.MethodPost, "/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@campus.edu", "password": "secret1", "college": "MIT",
	}, multipartFile{field: "image", name: "me.png", data: []byte("png")})
	w := httptest.NewRecorder()
	authRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, gotImage)
	assert.Equal(t, "me.png", gotImage.Filename)
	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, "Ada", data["name"])
}

func TestSignupMissingFields(t *testing.T) {
	svc := &stubAuth{signup: func(*dto.SignupRequest, *multipart.FileHeader) (*models.User, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}

	req := multipartRequest(t, http.MethodPost, "/auth/signup", map[string]string{"name": "Ada"})
	w := httptest.NewRecorder()
	authRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(dto.ErrorCodeValidationFailed), errorCode(t, w))
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := &stubAuth{signup: func(*dto.SignupRequest, *multipart.FileHeader) (*models.User, error) {
		return nil, apperrors.ErrEmailAlreadyExists
	}}

	req := multipartRequest(t, http.MethodPost, "/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@campus.edu", "password": "secret1", "college": "MIT",
	})
	w := httptest.NewRecorder()
	authRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "User already exists")
}

func TestLoginSetsHTTPOnlyCookie(t *testing.T) {
	svc := &stubAuth{login: func(req *dto.LoginRequest) (*dto.AuthResponse, error) {
		return &dto.AuthResponse{Token: dto.TokenResponse{AccessToken: "jwt-value", TokenType: "Bearer"}}, nil
	}}

	w := doJSON(authRouter(svc), http.MethodPost, "/auth/login", jsonBody(t, dto.LoginRequest{Email: "a@b.edu", Password: "pw"}))

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.Equal(t, "jwt-value", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, 3600, cookies[0].MaxAge)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuth{login: func(*dto.LoginRequest) (*dto.AuthResponse, error) {
		return nil, apperrors.ErrInvalidCredentials
	}}

	w := doJSON(authRouter(svc), http.MethodPost, "/auth/login", jsonBody(t, dto.LoginRequest{Email: "a@b.edu", Password: "bad"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
	assert.Empty(t, w.Result().Cookies())
}

func TestDirectorLoginRejectsOthers(t *testing.T) {
	w := doJSON(authRouter(&stubAuth{}), http.MethodPost, "/auth/director/login", jsonBody(t, dto.LoginRequest{Email: "a@b.edu", Password: "pw"}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, string(dto.ErrorCodeUnauthorized), errorCode(t, w))
	assert.Contains(t, w.Body.String(), "Invalid credentials")
	assert.NotContains(t, w.Body.String(), "Directors only")
}

func TestLogoutClearsCookie(t *testing.T) {
	svc := &stubAuth{}
	w := doJSON(authRouter(svc), http.MethodPost, "/auth/logout", jsonBody(t, dto.LogoutRequest{RefreshToken: "rt"}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"rt"}, svc.logout)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

// --- feed ---

type stubFeed struct {
	FeedService
	files    []*multipart.FileHeader
	editErr  error
	reaction models.ReactionKind
}

func (s *stubFeed) ReactComment(_ context.Context, actor services.Actor, commentID int64, kind models.ReactionKind) (*models.FeedComment, bool, error) {
	if commentID == 404 {
		return nil, false, apperrors.ErrCommentNotFound
	}
	s.reaction = kind
	return &models.FeedComment{ID: commentID, FeedID: 2, UserID: 9, Comment: "nice", Likes: 1}, true, nil
}

func (s *stubFeed) CreateFeed(_ context.Context, actor services.Actor, req *dto.FeedRequest, files []*multipart.FileHeader) (*models.Feed, error) {
	s.files = files
	return &models.Feed{ID: 1, Title: req.Title, Content: req.Content, CollegeID: actor.CollegeID, CreatedBy: actor.UserID}, nil
}

func (s *stubFeed) EditPost(context.Context, services.Actor, int64, *dto.FeedRequest, []*multipart.FileHeader) (*models.Feed, error) {
	return nil, s.editErr
}

func (s *stubFeed) GetPost(_ context.Context, id int64) (*models.Feed, error) {
	return nil, apperrors.ErrFeedNotFound
}

func feedRouter(svc FeedService) *gin.Engine {
	c := NewFeedController(svc, zerolog.Nop())
	r := gin.New()
	r.Use(asUser(7, 3, models.RoleStudent))
	r.POST("/feeds", c.CreateFeed)
	r.GET("/feeds/:id", c.GetPost)
	r.PATCH("/feeds/:id", c.EditPost)
	r.POST("/feeds/comments/:commentId/reactions", c.ReactComment)
	return r
}

func TestCreateFeedPassesImages(t *testing.T) {
	svc := &stubFeed{}
	req := multipartRequest(t, http.MethodPost, "/feeds", map[string]string{"title": "Hackathon", "content": "Friday"},
		multipartFile{field: "images", name: "a.png", data: []byte("a")},
		multipartFile{field: "images", name: "b.mp4", data: []byte("b")},
	)
	w := httptest.NewRecorder()
	feedRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, svc.files, 2)
	assert.Equal(t, "a.png", svc.files[0].Filename)
	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, "Hackathon", data["title"])
	assert.Equal(t, []any{}, data["media"])
}

func TestEditPostForbiddenForNonAuthor(t *testing.T) {
	svc := &stubFeed{editErr: apperrors.NewForbiddenError("Only the author can edit this post")}
	req := multipartRequest(t, http.MethodPatch, "/feeds/4", map[string]string{"title": "x", "content": "y"})
	w := httptest.NewRecorder()
	feedRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, string(dto.ErrorCodeForbidden), errorCode(t, w))
}

func TestGetPostBadAndMissingID(t *testing.T) {
	r := feedRouter(&stubFeed{})

	w := doJSON(r, http.MethodGet, "/feeds/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/feeds/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReactComment(t *testing.T) {
	svc := &stubFeed{}
	r := feedRouter(svc)

	w := doJSON(r, http.MethodPost, "/feeds/comments/5/reactions", jsonBody(t, map[string]string{"kind": "like"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.ReactionLike, svc.reaction)
	body := decodeResponse(t, w)
	assert.Equal(t, "Reaction added", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["likes"])
	assert.Equal(t, float64(0), data["dislikes"])

	w = doJSON(r, http.MethodPost, "/feeds/comments/5/reactions", jsonBody(t, map[string]string{"kind": "love"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/feeds/comments/404/reactions", jsonBody(t, map[string]string{"kind": "dislike"}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- messages ---

type stubMessages struct {
	MessageService
	variant string
	sent    string
}

func (s *stubMessages) Send(_ context.Context, actor services.Actor, receiverID int64, content string) (*models.Message, error) {
	s.sent = content
	return &models.Message{ID: 1, SenderID: actor.UserID, ReceiverID: receiverID, Content: content, RoomID: models.RoomID(actor.UserID, receiverID)}, nil
}

func (s *stubMessages) GetConnections(_ context.Context, _ services.Actor, variant string) ([]*dto.ConnectionResponse, error) {
	s.variant = variant
	return []*dto.ConnectionResponse{{RoomID: "7_9", Label: "messaged"}}, nil
}

func messageRouter(svc MessageService) *gin.Engine {
	c := NewMessageController(svc, zerolog.Nop())
	r := gin.New()
	r.Use(asUser(9, 3, models.RoleStudent))
	r.POST("/messages/:userId", c.SendMessage)
	r.GET("/connections", c.GetConnections)
	return r
}

func TestSendMessageREST(t *testing.T) {
	svc := &stubMessages{}
	w := doJSON(messageRouter(svc), http.MethodPost, "/messages/7", jsonBody(t, dto.SendMessageRequest{Content: "hi"}))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "hi", svc.sent)
	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, "7_9", data["roomId"])
}

func TestConnectionsVariantValidation(t *testing.T) {
	svc := &stubMessages{}
	r := messageRouter(svc)

	w := doJSON(r, http.MethodGet, "/connections?variant=alumni", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alumni", svc.variant)

	w = doJSON(r, http.MethodGet, "/connections?variant=everyone", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- directors ---

type stubDirector struct {
	DirectorService
	removeErr error
}

func (s *stubDirector) RemoveUser(_ context.Context, _ services.Actor, req *dto.RemoveUserRequest) (*dto.RemoveUserResponse, error) {
	if s.removeErr != nil {
		return nil, s.removeErr
	}
	return &dto.RemoveUserResponse{Message: "User removed successfully", RemovedUserID: req.UserID, Reason: req.Reason}, nil
}

func TestRemoveUserResponses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"removed", nil, http.StatusOK},
		{"missing id", apperrors.NewBadRequestError("User ID is required"), http.StatusBadRequest},
		{"other campus", apperrors.NewForbiddenError("User belongs to another campus"), http.StatusForbidden},
		{"not found", apperrors.ErrUserNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewDirectorController(&stubDirector{removeErr: tc.err}, zerolog.Nop())
			r := gin.New()
			r.Use(asUser(1, 3, models.RoleDirector))
			r.POST("/directors/remove-user", c.RemoveUser)

			w := doJSON(r, http.MethodPost, "/directors/remove-user", jsonBody(t, dto.RemoveUserRequest{UserID: 4, Reason: "spam"}))
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

// --- bounties ---

type stubBounty struct {
	BountyService
	active *bool
}

func (s *stubBounty) ApplyBounty(context.Context, services.Actor, int64, *dto.ApplyBountyRequest) (*models.Participation, error) {
	return nil, apperrors.NewCustomError(apperrors.ErrAlreadyParticipant, "Already in a team for this bounty")
}

func (s *stubBounty) MyParticipations(_ context.Context, _ services.Actor, activeOnly bool) ([]*models.Participation, error) {
	s.active = &activeOnly
	return []*models.Participation{{ID: 1, BountyID: 2, TeamName: "A", Members: []*models.User{{ID: 9, Name: "Ada"}}}}, nil
}

func TestBountyEndpoints(t *testing.T) {
	svc := &stubBounty{}
	c := NewBountyController(svc, zerolog.Nop())
	r := gin.New()
	r.Use(asUser(9, 3, models.RoleStudent))
	r.POST("/bounties/:id/apply", c.ApplyBounty)
	r.GET("/bounties/participations/me", c.MyParticipations)

	w := doJSON(r, http.MethodPost, "/bounties/2/apply", jsonBody(t, dto.ApplyBountyRequest{TeamName: "A"}))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/bounties/2/apply", jsonBody(t, map[string]any{}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/bounties/participations/me?active=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.active)
	assert.True(t, *svc.active)
	assert.True(t, strings.Contains(w.Body.String(), `"teamName":"A"`))
}

// --- misc ---

func TestActorRequired(t *testing.T) {
	c := NewUserController(nil, zerolog.Nop())
	r := gin.New()
	r.GET("/users/me", c.GetProfile)

	w := doJSON(r, http.MethodGet, "/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealth(t *testing.T) {
	ok := NewHealthController(map[string]HealthCheck{"database": func(context.Context) error { return nil }})
	down := NewHealthController(map[string]HealthCheck{"redis": func(context.Context) error { return assert.AnError }})

	r := gin.New()
	r.GET("/ok", ok.Health)
	r.GET("/down", down.Health)
	r.GET("/ping", ok.Ping)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/ok", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, doJSON(r, http.MethodGet, "/down", nil).Code)
	assert.Contains(t, doJSON(r, http.MethodGet, "/ping", nil).Body.String(), "pong")
}
