package services

import (
	"context"
	"testing"
	"time"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/models/dto"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc      *AuthService
	users    *fakeUsers
	colleges *fakeColleges
	tokens   *fakeTokens
	jwt      *auth.JWTService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:    newFakeUsers(),
		colleges: newFakeColleges(),
		tokens:   newFakeTokens(),
		jwt: auth.NewJWTService(auth.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenExp:  time.Hour,
			RefreshTokenExp: 24 * time.Hour,
			TokenIssuer:     "campusconnect-test",
		}),
	}
	f.svc = NewAuthService(f.users, f.colleges, f.tokens, f.jwt, &fakeUploader{}, zerolog.Nop())
	f.svc.hashPassword = fastHash
	return f
}

func signupRequest(email string) *dto.SignupRequest {
	return &dto.SignupRequest{
		Name:     "Ada",
		Email:    email,
		Password: "secret1",
		College:  "North Campus",
	}
}

func TestSignupCreatesUserCollegeAndInfo(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user, err := f.svc.Signup(ctx, signupRequest("Ada@Campus.test"), nil)
	require.NoError(t, err)

	assert.Equal(t, "ada@campus.test", user.Email)
	assert.Equal(t, models.RoleStudent, user.Role)
	require.NotNil(t, user.College)
	assert.Equal(t, "North Campus", user.College.Name)
	require.NotNil(t, user.UserInfoID)
	assert.NotEqual(t, "secret1", user.Password)
	assert.True(t, auth.CheckPassword(user.Password, "secret1"))

	// a second signup at the same college reuses it
	other, err := f.svc.Signup(ctx, signupRequest("grace@campus.test"), nil)
	require.NoError(t, err)
	assert.Equal(t, user.CollegeID, other.CollegeID)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, signupRequest("ada@campus.test"), nil)
	require.NoError(t, err)

	_, err = f.svc.Signup(ctx, signupRequest("ada@campus.test"), nil)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestSignupValidation(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, &dto.SignupRequest{Email: "x@campus.test"}, nil)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	req := signupRequest("boss@campus.test")
	req.Role = string(models.RoleDirector)
	_, err = f.svc.Signup(ctx, req, nil)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	req.Role = "Wizard"
	_, err = f.svc.Signup(ctx, req, nil)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestSignupProfileImage(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	req := signupRequest("url@campus.test")
	req.ImageURL = "https://cdn.test/me.png"
	user, err := f.svc.Signup(ctx, req, fileHeader("ignored.png", "image/png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/me.png", user.ProfileImage)

	user, err = f.svc.Signup(ctx, signupRequest("upload@campus.test"), fileHeader("me.png", "image/png"))
	require.NoError(t, err)
	assert.Contains(t, user.ProfileImage, "profiles/")
}

func TestSignupAlumniGetsDetails(t *testing.T) {
	f := newAuthFixture()

	req := signupRequest("alum@campus.test")
	req.Role = string(models.RoleAlumni)
	req.Company = "Initech"
	req.GraduationYear = 2019

	user, err := f.svc.Signup(context.Background(), req, nil)
	require.NoError(t, err)
	require.NotNil(t, user.AlumniDetails)
	assert.Equal(t, "Initech", user.AlumniDetails.Company)
	assert.Equal(t, 2019, user.AlumniDetails.GraduationYear)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	_, err := f.svc.Signup(ctx, signupRequest("ada@campus.test"), nil)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "ada@campus.test", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "nobody@campus.test", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "", Password: ""})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	resp, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "ada@campus.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	require.NotNil(t, resp.User.College)

	claims, err := f.jwt.ValidateToken(resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, resp.User.CollegeID, claims.CollegeID)

	_, err = f.tokens.GetToken(ctx, resp.Token.RefreshToken)
	assert.NoError(t, err)
}

func TestDirectorLoginRequiresDirectorRole(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	_, err := f.svc.Signup(ctx, signupRequest("ada@campus.test"), nil)
	require.NoError(t, err)

	_, err = f.svc.DirectorLogin(ctx, &dto.LoginRequest{Email: "ada@campus.test", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)

	hash, err := fastHash("boss-pass")
	require.NoError(t, err)
	director := f.users.addDirector("boss", 1, models.DefaultDirectorPermissions())
	f.users.users[director.ID].Password = hash

	resp, err := f.svc.DirectorLogin(ctx, &dto.LoginRequest{Email: director.Email, Password: "boss-pass"})
	require.NoError(t, err)
	assert.NotNil(t, resp.User.DirectorDetails)
}

func TestDirectorLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	_, err := f.svc.Signup(ctx, signupRequest("ada@campus.test"), nil)
	require.NoError(t, err)

	attempts := map[string]*dto.LoginRequest{
		"unknown email":            {Email: "nobody@campus.test", Password: "secret1"},
		"wrong password":           {Email: "ada@campus.test", Password: "wrong-pass"},
		"non-director right creds": {Email: "ada@campus.test", Password: "secret1"},
	}
	var messages []string
	for name, req := range attempts {
		_, err := f.svc.DirectorLogin(ctx, req)
		require.ErrorIs(t, err, apperrors.ErrUnauthorized, name)
		var custom *apperrors.CustomError
		require.ErrorAs(t, err, &custom, name)
		messages = append(messages, custom.Message)
	}
	assert.Equal(t, []string{"Invalid credentials", "Invalid credentials", "Invalid credentials"}, messages)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	_, err := f.svc.Signup(ctx, signupRequest("ada@campus.test"), nil)
	require.NoError(t, err)
	first, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "ada@campus.test", Password: "secret1"})
	require.NoError(t, err)

	second, err := f.svc.Refresh(ctx, first.Token.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token.RefreshToken, second.Token.RefreshToken)

	_, err = f.svc.Refresh(ctx, first.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestLogoutRevokesAndIgnoresUnknownTokens(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	_, err := f.svc.Signup(ctx, signupRequest("ada@campus.test"), nil)
	require.NoError(t, err)
	resp, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "ada@campus.test", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, resp.Token.RefreshToken))
	_, err = f.tokens.GetToken(ctx, resp.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	assert.NoError(t, f.svc.Logout(ctx, "unknown"))
	assert.NoError(t, f.svc.Logout(ctx, ""))
}
