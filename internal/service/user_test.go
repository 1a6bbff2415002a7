package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ZertGraf/bugtracker/internal/domain"
	"github.com/ZertGraf/bugtracker/internal/pkg/auth"
	"github.com/ZertGraf/bugtracker/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userFixture struct {
	svc      *UserService
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	tokens   *auth.TokenIssuer
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenIssuer(&auth.TokenConfig{
		Secret: "test-secret-0123456789",
		Issuer: "bugtracker-test",
		TTL:    time.Hour,
	})
	require.NoError(t, err)

	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	return &userFixture{
		svc:      NewUserService(users, sessions, hasher, tokens, logger.Discard()),
		users:    users,
		sessions: sessions,
		tokens:   tokens,
	}
}

func (f *userFixture) register(t *testing.T, email, password string) *domain.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), domain.NewUser{
		Email:     email,
		Password:  password,
		Username:  "tester",
		FirstName: "Test",
		LastName:  "User",
		UserType:  "developer",
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	f := newUserFixture(t)

	user := f.register(t, "Ann@Example.com", "s3cret")

	assert.NotZero(t, user.UserID)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.NotEqual(t, "s3cret", f.users.hash(user.UserID))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(f.users.hash(user.UserID)), []byte("s3cret")))
}

func TestRegister_DuplicateEmailIgnoresCase(t *testing.T) {
	f := newUserFixture(t)
	f.register(t, "ann@example.com", "s3cret")

	_, err := f.svc.Register(context.Background(), domain.NewUser{
		Email: "ANN@example.com", Password: "other", Username: "ann2",
		FirstName: "Ann", LastName: "Two", UserType: "tester",
	})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	users, err := f.svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRegister_Validation(t *testing.T) {
	f := newUserFixture(t)

	tests := []struct {
		name  string
		input domain.NewUser
	}{
		{"missing email", domain.NewUser{Password: "pw", Username: "u"}},
		{"malformed email", domain.NewUser{Email: "not-an-email", Password: "pw", Username: "u"}},
		{"missing password", domain.NewUser{Email: "a@example.com", Username: "u"}},
		{"missing username", domain.NewUser{Email: "a@example.com", Password: "pw"}},
		{"missing user type", domain.NewUser{Email: "a@example.com", Password: "pw", Username: "u", FirstName: "A", LastName: "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	f := newUserFixture(t)
	registered := f.register(t, "ann@example.com", "s3cret")

	user, err := f.svc.Authenticate(context.Background(), "ANN@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, user.UserID)
	assert.Empty(t, user.PasswordHash)

	_, err = f.svc.Authenticate(context.Background(), "ann@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.svc.Authenticate(context.Background(), "ghost@example.com", "s3cret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticate_StorageFailure(t *testing.T) {
	f := newUserFixture(t)
	f.users.err = domain.NewStorageError("get user by email", errors.New("conn refused"))

	_, err := f.svc.Authenticate(context.Background(), "ann@example.com", "s3cret")
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_IssuesTokenForStoredSession(t *testing.T) {
	f := newUserFixture(t)
	user := f.register(t, "ann@example.com", "s3cret")

	res, err := f.svc.Login(context.Background(), "ann@example.com", "s3cret", uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, res.User.UserID)
	assert.True(t, f.sessions.has(res.Session.SessionID))

	claims, err := f.tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, claims.UserID)
	assert.Equal(t, res.Session.SessionID, claims.SessionID)

	session, err := f.svc.Authorize(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, session.UserID)
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	f := newUserFixture(t)
	f.register(t, "ann@example.com", "s3cret")
	f.register(t, "bob@example.com", "hunter2")

	first, err := f.svc.Login(context.Background(), "ann@example.com", "s3cret", uuid.Nil)
	require.NoError(t, err)

	second, err := f.svc.Login(context.Background(), "bob@example.com", "hunter2", first.Session.SessionID)
	require.NoError(t, err)

	assert.False(t, f.sessions.has(first.Session.SessionID))
	assert.True(t, f.sessions.has(second.Session.SessionID))
	assert.Equal(t, 1, f.sessions.count())

	_, err = f.svc.Authorize(context.Background(), first.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestLogin_FailureKeepsExistingSession(t *testing.T) {
	f := newUserFixture(t)
	f.register(t, "ann@example.com", "s3cret")

	first, err := f.svc.Login(context.Background(), "ann@example.com", "s3cret", uuid.Nil)
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), "ann@example.com", "wrong", first.Session.SessionID)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	assert.True(t, f.sessions.has(first.Session.SessionID))
	_, err = f.svc.Authorize(context.Background(), first.Token)
	assert.NoError(t, err)
}

func TestLogout(t *testing.T) {
	f := newUserFixture(t)
	f.register(t, "ann@example.com", "s3cret")

	res, err := f.svc.Login(context.Background(), "ann@example.com", "s3cret", uuid.Nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), res.Session.SessionID))

	_, err = f.svc.Authorize(context.Background(), res.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	err = f.svc.Logout(context.Background(), res.Session.SessionID)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthorize_RejectsBadTokens(t *testing.T) {
	f := newUserFixture(t)
	user := f.register(t, "ann@example.com", "s3cret")

	_, err := f.svc.Authorize(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = f.svc.Authorize(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	// signed correctly but no session row behind it
	orphan, err := f.tokens.Issue(user.UserID, uuid.New(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = f.svc.Authorize(context.Background(), orphan)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthorize_RejectsMismatchedSubject(t *testing.T) {
	f := newUserFixture(t)
	f.register(t, "ann@example.com", "s3cret")

	res, err := f.svc.Login(context.Background(), "ann@example.com", "s3cret", uuid.Nil)
	require.NoError(t, err)

	forged, err := f.tokens.Issue(res.User.UserID+1, res.Session.SessionID, res.Session.ExpiresAt)
	require.NoError(t, err)

	_, err = f.svc.Authorize(context.Background(), forged)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestChangePassword(t *testing.T) {
	f := newUserFixture(t)
	user := f.register(t, "ann@example.com", "old-pass")

	require.NoError(t, f.svc.ChangePassword(context.Background(), user.UserID, "old-pass", "new-pass"))

	_, err := f.svc.Authenticate(context.Background(), "ann@example.com", "new-pass")
	assert.NoError(t, err)
	_, err = f.svc.Authenticate(context.Background(), "ann@example.com", "old-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	ok, err := f.svc.VerifyPassword(context.Background(), user.UserID, "new-pass")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChangePassword_WrongOldPasswordKeepsHash(t *testing.T) {
	f := newUserFixture(t)
	user := f.register(t, "ann@example.com", "old-pass")
	before := f.users.hash(user.UserID)

	err := f.svc.ChangePassword(context.Background(), user.UserID, "not-it", "new-pass")
	assert.ErrorIs(t, err, domain.ErrIncorrectPassword)
	assert.Equal(t, before, f.users.hash(user.UserID))

	ok, err := f.svc.VerifyPassword(context.Background(), user.UserID, "old-pass")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPassword(t *testing.T) {
	f := newUserFixture(t)
	user := f.register(t, "ann@example.com", "old-pass")

	ok, err := f.svc.VerifyPassword(context.Background(), user.UserID, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.VerifyPassword(context.Background(), user.UserID+100, "old-pass")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestChangePassword_UnknownUser(t *testing.T) {
	f := newUserFixture(t)

	err := f.svc.ChangePassword(context.Background(), 42, "old-pass", "new-pass")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestChangePassword_EmptyNewPassword(t *testing.T) {
	f := newUserFixture(t)
	user := f.register(t, "ann@example.com", "old-pass")

	err := f.svc.ChangePassword(context.Background(), user.UserID, "old-pass", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateProfile(t *testing.T) {
	f := newUserFixture(t)
	user := f.register(t, "ann@example.com", "s3cret")

	updated, err := f.svc.UpdateProfile(context.Background(), user.UserID, domain.ProfileUpdate{
		Username: "annie", FirstName: "Annie", LastName: "Lee",
	})
	require.NoError(t, err)
	assert.Equal(t, "annie", updated.Username)
	assert.Equal(t, "ann@example.com", updated.Email)

	_, err = f.svc.UpdateProfile(context.Background(), 999, domain.ProfileUpdate{Username: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = f.svc.UpdateProfile(context.Background(), user.UserID, domain.ProfileUpdate{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
