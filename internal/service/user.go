package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/ZertGraf/bugtracker/internal/domain"
	"github.com/ZertGraf/bugtracker/internal/pkg/auth"
	"github.com/ZertGraf/bugtracker/internal/pkg/logger"
	"github.com/ZertGraf/bugtracker/internal/repository"
	. "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"time"
)

// bcrypt ignores input past 72 bytes
const maxPasswordLength = 72

type UserService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenIssuer
	logger   *logger.Logger
	now      func() time.Time
}

func NewUserService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenIssuer,
	logger *logger.Logger,
) *UserService {
	return &UserService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger.Component("service/user"),
		now:      time.Now,
	}
}

// LoginResult is what a client receives after a successful login.
type LoginResult struct {
	User    *domain.User
	Session *domain.Session
	Token   string
}

func (s *UserService) Register(ctx context.Context, input domain.NewUser) (*domain.User, error) {
	if err := validateNewUser(&input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &domain.User{
		Email:        input.Email,
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		UserType:     input.UserType,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	s.logger.Info("user registered",
		"user_id", user.UserID,
		"user_type", user.UserType,
	)

	return user, nil
}

// Authenticate returns the user owning email if password matches.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Burn(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// Login authenticates and opens a session. When previous identifies a live
// session it is replaced by the new one; on failure nothing changes.
func (s *UserService) Login(ctx context.Context, email, password string, previous uuid.UUID) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session := &domain.Session{
		SessionID: uuid.New(),
		UserID:    user.UserID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokens.TTL()),
	}

	token, err := s.tokens.Issue(session.UserID, session.SessionID, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	if previous != uuid.Nil {
		err = s.sessions.Replace(ctx, previous, session)
	} else {
		err = s.sessions.Create(ctx, session)
	}
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.logger.Info("user logged in",
		"user_id", user.UserID,
		"replaced_session", previous != uuid.Nil,
	)

	return &LoginResult{User: user, Session: session, Token: token}, nil
}

func (s *UserService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrUnauthenticated
		}
		return fmt.Errorf("delete session: %w", err)
	}

	s.logger.Info("user logged out", "session_id", sessionID)
	return nil
}

// Authorize resolves a token to its live session.
func (s *UserService) Authorize(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.logger.Debug("rejected token", "error", err)
		return nil, domain.ErrUnauthenticated
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.UserID != claims.UserID || session.Expired(s.now()) {
		return nil, domain.ErrUnauthenticated
	}

	return session, nil
}

func (s *UserService) VerifyPassword(ctx context.Context, userID int64, password string) (bool, error) {
	_, ok, err := s.checkPassword(ctx, userID, password)
	return ok, err
}

// checkPassword compares password with the stored hash and returns that hash.
func (s *UserService) checkPassword(ctx context.Context, userID int64, password string) (string, bool, error) {
	hash, err := s.users.GetPasswordHash(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("get password hash: %w", err)
	}

	ok, err := s.hasher.Verify(hash, password)
	if err != nil {
		return "", false, err
	}
	return hash, ok, nil
}

// ChangePassword replaces the password only when oldPassword is current.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	err := Validate(newPassword, Required, Length(1, maxPasswordLength))
	if err != nil {
		return fmt.Errorf("%w: new password: %v", domain.ErrValidation, err)
	}

	oldHash, ok, err := s.checkPassword(ctx, userID, oldPassword)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("password change rejected", "user_id", userID)
		return domain.ErrIncorrectPassword
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, newHash, oldHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, update domain.ProfileUpdate) (*domain.User, error) {
	err := ValidateStruct(&update,
		Field(&update.Username, Required, Length(1, 255)),
		Field(&update.FirstName, Length(0, 255)),
		Field(&update.LastName, Length(0, 255)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info("profile updated", "user_id", userID)
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func validateNewUser(u *domain.NewUser) error {
	return ValidateStruct(u,
		Field(&u.Email, Required, Length(1, 255), is.Email),
		Field(&u.Password, Required, Length(1, maxPasswordLength)),
		Field(&u.Username, Required, Length(1, 255)),
		Field(&u.FirstName, Required, Length(1, 255)),
		Field(&u.LastName, Required, Length(1, 255)),
		Field(&u.UserType, Required, Length(1, 32)),
	)
}
