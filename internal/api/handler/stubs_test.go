package handler

import (
	"context"
	"time"

	"github.com/ZertGraf/bugtracker/internal/domain"
	"github.com/ZertGraf/bugtracker/internal/service"
	"github.com/google/uuid"
)

type stubUserService struct {
	registered    *domain.NewUser
	registerErr   error
	loginPrevious uuid.UUID
	loginErr      error
	loggedOut     uuid.UUID
	logoutErr     error
	changed       [3]any
	changeErr     error
	profile       *domain.ProfileUpdate
	profileErr    error
	users         []*domain.User
	listErr       error
}

func (s *stubUserService) Register(_ context.Context, input domain.NewUser) (*domain.User, error) {
	s.registered = &input
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &domain.User{UserID: 1, Email: input.Email}, nil
}

func (s *stubUserService) Login(_ context.Context, email, _ string, previous uuid.UUID) (*service.LoginResult, error) {
	s.loginPrevious = previous
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &service.LoginResult{
		User: &domain.User{
			UserID: 7, Email: email, Username: "ann", FirstName: "Ann", LastName: "Lee", UserType: "tester",
		},
		Session: &domain.Session{SessionID: uuid.New(), UserID: 7, ExpiresAt: time.Now().Add(time.Hour)},
		Token:   "signed-token",
	}, nil
}

func (s *stubUserService) Logout(_ context.Context, sessionID uuid.UUID) error {
	s.loggedOut = sessionID
	return s.logoutErr
}

func (s *stubUserService) ChangePassword(_ context.Context, userID int64, oldPassword, newPassword string) error {
	s.changed = [3]any{userID, oldPassword, newPassword}
	return s.changeErr
}

func (s *stubUserService) UpdateProfile(_ context.Context, userID int64, update domain.ProfileUpdate) (*domain.User, error) {
	s.profile = &update
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return &domain.User{UserID: userID, Username: update.Username}, nil
}

func (s *stubUserService) ListUsers(context.Context) ([]*domain.User, error) {
	return s.users, s.listErr
}

type stubBugService struct {
	bugs      []*domain.Bug
	err       error
	query     string
	createdBy int64
	input     *domain.NewBug
}

func (s *stubBugService) Search(_ context.Context, substring string) ([]*domain.Bug, error) {
	s.query = substring
	return s.bugs, s.err
}

func (s *stubBugService) List(context.Context) ([]*domain.Bug, error) {
	return s.bugs, s.err
}

func (s *stubBugService) Create(_ context.Context, createdBy int64, input domain.NewBug) (*domain.Bug, error) {
	s.createdBy = createdBy
	s.input = &input
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Bug{BugID: 11}, nil
}
