package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ZertGraf/bugtracker/internal/domain"
	"github.com/google/uuid"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}

	email := strings.ToLower(user.Email)
	for _, u := range r.users {
		if u.Email == email {
			return nil, domain.ErrUserExists
		}
	}

	r.nextID++
	stored := *user
	stored.UserID = r.nextID
	stored.Email = email
	r.users[stored.UserID] = stored

	out := stored
	return &out, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			out := u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetPasswordHash(_ context.Context, userID int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return u.PasswordHash, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, userID int64, update domain.ProfileUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Username = update.Username
	u.FirstName = update.FirstName
	u.LastName = update.LastName
	r.users[userID] = u

	u.PasswordHash = ""
	return &u, nil
}

func (r *fakeUserRepo) UpdatePasswordHash(_ context.Context, userID int64, newHash, oldHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.PasswordHash != oldHash {
		return domain.ErrIncorrectPassword
	}
	u.PasswordHash = newHash
	r.users[userID] = u
	return nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.User{}
	for id := int64(1); id <= r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			u.PasswordHash = ""
			out = append(out, &u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) hash(userID int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[userID].PasswordHash
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]domain.Session
	err      error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[uuid.UUID]domain.Session{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sessions[s.SessionID] = *s
	return nil
}

func (r *fakeSessionRepo) Get(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Expired(time.Now()) {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) Replace(_ context.Context, oldID uuid.UUID, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	delete(r.sessions, oldID)
	r.sessions[s.SessionID] = *s
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) has(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	return ok
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type fakeBugRepo struct {
	mu     sync.Mutex
	nextID int64
	bugs   []domain.Bug
	err    error
}

func (r *fakeBugRepo) Create(_ context.Context, bug *domain.Bug) (*domain.Bug, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	bug.BugID = r.nextID
	r.bugs = append(r.bugs, *bug)
	return bug, nil
}

func (r *fakeBugRepo) SearchByName(_ context.Context, substring string) ([]*domain.Bug, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []*domain.Bug{}
	for _, b := range r.bugs {
		if strings.Contains(strings.ToLower(b.BugName), strings.ToLower(substring)) {
			bug := b
			out = append(out, &bug)
		}
	}
	return out, nil
}

func (r *fakeBugRepo) List(_ context.Context) ([]*domain.Bug, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []*domain.Bug{}
	for _, b := range r.bugs {
		bug := b
		out = append(out, &bug)
	}
	return out, nil
}
