package repository

import (
	"context"
	"github.com/ZertGraf/bugtracker/internal/domain"
	"github.com/google/uuid"
	"time"
)

// UserRepository persists accounts and credentials.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetPasswordHash(ctx context.Context, userID int64) (string, error)
	UpdateProfile(ctx context.Context, userID int64, update domain.ProfileUpdate) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, newHash, oldHash string) error
	List(ctx context.Context) ([]*domain.User, error)
}

// BugRepository persists bug records.
type BugRepository interface {
	Create(ctx context.Context, bug *domain.Bug) (*domain.Bug, error)
	SearchByName(ctx context.Context, substring string) ([]*domain.Bug, error)
	List(ctx context.Context) ([]*domain.Bug, error)
}

// SessionRepository persists login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
	Replace(ctx context.Context, oldSessionID uuid.UUID, session *domain.Session) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
