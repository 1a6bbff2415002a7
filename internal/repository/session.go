package repository

import (
	"context"
	"errors"
	"github.com/ZertGraf/bugtracker/internal/domain"
	"github.com/ZertGraf/bugtracker/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"time"
)

type SessionRepo struct {
	db     DB
	logger *logger.Logger
}

func NewSessionRepo(db DB, logger *logger.Logger) *SessionRepo {
	return &SessionRepo{
		db:     db,
		logger: logger.Component("repository/session"),
	}
}

const insertSessionQuery = `
	INSERT INTO sessions (session_id, user_id, created_at, expires_at)
	VALUES ($1, $2, $3, $4)
`

func (r *SessionRepo) Create(ctx context.Context, session *domain.Session) error {
	_, err := r.db.Exec(ctx, insertSessionQuery,
		session.SessionID, session.UserID, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return domain.ErrUserNotFound
		}
		return domain.NewStorageError("insert session", err)
	}
	return nil
}

// Get returns a live session; expired rows are reported as ErrSessionNotFound.
func (r *SessionRepo) Get(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT session_id, user_id, created_at, expires_at
		FROM sessions
		WHERE session_id = $1 AND expires_at > NOW()
	`

	var session domain.Session
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.SessionID,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.NewStorageError("get session", err)
	}

	return &session, nil
}

func (r *SessionRepo) Delete(ctx context.Context, sessionID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return domain.NewStorageError("delete session", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Replace revokes oldSessionID and stores session in one transaction.
// A missing old session is not an error.
func (r *SessionRepo) Replace(ctx context.Context, oldSessionID uuid.UUID, session *domain.Session) error {
	err := withTx(ctx, r.db, r.logger, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, oldSessionID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, insertSessionQuery,
			session.SessionID, session.UserID, session.CreatedAt, session.ExpiresAt)
		return err
	})
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return domain.ErrUserNotFound
		}
		return domain.NewStorageError("replace session", err)
	}
	return nil
}

func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, domain.NewStorageError("delete expired sessions", err)
	}
	return result.RowsAffected(), nil
}
