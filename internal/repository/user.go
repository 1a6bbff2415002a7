package repository

import (
	"context"
	"errors"
	"github.com/ZertGraf/bugtracker/internal/domain"
	"github.com/ZertGraf/bugtracker/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
	"strings"
)

type UserRepo struct {
	db     DB
	logger *logger.Logger
}

func NewUserRepo(db DB, logger *logger.Logger) *UserRepo {
	return &UserRepo{
		db:     db,
		logger: logger.Component("repository/user"),
	}
}

const userColumns = `user_id, email, username, first_name, last_name, user_type`

// Create inserts a user; a duplicate email (case-insensitive) yields ErrUserExists.
func (r *UserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (email, username, first_name, last_name, user_type, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id
	`

	email := strings.ToLower(user.Email)
	err := r.db.QueryRow(ctx, query,
		email,
		user.Username,
		user.FirstName,
		user.LastName,
		user.UserType,
		user.PasswordHash,
	).Scan(&user.UserID)

	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, domain.ErrUserExists
		}
		r.logger.Error("insert user failed", "error", err)
		return nil, domain.NewStorageError("insert user", err)
	}

	user.Email = email
	return user, nil
}

// GetByEmail returns the user together with its password hash.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `, password_hash
		FROM users
		WHERE lower(email) = $1
	`

	var user domain.User
	err := r.db.QueryRow(ctx, query, strings.ToLower(email)).Scan(
		&user.UserID,
		&user.Email,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.UserType,
		&user.PasswordHash,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.NewStorageError("get user by email", err)
	}

	return &user, nil
}

func (r *UserRepo) GetPasswordHash(ctx context.Context, userID int64) (string, error) {
	var hash string
	err := r.db.QueryRow(ctx, `SELECT password_hash FROM users WHERE user_id = $1`, userID).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrUserNotFound
		}
		return "", domain.NewStorageError("get password hash", err)
	}
	return hash, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID int64, update domain.ProfileUpdate) (*domain.User, error) {
	query := `
		UPDATE users
		SET username = $1, first_name = $2, last_name = $3
		WHERE user_id = $4
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query,
		update.Username,
		update.FirstName,
		update.LastName,
		userID,
	))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		r.logger.Error("update profile failed", "user_id", userID, "error", err)
		return nil, domain.NewStorageError("update profile", err)
	}

	return user, nil
}

// UpdatePasswordHash swaps the hash only while oldHash is still the stored one.
// No rows affected means the credential changed underneath us.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID int64, newHash, oldHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1
		WHERE user_id = $2 AND password_hash = $3
	`

	result, err := r.db.Exec(ctx, query, newHash, userID, oldHash)
	if err != nil {
		r.logger.Error("update password failed", "user_id", userID, "error", err)
		return domain.NewStorageError("update password", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrIncorrectPassword
	}

	return nil
}

// List returns all users ordered by id; empty slice when there are none.
func (r *UserRepo) List(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY user_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, domain.NewStorageError("query users", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, domain.NewStorageError("scan user", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("iterate users", err)
	}

	return users, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.UserID,
		&user.Email,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.UserType,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
