package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidReference   = errors.New("referenced record does not exist")
	ErrUserExists         = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIncorrectPassword  = errors.New("old password is incorrect")
	ErrUnauthenticated    = errors.New("no user is logged in")
	ErrSessionNotFound    = errors.New("session not found or expired")

	// ErrStorage matches every *StorageError.
	ErrStorage = errors.New("storage failure")
)

// StorageError wraps a driver or connection failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
