package domain

type User struct {
	UserID       int64
	Email        string
	Username     string
	FirstName    string
	LastName     string
	UserType     string
	PasswordHash string // bcrypt, never leaves the service layer
}

// NewUser carries registration input; Password is plaintext until hashed by the service.
type NewUser struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
	UserType  string
}

type ProfileUpdate struct {
	Username  string
	FirstName string
	LastName  string
}
