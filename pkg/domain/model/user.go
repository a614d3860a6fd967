package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("user with this email already exists")
	ErrUserInactive = errors.New("user is deactivated")
)

type User struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type UserRepository interface {
	NextID() (uuid.UUID, error)
	Create(user *User) error // ErrEmailTaken on a duplicate email
	Find(id uuid.UUID) (*User, error)
	FindByEmail(email string) (*User, error)
	Update(user *User) error
}

type PasswordManager interface {
	Hash(plainTextPassword string) (string, error)
	Verify(plainTextPassword, hashedPassword string) bool
}

// TokenManager issues and decodes access tokens. Decode returns the token
// subject (the user id) when the token is valid and not expired.
type TokenManager interface {
	Issue(subject string) (string, error)
	Decode(token string) (string, error)
}
