package domain

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrEmailInvalid       = errors.New("email address is invalid")
	ErrEmailTaken         = errors.New("email address is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
)

type User struct {
	ID           string
	Email        Email
	PasswordHash string
}

// NewUser creates a registered user. The password hash must already be
// produced by the credential service; plaintext never reaches the entity.
func NewUser(email Email, passwordHash string) *User {
	return &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
	}
}
