package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/ccarlsson/todo-app/internal/auth"
	"github.com/ccarlsson/todo-app/internal/domain"
	"github.com/ccarlsson/todo-app/internal/repository"
	"github.com/ccarlsson/todo-app/internal/validation"
)

type AuthUsecase struct {
	users    repository.UserRepository
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenService
	pipeline *validation.Pipeline
}

func NewAuthUsecase(users repository.UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenService, pipeline *validation.Pipeline) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		pipeline: pipeline,
	}
}

type RegisterInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// AuthToken is the result of a successful login. ExpiresIn is in seconds.
type AuthToken struct {
	Token     string
	ExpiresIn int
}

// Register normalizes the email, enforces one user per normalized address,
// hashes the password and persists the new user.
func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := u.pipeline.Check(input); err != nil {
		return nil, err
	}

	email, err := domain.NewEmail(input.Email)
	if err != nil {
		return nil, err
	}

	_, err = u.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, domain.ErrEmailTaken
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := u.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.NewUser(email, hash)
	if _, err := u.users.Create(ctx, user); err != nil {
		// The store may detect a concurrent registration the existence
		// check above missed.
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies the credentials and issues a session token. A missing user
// and a wrong password are indistinguishable to the caller so account
// existence never leaks.
func (u *AuthUsecase) Login(ctx context.Context, input LoginInput) (*AuthToken, error) {
	if err := u.pipeline.Check(input); err != nil {
		return nil, err
	}

	email, err := domain.NewEmail(input.Email)
	if err != nil {
		return nil, err
	}

	user, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !u.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresIn, err := u.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthToken{Token: token, ExpiresIn: expiresIn}, nil
}
