package user

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Service contains business logic for user management.
type Service struct {
	repo *Repository
}

// NewService creates a new user Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetByID returns a user by id.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail returns a user by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// UpsertFromLogin creates or refreshes a user row from a federated login.
func (s *Service) UpsertFromLogin(ctx context.Context, id, email string, firstName, lastName, profileImageURL *string) (*User, error) {
	u, err := s.repo.Upsert(ctx, id, email, firstName, lastName, profileImageURL)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

// SeedAdmin ensures an admin account exists with the given password.
// The password is stored as a bcrypt hash, never in the clear.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	u, err := s.repo.SeedAdmin(ctx, email, string(hash))
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	return u, nil
}

// VerifyPassword compares a candidate password with the stored hash.
func VerifyPassword(u *User, password string) bool {
	if u == nil || u.AdminPasswordHash == nil || *u.AdminPasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*u.AdminPasswordHash), []byte(password)) == nil
}

// IsNotFound returns true when the error indicates a user was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
