package contact

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// SubmissionStore is the persistence surface the service needs.
type SubmissionStore interface {
	Create(ctx context.Context, s *Submission) (*Submission, error)
	List(ctx context.Context) ([]*Submission, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// Service contains the business logic for contact submissions.
type Service struct {
	store SubmissionStore
}

// NewService creates a new contact Service.
func NewService(store SubmissionStore) *Service {
	return &Service{store: store}
}

// Submit stores a new submission under a fresh reference code. The reference
// is a ULID so support staff can sort by it chronologically.
func (s *Service) Submit(ctx context.Context, sub *Submission) (*Submission, error) {
	sub.Reference = ulid.Make().String()
	created, err := s.store.Create(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	return created, nil
}

// List returns all submissions, newest first.
func (s *Service) List(ctx context.Context) ([]*Submission, error) {
	return s.store.List(ctx)
}

// MarkRead flags a submission as handled.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.store.MarkRead(ctx, id)
}

// Delete removes a submission.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// IsNotFound returns true when the error indicates a missing submission.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
