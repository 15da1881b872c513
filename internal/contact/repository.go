// Package contact receives and manages contact-form submissions.
package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Submission is a stored contact-form entry.
type Submission struct {
	ID        string    `json:"id"`
	Reference string    `json:"reference"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   *string   `json:"company,omitempty"`
	Budget    *string   `json:"budget,omitempty"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrNotFound is returned when a submission does not exist.
var ErrNotFound = errors.New("submission not found")

const submissionColumns = `id, reference, name, email, company, budget, message, read, created_at`

// Repository handles submission persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new contact Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanSubmission(row pgx.Row) (*Submission, error) {
	s := &Submission{}
	err := row.Scan(&s.ID, &s.Reference, &s.Name, &s.Email, &s.Company, &s.Budget,
		&s.Message, &s.Read, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a submission and returns the stored record.
func (r *Repository) Create(ctx context.Context, s *Submission) (*Submission, error) {
	created, err := scanSubmission(r.db.QueryRow(ctx,
		`INSERT INTO contact_submissions (reference, name, email, company, budget, message)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+submissionColumns,
		s.Reference, s.Name, s.Email, s.Company, s.Budget, s.Message))
	if err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	return created, nil
}

// List returns submissions, newest first.
func (r *Repository) List(ctx context.Context) ([]*Submission, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+submissionColumns+` FROM contact_submissions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []*Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("list submissions: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MarkRead flags a submission as handled.
func (r *Repository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE contact_submissions SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark submission read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a submission.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM contact_submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
