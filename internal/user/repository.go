// Package user manages user accounts and their persistence.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User represents an account known to the CMS. Regular visitors never get a
// row; users exist only for people who can log in (admins, OIDC principals).
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       *string   `json:"firstName,omitempty"`
	LastName        *string   `json:"lastName,omitempty"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
	IsAdmin         bool      `json:"isAdmin"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	// AdminPasswordHash is the bcrypt hash backing direct admin login.
	// Never serialized.
	AdminPasswordHash *string `json:"-"`
}

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

const userColumns = `id, email, first_name, last_name, profile_image_url, is_admin, admin_password_hash, created_at, updated_at`

// Repository handles all user database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.ProfileImageURL,
		&u.IsAdmin, &u.AdminPasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// GetByID fetches a user by id.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail fetches a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Upsert creates the user on first login and refreshes profile fields and the
// updated_at timestamp on every subsequent login. When a different row already
// holds the email (a seeded admin logging in through the identity provider for
// the first time), that row adopts the federated id and keeps its admin flag.
func (r *Repository) Upsert(ctx context.Context, id, email string, firstName, lastName, profileImageURL *string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (id, email, first_name, last_name, profile_image_url)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		     email             = EXCLUDED.email,
		     first_name        = EXCLUDED.first_name,
		     last_name         = EXCLUDED.last_name,
		     profile_image_url = EXCLUDED.profile_image_url,
		     updated_at        = NOW()
		 RETURNING `+userColumns,
		id, email, firstName, lastName, profileImageURL))
	if err != nil && isUniqueViolation(err) {
		return scanUser(r.db.QueryRow(ctx,
			`UPDATE users SET
			     id                = $1,
			     first_name        = $3,
			     last_name         = $4,
			     profile_image_url = $5,
			     updated_at        = NOW()
			 WHERE email = $2
			 RETURNING `+userColumns,
			id, email, firstName, lastName, profileImageURL))
	}
	return u, err
}

// SeedAdmin upserts an admin account with the given bcrypt hash. Used at
// startup for the direct login strategy.
func (r *Repository) SeedAdmin(ctx context.Context, email, passwordHash string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (email, is_admin, admin_password_hash)
		 VALUES ($1, TRUE, $2)
		 ON CONFLICT (email) DO UPDATE SET
		     is_admin            = TRUE,
		     admin_password_hash = EXCLUDED.admin_password_hash,
		     updated_at          = NOW()
		 RETURNING `+userColumns,
		email, passwordHash))
}
