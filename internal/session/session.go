// Package session implements server-side sessions backed by Postgres.
// A session is an opaque id handed to the browser in a cookie; the payload
// lives in the sessions table and holds exactly one of two principal shapes:
// a direct-admin user or a set of OIDC claims.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
)

// CookieName is the session cookie set on login.
const CookieName = "pt_session"

// ErrNoSession is returned when no live session exists for the given id.
var ErrNoSession = errors.New("session not found")

// Principal identifies an authenticated user, regardless of which
// auth strategy produced it.
type Principal struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// OIDCClaims is the subset of ID-token claims the service keeps in the session.
type OIDCClaims struct {
	Sub             string `json:"sub"`
	Email           string `json:"email,omitempty"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
	ExpiresAt       int64  `json:"exp,omitempty"`
}

// Data is the serialized session payload. Exactly one of DirectAdminUser or
// OIDCClaims is set for an authenticated session; OAuthState is transient
// state for the OIDC login round trip.
type Data struct {
	DirectAdminUser *Principal  `json:"directAdminUser,omitempty"`
	OIDCClaims      *OIDCClaims `json:"oidcClaims,omitempty"`
	OAuthState      string      `json:"oauthState,omitempty"`
}

// Principal returns the authenticated principal held by the session, or nil.
func (d *Data) Principal() *Principal {
	if d == nil {
		return nil
	}
	if d.DirectAdminUser != nil {
		return d.DirectAdminUser
	}
	if c := d.OIDCClaims; c != nil && c.Sub != "" {
		if c.ExpiresAt != 0 && time.Now().Unix() > c.ExpiresAt {
			return nil
		}
		return &Principal{
			ID:              c.Sub,
			Email:           c.Email,
			FirstName:       c.FirstName,
			LastName:        c.LastName,
			ProfileImageURL: c.ProfileImageURL,
		}
	}
	return nil
}

// Store persists session payloads keyed by opaque id.
type Store interface {
	Get(ctx context.Context, sid string) (*Data, error)
	Put(ctx context.Context, sid string, data *Data, expiresAt time.Time) error
	Delete(ctx context.Context, sid string) error
}

// Manager ties a Store to the session cookie.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
}

// NewManager creates a Manager. secure controls the cookie Secure flag.
func NewManager(store Store, ttl time.Duration, secure bool) *Manager {
	return &Manager{store: store, ttl: ttl, secure: secure}
}

// Load reads the session referenced by the request cookie.
// Returns ErrNoSession when the cookie is absent or the session is gone.
func (m *Manager) Load(r *http.Request) (string, *Data, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", nil, ErrNoSession
	}
	data, err := m.store.Get(r.Context(), c.Value)
	if err != nil {
		return "", nil, err
	}
	return c.Value, data, nil
}

// Save persists data under sid and refreshes the cookie. An empty sid
// allocates a fresh session id.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, sid string, data *Data) (string, error) {
	if sid == "" {
		sid = newSID()
	}
	if err := m.store.Put(ctx, sid, data, time.Now().Add(m.ttl)); err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sid, nil
}

// Destroy deletes the session (if any) and expires the cookie. Deleting an
// absent session is not an error; logout must be idempotent.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var err error
	if c, cerr := r.Cookie(CookieName); cerr == nil && c.Value != "" {
		err = m.store.Delete(ctx, c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return err
}

// newSID returns an opaque, unguessable session id: a ULID prefix for
// chronological ordering in the table plus 16 random bytes.
func newSID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return ulid.Make().String() + "." + hex.EncodeToString(buf)
}
