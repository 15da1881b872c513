package auth

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pitetris/backend/internal/session"
	"github.com/pitetris/backend/internal/user"
)

// memStore is an in-memory session.Store for tests.
type memStore struct {
	mu   sync.Mutex
	rows map[string]*session.Data
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]*session.Data)}
}

func (s *memStore) Get(_ context.Context, sid string) (*session.Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.rows[sid]
	if !ok {
		return nil, session.ErrNoSession
	}
	return d, nil
}

func (s *memStore) Put(_ context.Context, sid string, data *session.Data, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[sid] = data
	return nil
}

func (s *memStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, sid)
	return nil
}

// fakeDirectory is an in-memory UserDirectory.
type fakeDirectory struct {
	byID    map[string]*user.User
	byEmail map[string]*user.User
}

func (f *fakeDirectory) GetByID(_ context.Context, id string) (*user.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (f *fakeDirectory) GetByEmail(_ context.Context, email string) (*user.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (f *fakeDirectory) IsNotFound(err error) bool { return err == user.ErrNotFound }

func hashOf(t *testing.T, password string) *string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	s := string(h)
	return &s
}

func adminFixture(t *testing.T, password string) *user.User {
	return &user.User{
		ID:                "admin-1",
		Email:             "admin@pitetris.com",
		IsAdmin:           true,
		AdminPasswordHash: hashOf(t, password),
	}
}

func newSessions(store session.Store) *session.Manager {
	return session.NewManager(store, time.Hour, false)
}

func loginBody(email, password string) *bytes.Buffer {
	return bytes.NewBufferString(`{"email":"` + email + `","password":"` + password + `"}`)
}

func TestDirectLoginSuccess(t *testing.T) {
	admin := adminFixture(t, "hunter2xx")
	dir := &fakeDirectory{
		byID:    map[string]*user.User{admin.ID: admin},
		byEmail: map[string]*user.User{admin.Email: admin},
	}
	store := newMemStore()
	s := NewDirectStrategy(newSessions(store), dir)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", loginBody(admin.Email, "hunter2xx"))
	rr := httptest.NewRecorder()
	s.handleLogin(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != session.CookieName {
		t.Fatalf("expected session cookie, got %v", cookies)
	}
	saved, err := store.Get(context.Background(), cookies[0].Value)
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if saved.DirectAdminUser == nil || saved.DirectAdminUser.ID != admin.ID {
		t.Fatalf("session payload mismatch: %+v", saved)
	}
}

func TestDirectLoginRejectsBadCredentials(t *testing.T) {
	admin := adminFixture(t, "correct-password")
	dir := &fakeDirectory{
		byID:    map[string]*user.User{admin.ID: admin},
		byEmail: map[string]*user.User{admin.Email: admin},
	}
	s := NewDirectStrategy(newSessions(newMemStore()), dir)

	tests := []struct {
		name string
		body *bytes.Buffer
		want int
	}{
		{"wrong password", loginBody(admin.Email, "wrong"), http.StatusUnauthorized},
		{"unknown email", loginBody("nobody@pitetris.com", "correct-password"), http.StatusUnauthorized},
		{"missing password", loginBody(admin.Email, ""), http.StatusBadRequest},
		{"malformed body", bytes.NewBufferString("{"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/login", tt.body)
			rr := httptest.NewRecorder()
			s.handleLogin(rr, req)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
			if len(rr.Result().Cookies()) != 0 {
				t.Fatal("no cookie may be set on failed login")
			}
		})
	}
}

func TestDirectLoginRejectsNonAdmin(t *testing.T) {
	u := &user.User{
		ID:                "user-1",
		Email:             "user@pitetris.com",
		IsAdmin:           false,
		AdminPasswordHash: hashOf(t, "pw"),
	}
	dir := &fakeDirectory{
		byID:    map[string]*user.User{u.ID: u},
		byEmail: map[string]*user.User{u.Email: u},
	}
	s := NewDirectStrategy(newSessions(newMemStore()), dir)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", loginBody(u.Email, "pw"))
	rr := httptest.NewRecorder()
	s.handleLogin(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-admin, got %d", rr.Code)
	}
}

func TestIsAuthenticatedGate(t *testing.T) {
	store := newMemStore()
	sessions := newSessions(store)
	s := NewDirectStrategy(sessions, &fakeDirectory{})

	var gotPrincipal *session.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrincipal, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	gate := s.IsAuthenticated(next)

	// No cookie: 401, never a silent pass-through.
	rr := httptest.NewRecorder()
	gate.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/user", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rr.Code)
	}

	// Live session: passes with principal in context.
	saveRR := httptest.NewRecorder()
	sid, err := sessions.Save(context.Background(), saveRR, "", &session.Data{
		DirectAdminUser: &session.Principal{ID: "admin-1", Email: "admin@pitetris.com"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sid})
	rr = httptest.NewRecorder()
	gate.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with session, got %d", rr.Code)
	}
	if gotPrincipal == nil || gotPrincipal.ID != "admin-1" {
		t.Fatalf("principal not injected: %+v", gotPrincipal)
	}
}

func TestRequireAdmin(t *testing.T) {
	admin := &user.User{ID: "admin-1", Email: "a@b.c", IsAdmin: true}
	mortal := &user.User{ID: "user-1", Email: "u@b.c", IsAdmin: false}
	dir := &fakeDirectory{byID: map[string]*user.User{admin.ID: admin, mortal.ID: mortal}}

	gate := RequireAdmin(dir)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name      string
		principal *session.Principal
		want      int
	}{
		{"admin passes", &session.Principal{ID: "admin-1"}, http.StatusOK},
		{"non-admin forbidden", &session.Principal{ID: "user-1"}, http.StatusForbidden},
		{"missing row forbidden", &session.Principal{ID: "ghost"}, http.StatusForbidden},
		{"no principal unauthorized", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/services", nil)
			if tt.principal != nil {
				req = req.WithContext(ContextWithPrincipal(req.Context(), tt.principal))
			}
			rr := httptest.NewRecorder()
			gate.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	sessions := newSessions(newMemStore())
	h := NewHandler(sessions)

	rr := httptest.NewRecorder()
	sid, err := sessions.Save(context.Background(), rr, "", &session.Data{
		DirectAdminUser: &session.Principal{ID: "admin-1"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sid})
		rr := httptest.NewRecorder()
		h.Logout(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("logout #%d: expected 200, got %d", i+1, rr.Code)
		}
	}
}

func TestCurrentUser(t *testing.T) {
	h := NewHandler(newSessions(newMemStore()))

	rr := httptest.NewRecorder()
	h.CurrentUser(rr, httptest.NewRequest(http.MethodGet, "/api/auth/user", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), &session.Principal{ID: "admin-1", Email: "a@b.c"}))
	rr = httptest.NewRecorder()
	h.CurrentUser(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
