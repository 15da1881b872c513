package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	mu   sync.Mutex
	rows map[string]struct {
		data      *Data
		expiresAt time.Time
	}
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]struct {
		data      *Data
		expiresAt time.Time
	})}
}

func (s *memStore) Get(_ context.Context, sid string) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[sid]
	if !ok || time.Now().After(row.expiresAt) {
		return nil, ErrNoSession
	}
	return row.data, nil
}

func (s *memStore) Put(_ context.Context, sid string, data *Data, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[sid] = struct {
		data      *Data
		expiresAt time.Time
	}{data, expiresAt}
	return nil
}

func (s *memStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, sid)
	return nil
}

func TestManagerSaveLoadRoundTrip(t *testing.T) {
	m := NewManager(newMemStore(), time.Hour, false)

	rr := httptest.NewRecorder()
	want := &Data{DirectAdminUser: &Principal{ID: "u1", Email: "a@b.c"}}
	sid, err := m.Save(context.Background(), rr, "", want)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if sid == "" {
		t.Fatal("expected generated sid")
	}

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("expected session cookie, got %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	gotSID, data, err := m.Load(req)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if gotSID != sid {
		t.Fatalf("sid mismatch: %q vs %q", gotSID, sid)
	}
	p := data.Principal()
	if p == nil || p.ID != "u1" || p.Email != "a@b.c" {
		t.Fatalf("principal mismatch: %+v", p)
	}
}

func TestManagerLoadNoCookie(t *testing.T) {
	m := NewManager(newMemStore(), time.Hour, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, _, err := m.Load(req); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestManagerDestroyIsIdempotent(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, time.Hour, false)

	rr := httptest.NewRecorder()
	sid, err := m.Save(context.Background(), rr, "", &Data{DirectAdminUser: &Principal{ID: "u1"}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: sid})

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		if err := m.Destroy(context.Background(), rr, req); err != nil {
			t.Fatalf("Destroy #%d: %v", i+1, err)
		}
		cleared := rr.Result().Cookies()
		if len(cleared) != 1 || cleared[0].MaxAge != -1 {
			t.Fatalf("Destroy #%d: expected expired cookie, got %v", i+1, cleared)
		}
	}
}

func TestDataPrincipalShapes(t *testing.T) {
	if p := (&Data{}).Principal(); p != nil {
		t.Fatalf("empty session yielded principal %+v", p)
	}

	direct := &Data{DirectAdminUser: &Principal{ID: "admin-1"}}
	if p := direct.Principal(); p == nil || p.ID != "admin-1" {
		t.Fatalf("direct principal mismatch: %+v", p)
	}

	live := &Data{OIDCClaims: &OIDCClaims{Sub: "sub-1", Email: "x@y.z", ExpiresAt: time.Now().Add(time.Hour).Unix()}}
	if p := live.Principal(); p == nil || p.ID != "sub-1" {
		t.Fatalf("oidc principal mismatch: %+v", p)
	}

	expired := &Data{OIDCClaims: &OIDCClaims{Sub: "sub-1", ExpiresAt: time.Now().Add(-time.Minute).Unix()}}
	if p := expired.Principal(); p != nil {
		t.Fatalf("expired claims yielded principal %+v", p)
	}

	noSub := &Data{OIDCClaims: &OIDCClaims{Email: "x@y.z"}}
	if p := noSub.Principal(); p != nil {
		t.Fatalf("claims without sub yielded principal %+v", p)
	}
}
