package contact

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// fakeStore records calls without touching a database.
type fakeStore struct {
	created []*Submission
}

func (f *fakeStore) Create(_ context.Context, s *Submission) (*Submission, error) {
	f.created = append(f.created, s)
	return s, nil
}

func (f *fakeStore) List(context.Context) ([]*Submission, error) { return nil, nil }
func (f *fakeStore) MarkRead(_ context.Context, id string) error {
	if id == "missing" {
		return ErrNotFound
	}
	return nil
}
func (f *fakeStore) Delete(context.Context, string) error { return nil }

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{"name":"Ada","email":"ada@example.com"}`},
		{"missing name", `{"email":"ada@example.com","message":"hello"}`},
		{"missing email", `{"name":"Ada","message":"hello"}`},
		{"bad email format", `{"name":"Ada","email":"not-an-email","message":"hello"}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			h := NewHandler(NewService(store))

			req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			h.Submit(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if len(store.created) != 0 {
				t.Fatal("no row may be created on validation failure")
			}
		})
	}
}

func TestSubmitStoresSubmission(t *testing.T) {
	store := &fakeStore{}
	h := NewHandler(NewService(store))

	body := `{"name":"Ada","email":"ada@example.com","message":"We need a ledger.","company":"Analytical Engines"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	h.Submit(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(store.created) != 1 {
		t.Fatalf("expected one stored submission, got %d", len(store.created))
	}
	got := store.created[0]
	if got.Reference == "" {
		t.Fatal("expected a generated reference code")
	}
	if got.Name != "Ada" || got.Message != "We need a ledger." {
		t.Fatalf("stored fields mismatch: %+v", got)
	}
}

func TestAdminMarkReadNotFound(t *testing.T) {
	h := NewHandler(NewService(&fakeStore{}))

	req := httptest.NewRequest(http.MethodPut, "/api/admin/contact-submissions/missing/read", nil)
	req = withURLParam(req, "id", "missing")
	rr := httptest.NewRecorder()
	h.AdminMarkRead(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
