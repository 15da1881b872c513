package content

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestInputValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      interface{ Validate() error }
		wantErr bool
	}{
		{"service ok", &ServiceInput{Title: "Cloud", Slug: "cloud", Description: "d"}, false},
		{"service missing title", &ServiceInput{Slug: "cloud", Description: "d"}, true},
		{"service bad slug", &ServiceInput{Title: "Cloud", Slug: "Cloud Stuff", Description: "d"}, true},
		{"service slug trailing dash", &ServiceInput{Title: "Cloud", Slug: "cloud-", Description: "d"}, true},
		{"service missing description", &ServiceInput{Title: "Cloud", Slug: "cloud"}, true},
		{"case study ok", &CaseStudyInput{Title: "T", Slug: "t", Summary: "s"}, false},
		{"case study missing summary", &CaseStudyInput{Title: "T", Slug: "t"}, true},
		{"testimonial ok", &TestimonialInput{AuthorName: "Ada", Quote: "Great"}, false},
		{"testimonial missing quote", &TestimonialInput{AuthorName: "Ada"}, true},
		{"team member ok", &TeamMemberInput{Name: "Ada", Role: "Engineer"}, false},
		{"team member bad email", &TeamMemberInput{Name: "Ada", Role: "Engineer", Email: strPtr("nope")}, true},
		{"team member empty email ok", &TeamMemberInput{Name: "Ada", Role: "Engineer", Email: strPtr("")}, false},
		{"client ok", &ClientInput{Name: "Acme"}, false},
		{"client missing name", &ClientInput{}, true},
		{"technology bad slug", &TechnologyInput{Name: "Go", Slug: "Go!"}, true},
		{"category ok", &CategoryInput{Name: "Web", Slug: "web"}, false},
		{"category uppercase slug", &CategoryInput{Name: "Web", Slug: "Web"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestPublishedDefaultsToTrue(t *testing.T) {
	f := false
	if !(&ServiceInput{}).published() {
		t.Fatal("nil published must default to true")
	}
	if (&ServiceInput{Published: &f}).published() {
		t.Fatal("explicit false must stick")
	}
}

// Handlers must answer 400 before touching the repository; the nil repo
// guarantees a panic if they do not.
func TestCreateRejectsInvalidInputBeforeRepository(t *testing.T) {
	h := NewHandler(nil)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		body    string
	}{
		{"service malformed json", h.CreateService, `{`},
		{"service bad slug", h.CreateService, `{"title":"T","slug":"Not A Slug","description":"d"}`},
		{"case study missing title", h.CreateCaseStudy, `{"slug":"x","summary":"s"}`},
		{"testimonial missing author", h.CreateTestimonial, `{"quote":"q"}`},
		{"team member missing role", h.CreateTeamMember, `{"name":"Ada"}`},
		{"client missing name", h.CreateClient, `{}`},
		{"technology bad slug", h.CreateTechnology, `{"name":"Go","slug":"Go!"}`},
		{"category missing slug", h.CreateCategory, `{"name":"Web"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			tt.handler(rr, req)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
}
