// Package content manages the CMS entities behind the public marketing site:
// services, case studies, testimonials, team members, clients, technologies
// and categories.
package content

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrNotFound is returned when a content record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrSlugTaken is returned when a unique slug or email collides.
var ErrSlugTaken = errors.New("identifier already in use")

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Service is a consultancy offering shown on the services page.
type Service struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Icon        *string   `json:"icon,omitempty"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ServiceInput is the write shape for services.
type ServiceInput struct {
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Icon        *string `json:"icon"`
	ImageURL    *string `json:"imageUrl"`
	SortOrder   int     `json:"sortOrder"`
	Published   *bool   `json:"published"`
}

// Validate reports the first invalid field, if any.
func (in *ServiceInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return errors.New("title is required")
	}
	if !slugRegex.MatchString(in.Slug) {
		return fmt.Errorf("slug must match %s", slugRegex.String())
	}
	if in.Description == "" {
		return errors.New("description is required")
	}
	return nil
}

func (in *ServiceInput) published() bool {
	return in.Published == nil || *in.Published
}

// CaseStudy is a portfolio entry.
type CaseStudy struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Summary    string    `json:"summary"`
	Body       string    `json:"body"`
	ClientName *string   `json:"clientName,omitempty"`
	ImageURL   *string   `json:"imageUrl,omitempty"`
	CategoryID *string   `json:"categoryId,omitempty"`
	Featured   bool      `json:"featured"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CaseStudyInput is the write shape for case studies.
type CaseStudyInput struct {
	Title      string  `json:"title"`
	Slug       string  `json:"slug"`
	Summary    string  `json:"summary"`
	Body       string  `json:"body"`
	ClientName *string `json:"clientName"`
	ImageURL   *string `json:"imageUrl"`
	CategoryID *string `json:"categoryId"`
	Featured   bool    `json:"featured"`
	Published  *bool   `json:"published"`
}

// Validate reports the first invalid field, if any.
func (in *CaseStudyInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Summary = strings.TrimSpace(in.Summary)
	if in.Title == "" {
		return errors.New("title is required")
	}
	if !slugRegex.MatchString(in.Slug) {
		return fmt.Errorf("slug must match %s", slugRegex.String())
	}
	if in.Summary == "" {
		return errors.New("summary is required")
	}
	return nil
}

func (in *CaseStudyInput) published() bool {
	return in.Published == nil || *in.Published
}

// Testimonial is a customer quote.
type Testimonial struct {
	ID          string    `json:"id"`
	AuthorName  string    `json:"authorName"`
	AuthorTitle *string   `json:"authorTitle,omitempty"`
	Company     *string   `json:"company,omitempty"`
	Quote       string    `json:"quote"`
	AvatarURL   *string   `json:"avatarUrl,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TestimonialInput is the write shape for testimonials.
type TestimonialInput struct {
	AuthorName  string  `json:"authorName"`
	AuthorTitle *string `json:"authorTitle"`
	Company     *string `json:"company"`
	Quote       string  `json:"quote"`
	AvatarURL   *string `json:"avatarUrl"`
	SortOrder   int     `json:"sortOrder"`
	Published   *bool   `json:"published"`
}

// Validate reports the first invalid field, if any.
func (in *TestimonialInput) Validate() error {
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	in.Quote = strings.TrimSpace(in.Quote)
	if in.AuthorName == "" {
		return errors.New("authorName is required")
	}
	if in.Quote == "" {
		return errors.New("quote is required")
	}
	return nil
}

func (in *TestimonialInput) published() bool {
	return in.Published == nil || *in.Published
}

// TeamMember is a person on the team page.
type TeamMember struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Bio       *string   `json:"bio,omitempty"`
	Email     *string   `json:"email,omitempty"`
	PhotoURL  *string   `json:"photoUrl,omitempty"`
	SortOrder int       `json:"sortOrder"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TeamMemberInput is the write shape for team members.
type TeamMemberInput struct {
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	Bio       *string `json:"bio"`
	Email     *string `json:"email"`
	PhotoURL  *string `json:"photoUrl"`
	SortOrder int     `json:"sortOrder"`
	Published *bool   `json:"published"`
}

// Validate reports the first invalid field, if any.
func (in *TeamMemberInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)
	if in.Name == "" {
		return errors.New("name is required")
	}
	if in.Role == "" {
		return errors.New("role is required")
	}
	if in.Email != nil && *in.Email != "" && !emailRegex.MatchString(*in.Email) {
		return errors.New("email is not valid")
	}
	return nil
}

func (in *TeamMemberInput) published() bool {
	return in.Published == nil || *in.Published
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Client is a company logo on the clients strip.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Website   *string   `json:"website,omitempty"`
	LogoURL   *string   `json:"logoUrl,omitempty"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ClientInput is the write shape for clients.
type ClientInput struct {
	Name      string  `json:"name"`
	Website   *string `json:"website"`
	LogoURL   *string `json:"logoUrl"`
	SortOrder int     `json:"sortOrder"`
}

// Validate reports the first invalid field, if any.
func (in *ClientInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// Technology is a stack entry shown on service and case study pages.
type Technology struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Category  *string   `json:"category,omitempty"`
	LogoURL   *string   `json:"logoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TechnologyInput is the write shape for technologies.
type TechnologyInput struct {
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Category *string `json:"category"`
	LogoURL  *string `json:"logoUrl"`
}

// Validate reports the first invalid field, if any.
func (in *TechnologyInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Name == "" {
		return errors.New("name is required")
	}
	if !slugRegex.MatchString(in.Slug) {
		return fmt.Errorf("slug must match %s", slugRegex.String())
	}
	return nil
}

// Category groups case studies.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryInput is the write shape for categories.
type CategoryInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Validate reports the first invalid field, if any.
func (in *CategoryInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Name == "" {
		return errors.New("name is required")
	}
	if !slugRegex.MatchString(in.Slug) {
		return fmt.Errorf("slug must match %s", slugRegex.String())
	}
	return nil
}
