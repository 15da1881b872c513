package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles all content database operations. The methods are
// mechanical pass-throughs to SQL; business rules live in the handlers'
// validation and the schema's constraints.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapWriteErr(op string, err error) error {
	if isUniqueViolation(err) {
		return ErrSlugTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}

func mapReadErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ---- services ----

const serviceColumns = `id, title, slug, description, icon, image_url, sort_order, published, created_at, updated_at`

func scanService(row pgx.Row) (*Service, error) {
	s := &Service{}
	err := row.Scan(&s.ID, &s.Title, &s.Slug, &s.Description, &s.Icon, &s.ImageURL,
		&s.SortOrder, &s.Published, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListServices returns services ordered for display. Unpublished rows are
// included only for the admin surface.
func (r *Repository) ListServices(ctx context.Context, includeUnpublished bool) ([]*Service, error) {
	q := `SELECT ` + serviceColumns + ` FROM services`
	if !includeUnpublished {
		q += ` WHERE published`
	}
	q += ` ORDER BY sort_order, created_at`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var out []*Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("list services: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetService fetches one service by id.
func (r *Repository) GetService(ctx context.Context, id string) (*Service, error) {
	s, err := scanService(r.db.QueryRow(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	if err != nil {
		return nil, mapReadErr("get service", err)
	}
	return s, nil
}

// CreateService inserts a service and returns the created record.
func (r *Repository) CreateService(ctx context.Context, in *ServiceInput) (*Service, error) {
	s, err := scanService(r.db.QueryRow(ctx,
		`INSERT INTO services (title, slug, description, icon, image_url, sort_order, published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+serviceColumns,
		in.Title, in.Slug, in.Description, in.Icon, in.ImageURL, in.SortOrder, in.published()))
	if err != nil {
		return nil, mapWriteErr("create service", err)
	}
	return s, nil
}

// UpdateService replaces all writable fields of a service.
func (r *Repository) UpdateService(ctx context.Context, id string, in *ServiceInput) (*Service, error) {
	s, err := scanService(r.db.QueryRow(ctx,
		`UPDATE services SET title = $2, slug = $3, description = $4, icon = $5,
		        image_url = $6, sort_order = $7, published = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+serviceColumns,
		id, in.Title, in.Slug, in.Description, in.Icon, in.ImageURL, in.SortOrder, in.published()))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, mapReadErr("update service", err)
	}
	return s, nil
}

// DeleteService removes a service.
func (r *Repository) DeleteService(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "services", id)
}

// ---- case studies ----

const caseStudyColumns = `id, title, slug, summary, body, client_name, image_url, category_id, featured, published, created_at, updated_at`

func scanCaseStudy(row pgx.Row) (*CaseStudy, error) {
	c := &CaseStudy{}
	err := row.Scan(&c.ID, &c.Title, &c.Slug, &c.Summary, &c.Body, &c.ClientName,
		&c.ImageURL, &c.CategoryID, &c.Featured, &c.Published, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCaseStudies returns case studies, newest first.
func (r *Repository) ListCaseStudies(ctx context.Context, includeUnpublished bool) ([]*CaseStudy, error) {
	q := `SELECT ` + caseStudyColumns + ` FROM case_studies`
	if !includeUnpublished {
		q += ` WHERE published`
	}
	q += ` ORDER BY featured DESC, created_at DESC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list case studies: %w", err)
	}
	defer rows.Close()

	var out []*CaseStudy
	for rows.Next() {
		c, err := scanCaseStudy(rows)
		if err != nil {
			return nil, fmt.Errorf("list case studies: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCaseStudy fetches one case study by id.
func (r *Repository) GetCaseStudy(ctx context.Context, id string) (*CaseStudy, error) {
	c, err := scanCaseStudy(r.db.QueryRow(ctx,
		`SELECT `+caseStudyColumns+` FROM case_studies WHERE id = $1`, id))
	if err != nil {
		return nil, mapReadErr("get case study", err)
	}
	return c, nil
}

// CreateCaseStudy inserts a case study and returns the created record.
func (r *Repository) CreateCaseStudy(ctx context.Context, in *CaseStudyInput) (*CaseStudy, error) {
	c, err := scanCaseStudy(r.db.QueryRow(ctx,
		`INSERT INTO case_studies (title, slug, summary, body, client_name, image_url, category_id, featured, published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+caseStudyColumns,
		in.Title, in.Slug, in.Summary, in.Body, in.ClientName, in.ImageURL, in.CategoryID, in.Featured, in.published()))
	if err != nil {
		return nil, mapWriteErr("create case study", err)
	}
	return c, nil
}

// UpdateCaseStudy replaces all writable fields of a case study.
func (r *Repository) UpdateCaseStudy(ctx context.Context, id string, in *CaseStudyInput) (*CaseStudy, error) {
	c, err := scanCaseStudy(r.db.QueryRow(ctx,
		`UPDATE case_studies SET title = $2, slug = $3, summary = $4, body = $5, client_name = $6,
		        image_url = $7, category_id = $8, featured = $9, published = $10, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+caseStudyColumns,
		id, in.Title, in.Slug, in.Summary, in.Body, in.ClientName, in.ImageURL, in.CategoryID, in.Featured, in.published()))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, mapReadErr("update case study", err)
	}
	return c, nil
}

// DeleteCaseStudy removes a case study.
func (r *Repository) DeleteCaseStudy(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "case_studies", id)
}

// ---- testimonials ----

const testimonialColumns = `id, author_name, author_title, company, quote, avatar_url, sort_order, published, created_at, updated_at`

func scanTestimonial(row pgx.Row) (*Testimonial, error) {
	t := &Testimonial{}
	err := row.Scan(&t.ID, &t.AuthorName, &t.AuthorTitle, &t.Company, &t.Quote,
		&t.AvatarURL, &t.SortOrder, &t.Published, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTestimonials returns testimonials in display order.
func (r *Repository) ListTestimonials(ctx context.Context, includeUnpublished bool) ([]*Testimonial, error) {
	q := `SELECT ` + testimonialColumns + ` FROM testimonials`
	if !includeUnpublished {
		q += ` WHERE published`
	}
	q += ` ORDER BY sort_order, created_at`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	defer rows.Close()

	var out []*Testimonial
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, fmt.Errorf("list testimonials: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTestimonial inserts a testimonial.
func (r *Repository) CreateTestimonial(ctx context.Context, in *TestimonialInput) (*Testimonial, error) {
	t, err := scanTestimonial(r.db.QueryRow(ctx,
		`INSERT INTO testimonials (author_name, author_title, company, quote, avatar_url, sort_order, published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+testimonialColumns,
		in.AuthorName, in.AuthorTitle, in.Company, in.Quote, in.AvatarURL, in.SortOrder, in.published()))
	if err != nil {
		return nil, mapWriteErr("create testimonial", err)
	}
	return t, nil
}

// UpdateTestimonial replaces all writable fields of a testimonial.
func (r *Repository) UpdateTestimonial(ctx context.Context, id string, in *TestimonialInput) (*Testimonial, error) {
	t, err := scanTestimonial(r.db.QueryRow(ctx,
		`UPDATE testimonials SET author_name = $2, author_title = $3, company = $4, quote = $5,
		        avatar_url = $6, sort_order = $7, published = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+testimonialColumns,
		id, in.AuthorName, in.AuthorTitle, in.Company, in.Quote, in.AvatarURL, in.SortOrder, in.published()))
	if err != nil {
		return nil, mapReadErr("update testimonial", err)
	}
	return t, nil
}

// DeleteTestimonial removes a testimonial.
func (r *Repository) DeleteTestimonial(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "testimonials", id)
}

// ---- team members ----

const teamMemberColumns = `id, name, role, bio, email, photo_url, sort_order, published, created_at, updated_at`

func scanTeamMember(row pgx.Row) (*TeamMember, error) {
	m := &TeamMember{}
	err := row.Scan(&m.ID, &m.Name, &m.Role, &m.Bio, &m.Email, &m.PhotoURL,
		&m.SortOrder, &m.Published, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListTeamMembers returns team members in display order.
func (r *Repository) ListTeamMembers(ctx context.Context, includeUnpublished bool) ([]*TeamMember, error) {
	q := `SELECT ` + teamMemberColumns + ` FROM team_members`
	if !includeUnpublished {
		q += ` WHERE published`
	}
	q += ` ORDER BY sort_order, created_at`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	var out []*TeamMember
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return nil, fmt.Errorf("list team members: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateTeamMember inserts a team member.
func (r *Repository) CreateTeamMember(ctx context.Context, in *TeamMemberInput) (*TeamMember, error) {
	m, err := scanTeamMember(r.db.QueryRow(ctx,
		`INSERT INTO team_members (name, role, bio, email, photo_url, sort_order, published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+teamMemberColumns,
		in.Name, in.Role, in.Bio, in.Email, in.PhotoURL, in.SortOrder, in.published()))
	if err != nil {
		return nil, mapWriteErr("create team member", err)
	}
	return m, nil
}

// UpdateTeamMember replaces all writable fields of a team member.
func (r *Repository) UpdateTeamMember(ctx context.Context, id string, in *TeamMemberInput) (*TeamMember, error) {
	m, err := scanTeamMember(r.db.QueryRow(ctx,
		`UPDATE team_members SET name = $2, role = $3, bio = $4, email = $5,
		        photo_url = $6, sort_order = $7, published = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+teamMemberColumns,
		id, in.Name, in.Role, in.Bio, in.Email, in.PhotoURL, in.SortOrder, in.published()))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, mapReadErr("update team member", err)
	}
	return m, nil
}

// DeleteTeamMember removes a team member.
func (r *Repository) DeleteTeamMember(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "team_members", id)
}

// ---- clients ----

const clientColumns = `id, name, website, logo_url, sort_order, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	c := &Client{}
	err := row.Scan(&c.ID, &c.Name, &c.Website, &c.LogoURL, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListClients returns clients in display order.
func (r *Repository) ListClients(ctx context.Context) ([]*Client, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY sort_order, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("list clients: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateClient inserts a client.
func (r *Repository) CreateClient(ctx context.Context, in *ClientInput) (*Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx,
		`INSERT INTO clients (name, website, logo_url, sort_order)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+clientColumns,
		in.Name, in.Website, in.LogoURL, in.SortOrder))
	if err != nil {
		return nil, mapWriteErr("create client", err)
	}
	return c, nil
}

// UpdateClient replaces all writable fields of a client.
func (r *Repository) UpdateClient(ctx context.Context, id string, in *ClientInput) (*Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx,
		`UPDATE clients SET name = $2, website = $3, logo_url = $4, sort_order = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+clientColumns,
		id, in.Name, in.Website, in.LogoURL, in.SortOrder))
	if err != nil {
		return nil, mapReadErr("update client", err)
	}
	return c, nil
}

// DeleteClient removes a client.
func (r *Repository) DeleteClient(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "clients", id)
}

// ---- technologies ----

const technologyColumns = `id, name, slug, category, logo_url, created_at, updated_at`

func scanTechnology(row pgx.Row) (*Technology, error) {
	t := &Technology{}
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Category, &t.LogoURL, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTechnologies returns technologies ordered by name.
func (r *Repository) ListTechnologies(ctx context.Context) ([]*Technology, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+technologyColumns+` FROM technologies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list technologies: %w", err)
	}
	defer rows.Close()

	var out []*Technology
	for rows.Next() {
		t, err := scanTechnology(rows)
		if err != nil {
			return nil, fmt.Errorf("list technologies: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTechnology inserts a technology.
func (r *Repository) CreateTechnology(ctx context.Context, in *TechnologyInput) (*Technology, error) {
	t, err := scanTechnology(r.db.QueryRow(ctx,
		`INSERT INTO technologies (name, slug, category, logo_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+technologyColumns,
		in.Name, in.Slug, in.Category, in.LogoURL))
	if err != nil {
		return nil, mapWriteErr("create technology", err)
	}
	return t, nil
}

// UpdateTechnology replaces all writable fields of a technology.
func (r *Repository) UpdateTechnology(ctx context.Context, id string, in *TechnologyInput) (*Technology, error) {
	t, err := scanTechnology(r.db.QueryRow(ctx,
		`UPDATE technologies SET name = $2, slug = $3, category = $4, logo_url = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+technologyColumns,
		id, in.Name, in.Slug, in.Category, in.LogoURL))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, mapReadErr("update technology", err)
	}
	return t, nil
}

// DeleteTechnology removes a technology.
func (r *Repository) DeleteTechnology(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "technologies", id)
}

// ---- categories ----

const categoryColumns = `id, name, slug, created_at, updated_at`

func scanCategory(row pgx.Row) (*Category, error) {
	c := &Category{}
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCategories returns categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []*Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, in *CategoryInput) (*Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx,
		`INSERT INTO categories (name, slug) VALUES ($1, $2)
		 RETURNING `+categoryColumns,
		in.Name, in.Slug))
	if err != nil {
		return nil, mapWriteErr("create category", err)
	}
	return c, nil
}

// UpdateCategory replaces all writable fields of a category.
func (r *Repository) UpdateCategory(ctx context.Context, id string, in *CategoryInput) (*Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx,
		`UPDATE categories SET name = $2, slug = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+categoryColumns,
		id, in.Name, in.Slug))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, mapReadErr("update category", err)
	}
	return c, nil
}

// DeleteCategory removes a category. Case studies referencing it fall back to
// no category via the schema's ON DELETE SET NULL.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "categories", id)
}

// deleteByID removes one row by id from a fixed table name.
func (r *Repository) deleteByID(ctx context.Context, table, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
