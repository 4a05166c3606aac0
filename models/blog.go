package models

import (
	"database/sql"
	"strings"
	"time"
)

type Blog struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Author    string    `json:"author,omitempty"`
	Category  string    `json:"category,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BlogModel struct {
	DB *sql.DB
}

func NewBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{DB: db}
}

// NormalizeSlug canonicalizes a slug taken from a URL path segment.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

const blogColumns = `id, slug, title, content, COALESCE(excerpt, ''), COALESCE(author, ''),
	COALESCE(category, ''), COALESCE(image_url, ''), published, created_at, updated_at`

// ListPublished returns published posts, newest first.
func (m *BlogModel) ListPublished() ([]Blog, error) {
	query := `SELECT ` + blogColumns + ` FROM blogs WHERE published = TRUE ORDER BY created_at DESC`
	rows, err := m.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		var b Blog
		if err := rows.Scan(&b.ID, &b.Slug, &b.Title, &b.Content, &b.Excerpt, &b.Author,
			&b.Category, &b.ImageURL, &b.Published, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}
	return blogs, rows.Err()
}

// GetBySlug returns one published post. Unpublished posts are invisible
// through this path, drafts do not leak by slug guessing.
func (m *BlogModel) GetBySlug(slug string) (*Blog, error) {
	query := `SELECT ` + blogColumns + ` FROM blogs WHERE slug = $1 AND published = TRUE`
	var b Blog
	err := m.DB.QueryRow(query, NormalizeSlug(slug)).Scan(&b.ID, &b.Slug, &b.Title, &b.Content,
		&b.Excerpt, &b.Author, &b.Category, &b.ImageURL, &b.Published, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
