// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"quillpress/internal/models"
)

// ErrDuplicateSlug is returned by Create and Update when the posts.slug
// uniqueness constraint fires. Handlers retry with a disambiguated slug.
var ErrDuplicateSlug = errors.New("slug already exists")

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postColumns selects every post field plus the joined category name and
// slug. Every read query shares this list so scanPost stays in sync.
const postColumns = `
	p.id, p.title, p.subtitle, p.author, p.readtime, p.content,
	p.content_format, p.excerpt, p.slug, p.image, p.views, p.published,
	p.category_id, p.created_at, p.updated_at, c.name, c.slug`

const postFrom = ` FROM posts p LEFT JOIN categories c ON c.id = p.category_id `

// scanPost scans one joined row into a Post, attaching the category
// when the post has one.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	var catName, catSlug sql.NullString
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Subtitle, &p.Author, &p.ReadTime, &p.Content,
		&p.ContentFormat, &p.Excerpt, &p.Slug, &p.Image, &p.Views, &p.Published,
		&p.CategoryID, &p.CreatedAt, &p.UpdatedAt, &catName, &catSlug,
	)
	if err != nil {
		return nil, err
	}
	if p.CategoryID != nil && catName.Valid {
		p.Category = &models.Category{ID: *p.CategoryID, Name: catName.String, Slug: catSlug.String}
	}
	return &p, nil
}

// collectPosts drains rows into a slice of posts.
func collectPosts(rows *sql.Rows) ([]models.Post, error) {
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// ListFeatured returns the most recent limit published posts.
func (s *PostStore) ListFeatured(limit int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+postFrom+`
		WHERE p.published ORDER BY p.created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list featured posts: %w", err)
	}
	return collectPosts(rows)
}

// ListPaged returns one page of published posts, newest first. Pages are
// 1-based; a page beyond the last yields an empty slice, not an error.
func (s *PostStore) ListPaged(page, perPage int) ([]models.Post, error) {
	if page < 1 {
		page = 1
	}
	rows, err := s.db.Query(`
		SELECT `+postColumns+postFrom+`
		WHERE p.published ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2
	`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("list paged posts: %w", err)
	}
	return collectPosts(rows)
}

// ListByCategory returns all published posts in a category, newest first.
func (s *PostStore) ListByCategory(categoryID int64) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+postFrom+`
		WHERE p.published AND p.category_id = $1
		ORDER BY p.created_at DESC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list posts by category: %w", err)
	}
	return collectPosts(rows)
}

// List returns every post, published or not, newest first. Admin panel only.
func (s *PostStore) List() ([]models.Post, error) {
	rows, err := s.db.Query(`SELECT ` + postColumns + postFrom + ` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return collectPosts(rows)
}

// FindBySlug retrieves a published post by its slug. Returns nil if not found.
func (s *PostStore) FindBySlug(slug string) (*models.Post, error) {
	row := s.db.QueryRow(`
		SELECT `+postColumns+postFrom+` WHERE p.slug = $1 AND p.published
	`, slug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// FindByID retrieves a post by id regardless of published state.
// Returns nil if not found.
func (s *PostStore) FindByID(id int64) (*models.Post, error) {
	row := s.db.QueryRow(`
		SELECT `+postColumns+postFrom+` WHERE p.id = $1
	`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// IncrementViews adds one to a post's view counter. Every public read
// counts, repeated or not; concurrent increments are resolved by the
// database.
func (s *PostStore) IncrementViews(id int64) error {
	_, err := s.db.Exec(`UPDATE posts SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// Related returns up to limit other published posts, newest first.
// Relatedness is purely chronological.
func (s *PostStore) Related(postID int64, limit int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+postFrom+`
		WHERE p.published AND p.id <> $1
		ORDER BY p.created_at DESC LIMIT $2
	`, postID, limit)
	if err != nil {
		return nil, fmt.Errorf("list related posts: %w", err)
	}
	return collectPosts(rows)
}

// Neighbors returns the published posts adjacent to postID by id:
// prev is the greatest lower id, next the smallest higher id. Either may
// be nil. Note the adjacency is id-based, not chronological.
func (s *PostStore) Neighbors(postID int64) (prev, next *models.Post, err error) {
	row := s.db.QueryRow(`
		SELECT `+postColumns+postFrom+`
		WHERE p.published AND p.id < $1 ORDER BY p.id DESC LIMIT 1
	`, postID)
	prev, err = scanPost(row)
	if err == sql.ErrNoRows {
		prev, err = nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find previous post: %w", err)
	}

	row = s.db.QueryRow(`
		SELECT `+postColumns+postFrom+`
		WHERE p.published AND p.id > $1 ORDER BY p.id ASC LIMIT 1
	`, postID)
	next, err = scanPost(row)
	if err == sql.ErrNoRows {
		next, err = nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find next post: %w", err)
	}

	return prev, next, nil
}

// Search returns published posts whose title, subtitle, or content
// contains the query, case-insensitively, newest first. Query length
// validation is the caller's concern.
func (s *PostStore) Search(query string) ([]models.Post, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT `+postColumns+postFrom+`
		WHERE p.published
		  AND (p.title ILIKE $1 OR p.subtitle ILIKE $1 OR p.content ILIKE $1)
		ORDER BY p.created_at DESC
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return collectPosts(rows)
}

// SearchTitles returns up to limit published posts whose title contains
// the query. Backs the live-search JSON endpoint.
func (s *PostStore) SearchTitles(query string, limit int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+postFrom+`
		WHERE p.published AND p.title ILIKE $1
		ORDER BY p.created_at DESC LIMIT $2
	`, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search post titles: %w", err)
	}
	return collectPosts(rows)
}

// SlugExists reports whether any post (published or not) uses the slug.
func (s *PostStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("slug exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new post and returns it with generated fields filled
// in. A uniqueness violation on the slug is reported as ErrDuplicateSlug.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	var id int64
	err := s.db.QueryRow(`
		INSERT INTO posts (title, subtitle, author, readtime, content,
		                   content_format, excerpt, slug, image, published, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, p.Title, p.Subtitle, p.Author, p.ReadTime, p.Content,
		p.ContentFormat, p.Excerpt, p.Slug, p.Image, p.Published, p.CategoryID,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.FindByID(id)
}

// Update overwrites an existing post's editable fields and refreshes
// updated_at. A slug collision is reported as ErrDuplicateSlug.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, subtitle = $2, author = $3, readtime = $4,
			content = $5, content_format = $6, excerpt = $7, slug = $8,
			image = $9, published = $10, category_id = $11, updated_at = now()
		WHERE id = $12
	`, p.Title, p.Subtitle, p.Author, p.ReadTime,
		p.Content, p.ContentFormat, p.Excerpt, p.Slug,
		p.Image, p.Published, p.CategoryID, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by id. Its comments go with it (ON DELETE CASCADE).
func (s *PostStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// CountPublished returns the number of published posts.
func (s *PostStore) CountPublished() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE published`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count published posts: %w", err)
	}
	return count, nil
}

// CountAll returns the number of posts, published or not.
func (s *PostStore) CountAll() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// TotalViews returns the sum of view counters across all posts.
func (s *PostStore) TotalViews() (int64, error) {
	var total int64
	err := s.db.QueryRow(`SELECT COALESCE(SUM(views), 0) FROM posts`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total views: %w", err)
	}
	return total, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
