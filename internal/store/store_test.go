// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"quillpress/internal/database"
	"quillpress/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with local development defaults.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "quillpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "quillpress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Reset goose global state so other tests see a clean slate.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanPosts removes test posts by slug prefix. Call in t.Cleanup().
func cleanPosts(t *testing.T, db *sql.DB, slugPrefixes ...string) {
	t.Helper()
	for _, prefix := range slugPrefixes {
		db.Exec("DELETE FROM posts WHERE slug LIKE $1", prefix+"%")
	}
}

// cleanCategories removes test categories by slug. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", s)
	}
}

// mustCreatePost inserts a published post for tests and returns it.
func mustCreatePost(t *testing.T, posts *PostStore, title, slug string) *models.Post {
	t.Helper()
	p, err := posts.Create(&models.Post{
		Title:         title,
		Author:        "Tester",
		ReadTime:      "3 min read",
		Content:       "<p>" + title + "</p>",
		ContentFormat: models.FormatHTML,
		Excerpt:       title,
		Slug:          slug,
		Published:     true,
	})
	if err != nil {
		t.Fatalf("create post %q: %v", slug, err)
	}
	return p
}
