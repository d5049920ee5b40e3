package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: the admin
// credential row, a default category, and two sample posts. Each step is
// a no-op when data already exists, so Seed is safe to run at every start.
func Seed(db *sql.DB, adminEmail, adminPassword string) error {
	if err := seedAdmin(db, adminEmail, adminPassword); err != nil {
		return err
	}
	return seedContent(db)
}

// seedAdmin inserts the single admin credential row if none exists.
func seedAdmin(db *sql.DB, email, password string) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM admin_account").Scan(&count); err != nil {
		return fmt.Errorf("seed check admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO admin_account (id, email, password_hash) VALUES (1, $1, $2)
	`, email, string(hash))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with admin account", "email", email)
	return nil
}

// seedContent inserts the default category and sample posts on first run.
func seedContent(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return fmt.Errorf("seed check posts: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	if _, err := db.Exec(`
		INSERT INTO categories (name, slug) VALUES ('Uncategorized', 'uncategorized')
		ON CONFLICT (slug) DO NOTHING
	`); err != nil {
		return fmt.Errorf("seed default category: %w", err)
	}

	samples := []struct {
		title, subtitle, content, excerpt, slug string
	}{
		{
			title:    "Welcome to QuillPress",
			subtitle: "A lightweight blog platform",
			content:  "<p>This is your first blog post. Edit or delete it to get started!</p>",
			excerpt:  "This is your first blog post. Edit or delete it to get started!",
			slug:     "welcome-to-quillpress",
		},
		{
			title:    "Writing Your First Post",
			subtitle: "Markdown or HTML, your choice",
			content:  "<p>Open the admin panel, hit Add Post, and start writing.</p>",
			excerpt:  "Open the admin panel, hit Add Post, and start writing.",
			slug:     "writing-your-first-post",
		},
	}

	for _, s := range samples {
		if _, err := db.Exec(`
			INSERT INTO posts (title, subtitle, content, excerpt, slug, published)
			VALUES ($1, $2, $3, $4, $5, TRUE)
		`, s.title, s.subtitle, s.content, s.excerpt, s.slug); err != nil {
			return fmt.Errorf("seed post %q: %w", s.slug, err)
		}
	}

	slog.Info("database seeded with sample posts", "count", len(samples))
	return nil
}
