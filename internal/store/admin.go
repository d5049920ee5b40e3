// Package store provides database access methods for all QuillPress
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"quillpress/internal/models"
)

// AdminStore manages the single administrator credential row.
type AdminStore struct {
	db *sql.DB
}

// NewAdminStore creates a new AdminStore with the given database connection.
func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db}
}

// Get retrieves the admin account. Returns nil if the row has not been
// seeded yet.
func (s *AdminStore) Get() (*models.AdminAccount, error) {
	a := &models.AdminAccount{}
	err := s.db.QueryRow(`
		SELECT id, email, password_hash, updated_at FROM admin_account WHERE id = 1
	`).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get admin account: %w", err)
	}
	return a, nil
}

// UpdatePassword replaces the stored password hash. Unlike a session
// flag, this persists: future logins verify against the new hash.
func (s *AdminStore) UpdatePassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE admin_account SET password_hash = $1, updated_at = now() WHERE id = 1
	`, string(hash))
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	return nil
}

// CheckPassword verifies a plaintext password against the account's stored hash.
func (s *AdminStore) CheckPassword(account *models.AdminAccount, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) == nil
}
