// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"quillpress/internal/models"
)

// ErrParentMismatch is returned when a reply references a parent comment
// that belongs to a different post (or doesn't exist at all).
var ErrParentMismatch = errors.New("parent comment does not belong to this post")

// CommentStore manages visitor comments in the database.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `id, name, email, body, approved, post_id, parent_id, created_at`

// scanComment scans a row into a Comment struct.
func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	var c models.Comment
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Email, &c.Body, &c.Approved,
		&c.PostID, &c.ParentID, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new comment. Comments are approved on creation; there
// is no moderation step. When the comment has a parent, the parent must
// be a comment on the same post, otherwise ErrParentMismatch is returned.
func (s *CommentStore) Create(c *models.Comment) (*models.Comment, error) {
	if c.ParentID != nil {
		var parentPostID int64
		err := s.db.QueryRow(
			`SELECT post_id FROM comments WHERE id = $1`, *c.ParentID,
		).Scan(&parentPostID)
		if err == sql.ErrNoRows {
			return nil, ErrParentMismatch
		}
		if err != nil {
			return nil, fmt.Errorf("check comment parent: %w", err)
		}
		if parentPostID != c.PostID {
			return nil, ErrParentMismatch
		}
	}

	row := s.db.QueryRow(`
		INSERT INTO comments (name, email, body, approved, post_id, parent_id)
		VALUES ($1, $2, $3, TRUE, $4, $5)
		RETURNING `+commentColumns,
		c.Name, c.Email, c.Body, c.PostID, c.ParentID,
	)
	created, err := scanComment(row)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return created, nil
}

// ListForPost returns the approved top-level comments of a post, newest
// first, each carrying its approved replies oldest first.
func (s *CommentStore) ListForPost(postID int64) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT `+commentColumns+` FROM comments
		WHERE post_id = $1 AND approved
		ORDER BY created_at DESC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var topLevel []models.Comment
	replies := make(map[int64][]models.Comment)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		if c.ParentID == nil {
			topLevel = append(topLevel, *c)
		} else {
			replies[*c.ParentID] = append(replies[*c.ParentID], *c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// The query returned newest first; replies read oldest first.
	for i := range topLevel {
		children := replies[topLevel[i].ID]
		for left, right := 0, len(children)-1; left < right; left, right = left+1, right-1 {
			children[left], children[right] = children[right], children[left]
		}
		topLevel[i].Replies = children
	}
	return topLevel, nil
}

// Count returns the number of comments across all posts.
func (s *CommentStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM comments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}
