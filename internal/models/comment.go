// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Comment is a visitor comment on a post. A comment may reference a
// parent comment on the same post, giving one level of threading.
// Comments are approved by default; the flag exists so moderation can
// be added without a schema change.
type Comment struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Body      string    `json:"body"`
	Approved  bool      `json:"approved"`
	PostID    int64     `json:"post_id"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Replies holds the direct children of a top-level comment,
	// oldest first. Populated by CommentStore.ListForPost.
	Replies []Comment `json:"replies,omitempty"`
}

// IsReply reports whether the comment has a parent.
func (c Comment) IsReply() bool {
	return c.ParentID != nil
}
