// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category groups posts under a URL-safe slug. Categories are created
// on demand when the admin types a new name on the post form and are
// never deleted by the application.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`

	// PostCount is populated by CategoryStore.List for sidebar display.
	PostCount int `json:"post_count"`
}
