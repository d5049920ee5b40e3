// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import "time"

// ContentFormat tells the admin editor how a post body was authored.
// Markdown bodies are converted to HTML before they are persisted, so
// the stored content is always HTML regardless of format.
type ContentFormat string

const (
	FormatHTML     ContentFormat = "html"
	FormatMarkdown ContentFormat = "markdown"
)

// Post is a blog article. Published posts are visible to the public;
// unpublished ones appear only in the admin panel. The slug is unique
// across the table and is the public lookup key.
type Post struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	Subtitle      string        `json:"subtitle"`
	Author        string        `json:"author"`
	ReadTime      string        `json:"readtime"`
	Content       string        `json:"content"`
	ContentFormat ContentFormat `json:"content_format"`
	Excerpt       string        `json:"excerpt"`
	Slug          string        `json:"slug"`
	Image         *string       `json:"image,omitempty"`
	Views         int64         `json:"views"`
	Published     bool          `json:"published"`
	CategoryID    *int64        `json:"category_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Category is populated by PostStore queries that join categories.
	Category *Category `json:"category,omitempty"`
}

// HasImage reports whether the post has an uploaded cover image.
// Value receiver so templates can call it on ranged post values.
func (p Post) HasImage() bool {
	return p.Image != nil && *p.Image != ""
}

// ImageURL returns the public URL of the cover image, or "" if none.
func (p Post) ImageURL() string {
	if !p.HasImage() {
		return ""
	}
	return "/uploads/" + *p.Image
}
