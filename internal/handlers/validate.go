// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLen    = 200
	maxSubtitleLen = 300
	maxNameLen     = 100
	maxEmailLen    = 254
	maxCommentLen  = 5000
	minPasswordLen = 8
)

// validatePost checks admin post form input and returns the first
// problem as a user-facing message, or "" when the input is fine.
func validatePost(title, content string) string {
	if strings.TrimSpace(title) == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long."
	}
	if strings.TrimSpace(content) == "" {
		return "Content is required."
	}
	return ""
}

// validateComment checks public comment form input and returns the
// first problem as a user-facing message, or "" when the input is fine.
func validateComment(name, email, body string) string {
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long."
	}
	if email == "" {
		return "Email is required."
	}
	if len(email) > maxEmailLen || !strings.Contains(email, "@") {
		return "Email does not look valid."
	}
	if body == "" {
		return "Comment cannot be empty."
	}
	if utf8.RuneCountInString(body) > maxCommentLen {
		return "Comment is too long."
	}
	return ""
}

// validatePasswordChange checks the change-password form.
func validatePasswordChange(current, next, confirm string) string {
	if current == "" {
		return "Current password is required."
	}
	if utf8.RuneCountInString(next) < minPasswordLen {
		return "New password must be at least 8 characters."
	}
	if next != confirm {
		return "New passwords do not match."
	}
	return ""
}
