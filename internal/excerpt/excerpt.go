// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package excerpt derives plain-text previews from HTML post content.
package excerpt

import (
	"regexp"
	"strings"
)

// DefaultLength is the excerpt length used for post listings.
const DefaultLength = 150

// tags matches HTML tags for removal.
var tags = regexp.MustCompile(`<[^>]+>`)

// Generate strips markup from html and truncates the remaining text to
// length runes, appending an ellipsis when truncation occurred. The
// transform is pure: the same input always yields the same output.
func Generate(html string, length int) string {
	if length <= 0 {
		length = DefaultLength
	}

	text := tags.ReplaceAllString(html, "")
	text = strings.TrimSpace(text)

	runes := []rune(text)
	if len(runes) <= length {
		return text
	}
	return string(runes[:length]) + "..."
}
