// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from post and
// category titles, plus disambiguation for slug collisions.
package slug

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Disambiguate appends the date to a slug that collides with an
// existing one. "hello-world" → "hello-world-20260830".
func Disambiguate(s string, at time.Time) string {
	return s + "-" + at.UTC().Format("20060102")
}

// Randomize appends a short random suffix. Used as a second attempt
// when even the date-suffixed slug hits the uniqueness constraint.
func Randomize(s string) string {
	b := make([]byte, 3)
	rand.Read(b)
	return s + "-" + hex.EncodeToString(b)
}
