// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package upload stores post images on the local filesystem. Files are
// renamed on save so user-supplied names never reach the disk, and every
// upload is verified to decode as an actual image before it is written.
package upload

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif" // register GIF decoder
	_ "image/png" // register PNG decoder

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// thumbMaxWidth is the maximum thumbnail width in pixels.
	thumbMaxWidth = 400

	// thumbQuality is the JPEG quality for generated thumbnails.
	thumbQuality = 80

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000

	// ThumbPrefix is prepended to a stored filename to form its
	// thumbnail filename.
	ThumbPrefix = "thumb_"
)

// Store writes uploaded images to a directory on the local filesystem.
type Store struct {
	dir        string
	allowedExt map[string]bool
}

// NewStore creates the upload directory if needed and returns a Store
// that accepts the given extensions. Entries are normalized to the
// dotted lowercase form filepath.Ext produces, so "png" and ".PNG"
// both admit cover.png.
func NewStore(dir string, allowedExt []string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	exts := make(map[string]bool, len(allowedExt))
	for _, e := range allowedExt {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return &Store{dir: dir, allowedExt: exts}, nil
}

// Dir returns the directory files are stored in.
func (s *Store) Dir() string {
	return s.dir
}

// Allowed reports whether the given original filename has an accepted
// image extension.
func (s *Store) Allowed(filename string) bool {
	return s.allowedExt[strings.ToLower(filepath.Ext(filename))]
}

// Save validates and stores an uploaded image, returning the generated
// filename. The original name only contributes its extension; the stored
// name is a timestamp plus a random ID so concurrent uploads never clash.
// A JPEG thumbnail is generated best-effort for large images.
func (s *Store) Save(src io.ReadSeeker, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !s.allowedExt[ext] {
		return "", fmt.Errorf("upload: extension %q not allowed", ext)
	}

	// Verify the payload really decodes as an image.
	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return "", fmt.Errorf("upload: not a valid image: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return "", fmt.Errorf("upload: image too large: %dx%d", cfg.Width, cfg.Height)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("upload: seek: %w", err)
	}

	name := fmt.Sprintf("%s_%s%s", time.Now().Format("20060102_150405"), uuid.New().String(), ext)

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("upload: create file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("upload: write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("upload: close file: %w", err)
	}

	// Thumbnails for oversized images; failures only cost the thumbnail.
	if _, err := src.Seek(0, io.SeekStart); err == nil {
		if thumb, err := generateThumbnail(src, thumbMaxWidth); err != nil {
			slog.Warn("thumbnail generation failed", "file", name, "error", err)
		} else if thumb != nil {
			thumbName := ThumbPrefix + strings.TrimSuffix(name, ext) + ".jpg"
			if err := os.WriteFile(filepath.Join(s.dir, thumbName), thumb, 0o644); err != nil {
				slog.Warn("thumbnail write failed", "file", thumbName, "error", err)
			}
		}
	}

	return name, nil
}

// Remove deletes a stored file and its thumbnail if one exists.
// Missing files are not an error.
func (s *Store) Remove(filename string) {
	base := filepath.Base(filename)
	os.Remove(filepath.Join(s.dir, base))

	ext := filepath.Ext(base)
	thumbName := ThumbPrefix + strings.TrimSuffix(base, ext) + ".jpg"
	os.Remove(filepath.Join(s.dir, thumbName))
}

// Path resolves a stored filename to its on-disk path. The name is
// reduced to its base so path traversal in the URL cannot escape the
// upload directory.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filename))
}

// generateThumbnail produces a JPEG thumbnail no wider than maxWidth.
// Returns (nil, nil) when the source is already small enough.
func generateThumbnail(src io.ReadSeeker, maxWidth int) ([]byte, error) {
	// Decode config first to check dimensions without full decode.
	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Width <= maxWidth {
		return nil, nil
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	// Calculate thumbnail dimensions preserving aspect ratio.
	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	newHeight := int(float64(bounds.Dy()) * ratio)

	// Resize using CatmullRom (high quality).
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
