// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package upload

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var testExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// pngImage encodes a width x height PNG and returns it as a ReadSeeker.
func pngImage(t *testing.T, width, height int) *bytes.Reader {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), testExts)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestSaveStoresImage(t *testing.T) {
	s := testStore(t)

	name, err := s.Save(pngImage(t, 10, 10), "photo.png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !strings.HasSuffix(name, ".png") {
		t.Errorf("stored name %q should keep the .png extension", name)
	}
	if name == "photo.png" {
		t.Error("stored name should not be the original filename")
	}

	if _, err := os.Stat(s.Path(name)); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestSaveGeneratedNamesAreUnique(t *testing.T) {
	s := testStore(t)

	a, err := s.Save(pngImage(t, 10, 10), "same.png")
	if err != nil {
		t.Fatalf("Save a: %v", err)
	}
	b, err := s.Save(pngImage(t, 10, 10), "same.png")
	if err != nil {
		t.Fatalf("Save b: %v", err)
	}
	if a == b {
		t.Errorf("two saves of the same original name produced the same stored name %q", a)
	}
}

func TestSaveRejectsDisallowedExtension(t *testing.T) {
	s := testStore(t)

	if _, err := s.Save(pngImage(t, 10, 10), "script.svg"); err == nil {
		t.Error("expected error for disallowed extension")
	}
}

func TestSaveRejectsNonImage(t *testing.T) {
	s := testStore(t)

	payload := bytes.NewReader([]byte("<html>not an image</html>"))
	if _, err := s.Save(payload, "fake.png"); err == nil {
		t.Error("expected error for payload that does not decode as an image")
	}
}

func TestSaveGeneratesThumbnailForWideImages(t *testing.T) {
	s := testStore(t)

	name, err := s.Save(pngImage(t, thumbMaxWidth+200, 100), "wide.png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	ext := filepath.Ext(name)
	thumbName := ThumbPrefix + strings.TrimSuffix(name, ext) + ".jpg"
	if _, err := os.Stat(filepath.Join(s.Dir(), thumbName)); err != nil {
		t.Errorf("expected thumbnail %q: %v", thumbName, err)
	}
}

func TestSaveSkipsThumbnailForSmallImages(t *testing.T) {
	s := testStore(t)

	name, err := s.Save(pngImage(t, 50, 50), "small.png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	ext := filepath.Ext(name)
	thumbName := ThumbPrefix + strings.TrimSuffix(name, ext) + ".jpg"
	if _, err := os.Stat(filepath.Join(s.Dir(), thumbName)); err == nil {
		t.Error("small image should not get a thumbnail")
	}
}

func TestRemoveDeletesFileAndThumbnail(t *testing.T) {
	s := testStore(t)

	name, err := s.Save(pngImage(t, thumbMaxWidth+200, 100), "wide.png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	s.Remove(name)

	if _, err := os.Stat(s.Path(name)); err == nil {
		t.Error("file should be gone after Remove")
	}
	ext := filepath.Ext(name)
	thumbName := ThumbPrefix + strings.TrimSuffix(name, ext) + ".jpg"
	if _, err := os.Stat(filepath.Join(s.Dir(), thumbName)); err == nil {
		t.Error("thumbnail should be gone after Remove")
	}

	// Removing again is a no-op.
	s.Remove(name)
}

func TestPathStripsTraversal(t *testing.T) {
	s := testStore(t)

	got := s.Path("../../etc/passwd")
	if filepath.Dir(got) != filepath.Clean(s.Dir()) {
		t.Errorf("Path escaped the upload dir: %q", got)
	}
}

func TestAllowed(t *testing.T) {
	s := testStore(t)

	tests := []struct {
		name string
		want bool
	}{
		{"photo.png", true},
		{"photo.JPG", true},
		{"animation.gif", true},
		{"modern.webp", true},
		{"document.pdf", false},
		{"noext", false},
	}

	for _, tt := range tests {
		if got := s.Allowed(tt.name); got != tt.want {
			t.Errorf("Allowed(%q): got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNewStoreNormalizesExtensions(t *testing.T) {
	// ALLOWED_EXTENSIONS arrives from config without dots.
	s, err := NewStore(t.TempDir(), []string{"png", "JPG", " webp ", ""})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	for _, name := range []string{"cover.png", "cover.jpg", "cover.webp"} {
		if !s.Allowed(name) {
			t.Errorf("Allowed(%q) = false, want true", name)
		}
	}
	if s.Allowed("cover.gif") {
		t.Error("Allowed(cover.gif) = true for a store without gif")
	}
	if s.Allowed("cover") {
		t.Error("a filename without extension should never be allowed")
	}

	if _, err := s.Save(pngImage(t, 4, 4), "cover.png"); err != nil {
		t.Errorf("Save with a dotless-configured extension: %v", err)
	}
}
