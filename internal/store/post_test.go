// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"fmt"
	"testing"

	"quillpress/internal/models"
)

func TestPostCreateDuplicateSlug(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)
	t.Cleanup(func() { cleanPosts(t, db, "dup-slug-test") })

	mustCreatePost(t, posts, "Dup Slug Test", "dup-slug-test")

	_, err := posts.Create(&models.Post{
		Title:     "Dup Slug Test Again",
		Content:   "<p>again</p>",
		Slug:      "dup-slug-test",
		Published: true,
	})
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Fatalf("Create with duplicate slug: err = %v, want ErrDuplicateSlug", err)
	}
}

func TestPostFindBySlugOnlyPublished(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)
	t.Cleanup(func() { cleanPosts(t, db, "findslug-test") })

	mustCreatePost(t, posts, "FindSlug Published", "findslug-test-pub")

	if _, err := posts.Create(&models.Post{
		Title:     "FindSlug Draft",
		Content:   "<p>draft</p>",
		Slug:      "findslug-test-draft",
		Published: false,
	}); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	got, err := posts.FindBySlug("findslug-test-pub")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if got == nil || got.Title != "FindSlug Published" {
		t.Errorf("FindBySlug returned %+v, want the published post", got)
	}

	draft, err := posts.FindBySlug("findslug-test-draft")
	if err != nil {
		t.Fatalf("FindBySlug draft: %v", err)
	}
	if draft != nil {
		t.Errorf("FindBySlug returned unpublished post %+v, want nil", draft)
	}
}

func TestPostIncrementViews(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)
	t.Cleanup(func() { cleanPosts(t, db, "views-test") })

	p := mustCreatePost(t, posts, "Views Test", "views-test")
	if p.Views != 0 {
		t.Fatalf("new post views = %d, want 0", p.Views)
	}

	const n = 4
	for i := 0; i < n; i++ {
		if err := posts.IncrementViews(p.ID); err != nil {
			t.Fatalf("IncrementViews: %v", err)
		}
	}

	got, err := posts.FindByID(p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Views != n {
		t.Errorf("views = %d after %d increments, want %d", got.Views, n, n)
	}
}

func TestPostListPaged(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)
	t.Cleanup(func() { cleanPosts(t, db, "paged-test") })

	// ListPaged sees every published post in the database, so anchor
	// the expectations on the count before inserting the fixtures.
	before, err := posts.CountPublished()
	if err != nil {
		t.Fatalf("CountPublished: %v", err)
	}

	for i := 0; i < 20; i++ {
		mustCreatePost(t, posts, fmt.Sprintf("Paged Test %02d", i), fmt.Sprintf("paged-test-%02d", i))
	}

	after, err := posts.CountPublished()
	if err != nil {
		t.Fatalf("CountPublished: %v", err)
	}
	if after != before+20 {
		t.Fatalf("CountPublished = %d, want %d", after, before+20)
	}

	page1, err := posts.ListPaged(1, 9)
	if err != nil {
		t.Fatalf("ListPaged(1): %v", err)
	}
	if len(page1) != 9 {
		t.Errorf("page 1 returned %d posts, want 9", len(page1))
	}

	// A page past the end must yield an empty slice, not an error.
	lastPage := (after + 8) / 9
	empty, err := posts.ListPaged(lastPage+1, 9)
	if err != nil {
		t.Fatalf("ListPaged(beyond): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("page beyond range returned %d posts, want 0", len(empty))
	}

	// page < 1 is treated as page 1.
	pageZero, err := posts.ListPaged(0, 9)
	if err != nil {
		t.Fatalf("ListPaged(0): %v", err)
	}
	if len(pageZero) != len(page1) {
		t.Errorf("page 0 returned %d posts, want %d (same as page 1)", len(pageZero), len(page1))
	}
}

func TestPostNeighbors(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)
	t.Cleanup(func() { cleanPosts(t, db, "neighbor-test") })

	first := mustCreatePost(t, posts, "Neighbor A", "neighbor-test-a")
	middle := mustCreatePost(t, posts, "Neighbor B", "neighbor-test-b")
	last := mustCreatePost(t, posts, "Neighbor C", "neighbor-test-c")

	prev, next, err := posts.Neighbors(middle.ID)
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	if prev == nil || prev.ID != first.ID {
		t.Errorf("prev = %+v, want post %d", prev, first.ID)
	}
	if next == nil || next.ID != last.ID {
		t.Errorf("next = %+v, want post %d", next, last.ID)
	}
}

func TestPostNeighborsSkipUnpublished(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)
	t.Cleanup(func() { cleanPosts(t, db, "nbdraft-test") })

	first := mustCreatePost(t, posts, "NbDraft A", "nbdraft-test-a")
	if _, err := posts.Create(&models.Post{
		Title: "NbDraft Hidden", Content: "x", Slug: "nbdraft-test-hidden", Published: false,
	}); err != nil {
		t.Fatalf("create draft: %v", err)
	}
	last := mustCreatePost(t, posts, "NbDraft C", "nbdraft-test-c")

	prev, _, err := posts.Neighbors(last.ID)
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	if prev == nil || prev.ID != first.ID {
		t.Errorf("prev = %+v, want post %d (the draft between must be skipped)", prev, first.ID)
	}
}

func TestPostSearch(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)
	t.Cleanup(func() { cleanPosts(t, db, "search-test") })

	p, err := posts.Create(&models.Post{
		Title:     "Search Test Kubernetes Guide",
		Subtitle:  "orchestration deep dive",
		Content:   "<p>searchtestuniquebody</p>",
		Slug:      "search-test-k8s",
		Published: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name  string
		query string
		want  bool // whether p should be in the results
	}{
		{"title match case-insensitive", "KUBERNETES", true},
		{"subtitle match", "orchestration", true},
		{"content match", "searchtestuniquebody", true},
		{"no match", "zzz-query-with-no-hits-zzz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := posts.Search(tt.query)
			if err != nil {
				t.Fatalf("Search(%q): %v", tt.query, err)
			}
			found := false
			for _, r := range results {
				if r.ID == p.ID {
					found = true
				}
			}
			if found != tt.want {
				t.Errorf("Search(%q) found=%v, want %v", tt.query, found, tt.want)
			}
		})
	}
}

func TestPostRelatedExcludesSelf(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)
	t.Cleanup(func() { cleanPosts(t, db, "related-test") })

	a := mustCreatePost(t, posts, "Related A", "related-test-a")
	mustCreatePost(t, posts, "Related B", "related-test-b")

	related, err := posts.Related(a.ID, 3)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(related) == 0 {
		t.Fatal("Related returned no posts, want at least one")
	}
	for _, r := range related {
		if r.ID == a.ID {
			t.Errorf("Related included the post itself (id %d)", a.ID)
		}
	}
}

func TestPostDeleteRemovesRow(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)
	t.Cleanup(func() { cleanPosts(t, db, "delete-test") })

	p := mustCreatePost(t, posts, "Delete Test", "delete-test")

	if err := posts.Delete(p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := posts.FindBySlug("delete-test")
	if err != nil {
		t.Fatalf("FindBySlug after delete: %v", err)
	}
	if got != nil {
		t.Errorf("post still resolvable after delete: %+v", got)
	}
}

func TestPostUpdateCategoryAssociation(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)
	cats := NewCategoryStore(db)
	t.Cleanup(func() {
		cleanPosts(t, db, "catassoc-test")
		cleanCategories(t, db, "catassoc-tech")
	})

	cat, err := cats.GetOrCreate("Catassoc Tech")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	// auto-derived slug
	if cat.Slug != "catassoc-tech" {
		t.Fatalf("category slug = %q, want catassoc-tech", cat.Slug)
	}

	p := mustCreatePost(t, posts, "Catassoc Intro", "catassoc-test")
	p.CategoryID = &cat.ID
	if err := posts.Update(p); err != nil {
		t.Fatalf("Update with category: %v", err)
	}

	got, err := posts.FindByID(p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Category == nil || got.Category.Slug != "catassoc-tech" {
		t.Fatalf("post category = %+v, want slug catassoc-tech", got.Category)
	}

	// Clearing the association.
	got.CategoryID = nil
	if err := posts.Update(got); err != nil {
		t.Fatalf("Update clearing category: %v", err)
	}
	cleared, err := posts.FindByID(p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if cleared.CategoryID != nil || cleared.Category != nil {
		t.Errorf("category not cleared: %+v", cleared.Category)
	}
}
