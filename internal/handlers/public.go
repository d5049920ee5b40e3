// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for QuillPress.
// Handlers are grouped by concern (public, auth, admin) and receive
// their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"quillpress/internal/cache"
	"quillpress/internal/models"
	"quillpress/internal/render"
	"quillpress/internal/store"
	"quillpress/internal/upload"
)

const (
	// featuredCount is how many posts the homepage shows.
	featuredCount = 6

	// postsPerPage is the page size of the blog listing.
	postsPerPage = 9

	// relatedCount is how many related posts a post page suggests.
	relatedCount = 3

	// recentCount is how many recent posts the sidebar shows.
	recentCount = 5

	// apiSearchLimit caps the live-search JSON response.
	apiSearchLimit = 8

	// minQueryLen is the shortest search query the site accepts.
	minQueryLen = 2
)

// Public groups handlers for the public-facing site. List pages go
// through the Valkey page cache; the single post page never does,
// because every read increments the view counter.
type Public struct {
	renderer   *render.Renderer
	posts      *store.PostStore
	categories *store.CategoryStore
	comments   *store.CommentStore
	uploads    *upload.Store
	pageCache  *cache.PageCache
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, posts *store.PostStore, categories *store.CategoryStore, comments *store.CommentStore, uploads *upload.Store, pageCache *cache.PageCache) *Public {
	return &Public{
		renderer:   renderer,
		posts:      posts,
		categories: categories,
		comments:   comments,
		uploads:    uploads,
		pageCache:  pageCache,
	}
}

// sidebar loads the category list and recent posts every public page
// shows next to its content.
func (p *Public) sidebar() *render.Sidebar {
	categories, err := p.categories.List()
	if err != nil {
		slog.Error("sidebar categories failed", "error", err)
	}
	recent, err := p.posts.ListFeatured(recentCount)
	if err != nil {
		slog.Error("sidebar recent posts failed", "error", err)
	}
	return &render.Sidebar{Categories: categories, Recent: recent}
}

// writeCached sends a cache hit as HTML.
func writeCached(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

// cachedPage looks up a page in the cache. Requests carrying a pending
// flash message always miss, so a redirect with a message lands on a
// live render that shows it instead of a cached copy that cannot.
func (p *Public) cachedPage(r *http.Request, key string) ([]byte, bool) {
	if render.HasFlash(r) {
		return nil, false
	}
	return p.pageCache.Get(r.Context(), key)
}

// renderCached renders a page, stores it in the page cache and writes
// it. A render with pending flashes is served directly and never
// cached, so the one-time message cannot leak into other visitors'
// copies.
func (p *Public) renderCached(w http.ResponseWriter, r *http.Request, key, tmpl string, data *render.PageData) {
	if render.HasFlash(r) {
		p.renderer.Page(w, r, tmpl, data)
		return
	}
	out, err := p.renderer.Bytes(r, tmpl, data)
	if err != nil {
		slog.Error("render failed", "template", tmpl, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	p.pageCache.Set(r.Context(), key, out)
	writeCached(w, out)
}

// Homepage shows the newest published posts.
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	if cached, ok := p.cachedPage(r, cache.HomepageKey()); ok {
		writeCached(w, cached)
		return
	}

	featured, err := p.posts.ListFeatured(featuredCount)
	if err != nil {
		slog.Error("list featured posts failed", "error", err)
		p.serverError(w, r)
		return
	}

	total, err := p.posts.CountPublished()
	if err != nil {
		slog.Warn("count published posts failed", "error", err)
	}

	p.renderCached(w, r, cache.HomepageKey(), "home", &render.PageData{
		Title:   "Home",
		Section: "home",
		Sidebar: p.sidebar(),
		Data: map[string]any{
			"Featured":  featured,
			"PostCount": total,
		},
	})
}

// Blog shows the paginated post listing. Pages are 1-based; anything
// unparseable or below 1 falls back to page 1.
func (p *Public) Blog(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	if cached, ok := p.cachedPage(r, cache.BlogPageKey(page)); ok {
		writeCached(w, cached)
		return
	}

	posts, err := p.posts.ListPaged(page, postsPerPage)
	if err != nil {
		slog.Error("list paged posts failed", "error", err)
		p.serverError(w, r)
		return
	}

	total, err := p.posts.CountPublished()
	if err != nil {
		slog.Error("count published posts failed", "error", err)
		p.serverError(w, r)
		return
	}
	totalPages := (total + postsPerPage - 1) / postsPerPage

	p.renderCached(w, r, cache.BlogPageKey(page), "blog", &render.PageData{
		Title:   "Blog",
		Section: "blog",
		Sidebar: p.sidebar(),
		Data: map[string]any{
			"Posts":      posts,
			"Page":       page,
			"TotalPages": totalPages,
		},
	})
}

// Category lists the published posts of one category.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	catSlug := chi.URLParam(r, "slug")

	if cached, ok := p.cachedPage(r, cache.CategoryKey(catSlug)); ok {
		writeCached(w, cached)
		return
	}

	category, err := p.categories.FindBySlug(catSlug)
	if err != nil {
		slog.Error("find category failed", "error", err, "slug", catSlug)
		p.serverError(w, r)
		return
	}
	if category == nil {
		render.SetFlash(w, r, "error", "Category not found.")
		http.Redirect(w, r, "/blog", http.StatusSeeOther)
		return
	}

	posts, err := p.posts.ListByCategory(category.ID)
	if err != nil {
		slog.Error("list category posts failed", "error", err, "slug", catSlug)
		p.serverError(w, r)
		return
	}

	p.renderCached(w, r, cache.CategoryKey(catSlug), "category", &render.PageData{
		Title:   category.Name,
		Section: "blog",
		Sidebar: p.sidebar(),
		Data: map[string]any{
			"Category": category,
			"Posts":    posts,
		},
	})
}

// Post shows a single published post with its comments, neighbors and
// related reading. Every successful view bumps the post's counter, so
// this page bypasses the page cache.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	postSlug := chi.URLParam(r, "slug")

	post, err := p.posts.FindBySlug(postSlug)
	if err != nil {
		slog.Error("find post failed", "error", err, "slug", postSlug)
		p.serverError(w, r)
		return
	}
	if post == nil {
		render.SetFlash(w, r, "error", "Post not found.")
		http.Redirect(w, r, "/blog", http.StatusSeeOther)
		return
	}

	if err := p.posts.IncrementViews(post.ID); err != nil {
		slog.Warn("increment views failed", "error", err, "slug", postSlug)
	} else {
		post.Views++
	}

	prev, next, err := p.posts.Neighbors(post.ID)
	if err != nil {
		slog.Warn("post neighbors failed", "error", err, "slug", postSlug)
	}

	related, err := p.posts.Related(post.ID, relatedCount)
	if err != nil {
		slog.Warn("related posts failed", "error", err, "slug", postSlug)
	}

	comments, err := p.comments.ListForPost(post.ID)
	if err != nil {
		slog.Error("list comments failed", "error", err, "slug", postSlug)
		p.serverError(w, r)
		return
	}

	p.renderer.Page(w, r, "post", &render.PageData{
		Title:   post.Title,
		Section: "blog",
		Sidebar: p.sidebar(),
		Data: map[string]any{
			"Post":     post,
			"Prev":     prev,
			"Next":     next,
			"Related":  related,
			"Comments": comments,
		},
	})
}

// PostComment accepts the comment form on a post page. A parent_id that
// is not a plain number is treated as absent, turning a malformed reply
// into a top-level comment rather than an error.
func (p *Public) PostComment(w http.ResponseWriter, r *http.Request) {
	postSlug := chi.URLParam(r, "slug")

	post, err := p.posts.FindBySlug(postSlug)
	if err != nil {
		slog.Error("find post failed", "error", err, "slug", postSlug)
		p.serverError(w, r)
		return
	}
	if post == nil {
		render.SetFlash(w, r, "error", "Post not found.")
		http.Redirect(w, r, "/blog", http.StatusSeeOther)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	text := strings.TrimSpace(r.FormValue("text"))

	if errMsg := validateComment(name, email, text); errMsg != "" {
		render.SetFlash(w, r, "error", errMsg)
		http.Redirect(w, r, "/post/"+post.Slug+"#comments", http.StatusSeeOther)
		return
	}

	comment := &models.Comment{
		Name:   name,
		Email:  email,
		Body:   text,
		PostID: post.ID,
	}
	if parentID, err := strconv.ParseInt(r.FormValue("parent_id"), 10, 64); err == nil {
		comment.ParentID = &parentID
	}

	if _, err := p.comments.Create(comment); err != nil {
		if errors.Is(err, store.ErrParentMismatch) {
			render.SetFlash(w, r, "error", "The comment you replied to no longer exists.")
			http.Redirect(w, r, "/post/"+post.Slug+"#comments", http.StatusSeeOther)
			return
		}
		slog.Error("create comment failed", "error", err, "slug", postSlug)
		p.serverError(w, r)
		return
	}

	render.SetFlash(w, r, "success", "Your comment has been posted.")
	http.Redirect(w, r, "/post/"+post.Slug+"#comments", http.StatusSeeOther)
}

// SearchPage shows full search results. Queries shorter than two
// characters are bounced back to the blog with a message instead of
// hitting the database.
func (p *Public) SearchPage(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	if utf8.RuneCountInString(query) < minQueryLen {
		render.SetFlash(w, r, "error", "Search queries must be at least 2 characters.")
		http.Redirect(w, r, "/blog", http.StatusSeeOther)
		return
	}

	posts, err := p.posts.Search(query)
	if err != nil {
		slog.Error("search failed", "error", err, "query", query)
		p.serverError(w, r)
		return
	}

	p.renderer.Page(w, r, "search", &render.PageData{
		Title:   "Search",
		Section: "blog",
		Sidebar: p.sidebar(),
		Data: map[string]any{
			"Query": query,
			"Posts": posts,
		},
	})
}

// APISearch serves the live-search box: up to eight title matches as JSON.
func (p *Public) APISearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	type result struct {
		Title   string `json:"title"`
		Slug    string `json:"slug"`
		Excerpt string `json:"excerpt"`
	}
	results := []result{}

	if utf8.RuneCountInString(query) >= minQueryLen {
		posts, err := p.posts.SearchTitles(query, apiSearchLimit)
		if err != nil {
			slog.Error("api search failed", "error", err, "query", query)
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		for _, post := range posts {
			results = append(results, result{Title: post.Title, Slug: post.Slug, Excerpt: post.Excerpt})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// About renders the about page with a couple of site stats.
func (p *Public) About(w http.ResponseWriter, r *http.Request) {
	postCount, err := p.posts.CountPublished()
	if err != nil {
		slog.Warn("count published posts failed", "error", err)
	}
	categoryCount, err := p.categories.Count()
	if err != nil {
		slog.Warn("count categories failed", "error", err)
	}

	p.renderer.Page(w, r, "about", &render.PageData{
		Title:   "About",
		Section: "about",
		Sidebar: p.sidebar(),
		Data: map[string]any{
			"PostCount":     postCount,
			"CategoryCount": categoryCount,
		},
	})
}

// Contact renders the contact page with its message form.
func (p *Public) Contact(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "contact", &render.PageData{
		Title:   "Contact",
		Section: "contact",
		Sidebar: p.sidebar(),
		Data:    map[string]any{},
	})
}

// ContactSubmit validates the contact form and acknowledges it with a
// flash. Messages are not stored anywhere.
func (p *Public) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	message := strings.TrimSpace(r.FormValue("message"))

	if name == "" || email == "" || message == "" {
		render.SetFlash(w, r, "error", "All fields are required.")
	} else {
		render.SetFlash(w, r, "success", "Thanks for your message.")
	}
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}

// Uploads serves stored post images from the upload directory.
func (p *Public) Uploads(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	http.ServeFile(w, r, p.uploads.Path(filename))
}

// serverError renders the site 500 page.
func (p *Public) serverError(w http.ResponseWriter, r *http.Request) {
	p.renderer.PageWithStatus(w, r, http.StatusInternalServerError, "error", &render.PageData{
		Title: "Something Went Wrong",
		Data:  map[string]any{},
	})
}

// NotFound renders the site 404 page.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.renderer.PageWithStatus(w, r, http.StatusNotFound, "notfound", &render.PageData{
		Title:   "Not Found",
		Sidebar: p.sidebar(),
		Data:    map[string]any{},
	})
}
