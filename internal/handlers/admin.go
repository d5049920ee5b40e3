// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"quillpress/internal/cache"
	"quillpress/internal/excerpt"
	"quillpress/internal/markdown"
	"quillpress/internal/models"
	"quillpress/internal/render"
	"quillpress/internal/session"
	"quillpress/internal/slug"
	"quillpress/internal/store"
	"quillpress/internal/upload"
)

// Admin groups the post management handlers behind the admin panel.
// Every write invalidates the whole page cache; the public site is
// small enough that rebuilding a handful of cached pages is cheaper
// than tracking which listing a post appears on.
type Admin struct {
	renderer      *render.Renderer
	posts         *store.PostStore
	categories    *store.CategoryStore
	comments      *store.CommentStore
	uploads       *upload.Store
	pageCache     *cache.PageCache
	secret        string
	maxUploadSize int64
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer, posts *store.PostStore, categories *store.CategoryStore, comments *store.CommentStore, uploads *upload.Store, pageCache *cache.PageCache, secret string, maxUploadSize int64) *Admin {
	return &Admin{
		renderer:      renderer,
		posts:         posts,
		categories:    categories,
		comments:      comments,
		uploads:       uploads,
		pageCache:     pageCache,
		secret:        secret,
		maxUploadSize: maxUploadSize,
	}
}

const defaultAuthor = "Admin"

// wordsPerMinute is the reading speed behind the "N min read" label.
const wordsPerMinute = 200

// readTime estimates how long a post takes to read, with a one minute
// floor so short posts do not show "0 min read".
func readTime(content string) string {
	minutes := len(strings.Fields(content)) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return strconv.Itoa(minutes) + " min read"
}

type panelStats struct {
	Published int
	Total     int
	Views     int64
	Comments  int
}

// Panel shows the dashboard: post counts, total views and the full
// post table, drafts included.
func (a *Admin) Panel(w http.ResponseWriter, r *http.Request) {
	if !session.WelcomeSeen(r, a.secret) {
		http.Redirect(w, r, "/admin/welcome", http.StatusSeeOther)
		return
	}

	var stats panelStats
	var err error
	if stats.Published, err = a.posts.CountPublished(); err != nil {
		slog.Warn("count published failed", "error", err)
	}
	if stats.Total, err = a.posts.CountAll(); err != nil {
		slog.Warn("count posts failed", "error", err)
	}
	if stats.Views, err = a.posts.TotalViews(); err != nil {
		slog.Warn("total views failed", "error", err)
	}
	if stats.Comments, err = a.comments.Count(); err != nil {
		slog.Warn("count comments failed", "error", err)
	}

	posts, err := a.posts.List()
	if err != nil {
		slog.Error("list posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "admin_panel", &render.PageData{
		Title: "Dashboard",
		Data: map[string]any{
			"Stats": stats,
			"Posts": posts,
		},
	})
}

// AddPage shows the empty post form.
func (a *Admin) AddPage(w http.ResponseWriter, r *http.Request) {
	a.renderForm(w, r, "New Post", "/admin/add", nil)
}

// AddSubmit creates a post from the submitted form.
func (a *Admin) AddSubmit(w http.ResponseWriter, r *http.Request) {
	form, errMsg := a.parsePostForm(w, r)
	if errMsg != "" {
		render.SetFlash(w, r, "error", errMsg)
		http.Redirect(w, r, "/admin/add", http.StatusSeeOther)
		return
	}

	post := &models.Post{
		Title:         form.title,
		Subtitle:      form.subtitle,
		Author:        form.author,
		ReadTime:      form.readTime,
		Content:       form.content,
		ContentFormat: form.contentFormat,
		Excerpt:       excerpt.Generate(form.content, excerpt.DefaultLength),
		Published:     form.published,
		CategoryID:    form.categoryID,
		Image:         form.image,
	}

	postSlug := form.slug
	if postSlug == "" {
		postSlug = slug.Generate(post.Title)
	}
	if exists, err := a.posts.SlugExists(postSlug); err == nil && exists {
		postSlug = slug.Disambiguate(postSlug, time.Now())
	}
	post.Slug = postSlug

	created, err := a.posts.Create(post)
	if errors.Is(err, store.ErrDuplicateSlug) {
		post.Slug = slug.Randomize(postSlug)
		created, err = a.posts.Create(post)
	}
	if err != nil {
		slog.Error("create post failed", "error", err, "title", post.Title)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	slog.Info("post created", "id", created.ID, "slug", created.Slug)
	render.SetFlash(w, r, "success", "Post created.")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// EditPage shows the post form pre-filled with an existing post.
func (a *Admin) EditPage(w http.ResponseWriter, r *http.Request) {
	post, ok := a.loadPost(w, r)
	if !ok {
		return
	}
	a.renderForm(w, r, "Edit Post", "/admin/edit/"+strconv.FormatInt(post.ID, 10), post)
}

// EditSubmit updates an existing post. The slug stays stable so
// published URLs keep working; an empty category field detaches the
// post from its category.
func (a *Admin) EditSubmit(w http.ResponseWriter, r *http.Request) {
	post, ok := a.loadPost(w, r)
	if !ok {
		return
	}
	editURL := "/admin/edit/" + strconv.FormatInt(post.ID, 10)

	form, errMsg := a.parsePostForm(w, r)
	if errMsg != "" {
		render.SetFlash(w, r, "error", errMsg)
		http.Redirect(w, r, editURL, http.StatusSeeOther)
		return
	}

	post.Title = form.title
	post.Subtitle = form.subtitle
	post.Author = form.author
	post.ReadTime = form.readTime
	post.Content = form.content
	post.ContentFormat = form.contentFormat
	post.Excerpt = excerpt.Generate(form.content, excerpt.DefaultLength)
	post.Published = form.published
	post.CategoryID = form.categoryID

	// The slug only changes when the form supplies one explicitly.
	if form.slug != "" {
		post.Slug = form.slug
	}

	// The old image is removed only after the update lands; until then
	// the stored row still references it.
	var oldImage *string
	if form.image != nil {
		oldImage = post.Image
		post.Image = form.image
	}

	if err := a.posts.Update(post); err != nil {
		if form.image != nil {
			a.uploads.Remove(*form.image)
		}
		if errors.Is(err, store.ErrDuplicateSlug) {
			render.SetFlash(w, r, "error", "That slug is already in use.")
			http.Redirect(w, r, editURL, http.StatusSeeOther)
			return
		}
		slog.Error("update post failed", "error", err, "id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if oldImage != nil {
		a.uploads.Remove(*oldImage)
	}

	a.pageCache.InvalidateAll(r.Context())
	slog.Info("post updated", "id", post.ID, "slug", post.Slug)
	render.SetFlash(w, r, "success", "Post updated.")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Delete removes a post together with its uploaded cover image.
func (a *Admin) Delete(w http.ResponseWriter, r *http.Request) {
	post, ok := a.loadPost(w, r)
	if !ok {
		return
	}

	if post.Image != nil {
		a.uploads.Remove(*post.Image)
	}

	if err := a.posts.Delete(post.ID); err != nil {
		slog.Error("delete post failed", "error", err, "id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	slog.Info("post deleted", "id", post.ID, "slug", post.Slug)
	render.SetFlash(w, r, "success", "Post deleted.")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// loadPost resolves the {id} route parameter to a post. An unknown id
// bounces back to the panel with a message.
func (a *Admin) loadPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		render.SetFlash(w, r, "error", "Post not found.")
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return nil, false
	}
	post, err := a.posts.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if post == nil {
		render.SetFlash(w, r, "error", "Post not found.")
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return nil, false
	}
	return post, true
}

func (a *Admin) renderForm(w http.ResponseWriter, r *http.Request, title, action string, post *models.Post) {
	categories, err := a.categories.List()
	if err != nil {
		slog.Warn("list categories failed", "error", err)
	}
	a.renderer.Page(w, r, "admin_form", &render.PageData{
		Title: title,
		Data: map[string]any{
			"Action":     action,
			"Post":       post,
			"Categories": categories,
		},
	})
}

// postForm holds the parsed and normalized post form fields.
type postForm struct {
	title         string
	subtitle      string
	author        string
	readTime      string
	slug          string
	content       string
	contentFormat models.ContentFormat
	published     bool
	categoryID    *int64
	image         *string
}

// parsePostForm reads the multipart post form shared by the add and
// edit handlers. Markdown content is converted to HTML before it is
// stored, so the public site never renders markdown at request time.
// It returns a user-facing error message when the input is rejected.
func (a *Admin) parsePostForm(w http.ResponseWriter, r *http.Request) (*postForm, string) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadSize)
	if err := r.ParseMultipartForm(a.maxUploadSize); err != nil {
		return nil, "The submitted form is too large."
	}

	form := &postForm{
		title:         strings.TrimSpace(r.FormValue("title")),
		subtitle:      strings.TrimSpace(r.FormValue("subtitle")),
		author:        strings.TrimSpace(r.FormValue("author")),
		readTime:      strings.TrimSpace(r.FormValue("readtime")),
		content:       r.FormValue("content"),
		contentFormat: models.ContentFormat(r.FormValue("content_format")),
		published:     r.FormValue("published") != "",
	}
	if form.contentFormat != models.FormatMarkdown {
		form.contentFormat = models.FormatHTML
	}
	if form.author == "" {
		form.author = defaultAuthor
	}
	if form.readTime == "" {
		form.readTime = readTime(form.content)
	}
	if explicit := strings.TrimSpace(r.FormValue("slug")); explicit != "" {
		form.slug = slug.Generate(explicit)
	}

	if errMsg := validatePost(form.title, form.content); errMsg != "" {
		return nil, errMsg
	}

	if form.contentFormat == models.FormatMarkdown {
		html, err := markdown.ToHTML(form.content)
		if err != nil {
			slog.Warn("markdown conversion failed", "error", err)
			return nil, "The markdown content could not be converted."
		}
		form.content = html
	}

	if name := strings.TrimSpace(r.FormValue("category")); name != "" {
		category, err := a.categories.GetOrCreate(name)
		if err != nil {
			slog.Error("get or create category failed", "error", err, "name", name)
			return nil, "The category could not be saved."
		}
		form.categoryID = &category.ID
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == http.ErrMissingFile:
		// no image uploaded
	case err != nil:
		return nil, "The image upload could not be read."
	default:
		defer file.Close()
		if !a.uploads.Allowed(header.Filename) {
			return nil, "Only png, jpg, jpeg, gif and webp images are allowed."
		}
		stored, err := a.uploads.Save(file, header.Filename)
		if err != nil {
			slog.Error("store upload failed", "error", err, "filename", header.Filename)
			return nil, "The image could not be stored."
		}
		form.image = &stored
	}

	return form, ""
}
