// Package router sets up all HTTP routes and middleware chains for
// QuillPress. It organizes routes into public and admin groups with
// appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quillpress/internal/handlers"
	"quillpress/internal/middleware"
	"quillpress/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. The rate limiter guards the two endpoints
// anonymous visitors can write through: login and the comment form.
func New(sessionStore *session.Store, limiter *middleware.RateLimiter, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CSRF)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no session.
	r.Get("/health", healthHandler)

	// Admin routes.
	r.Route("/admin", func(r chi.Router) {
		// Auth pages — accessible without a session.
		r.Get("/login", auth.LoginPage)
		r.With(limiter.Middleware).Post("/login", auth.LoginSubmit)
		r.Get("/logout", auth.Logout)

		// Authenticated admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/", admin.Panel)
			r.Get("/panel", admin.Panel)
			r.Get("/welcome", auth.WelcomePage)
			r.Post("/welcome", auth.WelcomeSubmit)

			r.Get("/add", admin.AddPage)
			r.Post("/add", admin.AddSubmit)
			r.Get("/edit/{id}", admin.EditPage)
			r.Post("/edit/{id}", admin.EditSubmit)
			r.Get("/delete/{id}", admin.Delete)
			r.Post("/delete/{id}", admin.Delete)

			r.Get("/change-password", auth.ChangePasswordPage)
			r.Post("/change-password", auth.ChangePasswordSubmit)
		})
	})

	// Public routes.
	r.Get("/", public.Homepage)
	r.Get("/blog", public.Blog)
	r.Get("/category/{slug}", public.Category)
	r.Get("/post/{slug}", public.Post)
	r.With(limiter.Middleware).Post("/post/{slug}", public.PostComment)
	r.Get("/search", public.SearchPage)
	r.Get("/api/search", public.APISearch)
	r.Get("/about", public.About)
	r.Get("/contact", public.Contact)
	r.Post("/contact", public.ContactSubmit)
	r.Get("/uploads/{filename}", public.Uploads)

	r.NotFound(public.NotFound)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
