// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"quillpress/internal/middleware"
	"quillpress/internal/render"
	"quillpress/internal/session"
	"quillpress/internal/store"
)

// Auth groups the login, logout and account handlers for the single
// admin account.
type Auth struct {
	renderer *render.Renderer
	sessions *session.Store
	admins   *store.AdminStore
	secret   string
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, admins *store.AdminStore, secret string) *Auth {
	return &Auth{renderer: renderer, sessions: sessions, admins: admins, secret: secret}
}

// LoginPage shows the admin login form. An already signed-in admin is
// sent straight to the panel.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.Admin {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Login",
		Data:  map[string]any{},
	})
}

// LoginSubmit checks the submitted credentials and opens a session.
// First-time sign-ins are routed through a one-off welcome page.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	account, err := a.admins.Get()
	if err != nil {
		slog.Error("load admin account failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if account == nil || !strings.EqualFold(email, account.Email) || !a.admins.CheckPassword(account, password) {
		slog.Warn("failed login attempt", "email", email)
		a.renderer.PageWithStatus(w, r, http.StatusUnauthorized, "login", &render.PageData{
			Title: "Login",
			Data:  map[string]any{"Error": "Invalid email or password."},
		})
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{Admin: true, Email: account.Email}); err != nil {
		slog.Error("create session failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("admin logged in", "email", account.Email)

	if !session.WelcomeSeen(r, a.secret) {
		http.Redirect(w, r, "/admin/welcome", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// WelcomePage shows the one-off post-login welcome screen. Viewing it
// sets the signed cookie, so the screen never appears twice in the
// same browser.
func (a *Auth) WelcomePage(w http.ResponseWriter, r *http.Request) {
	if session.WelcomeSeen(r, a.secret) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	session.MarkWelcomeSeen(w, a.secret)
	a.renderer.Page(w, r, "welcome", &render.PageData{
		Title: "Welcome",
		Data:  map[string]any{},
	})
}

// WelcomeSubmit continues from the welcome screen to the panel,
// re-stamping the cookie in case the GET response was never stored.
func (a *Auth) WelcomeSubmit(w http.ResponseWriter, r *http.Request) {
	session.MarkWelcomeSeen(w, a.secret)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout destroys the session and returns to the public site.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("destroy session failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ChangePasswordPage shows the password change form.
func (a *Auth) ChangePasswordPage(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "change_password", &render.PageData{
		Title: "Change Password",
		Data:  map[string]any{},
	})
}

// ChangePasswordSubmit verifies the current password and stores the new one.
func (a *Auth) ChangePasswordSubmit(w http.ResponseWriter, r *http.Request) {
	current := r.FormValue("current_password")
	next := r.FormValue("new_password")
	confirm := r.FormValue("confirm_password")

	if errMsg := validatePasswordChange(current, next, confirm); errMsg != "" {
		render.SetFlash(w, r, "error", errMsg)
		http.Redirect(w, r, "/admin/change-password", http.StatusSeeOther)
		return
	}

	account, err := a.admins.Get()
	if err != nil || account == nil {
		slog.Error("load admin account failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !a.admins.CheckPassword(account, current) {
		render.SetFlash(w, r, "error", "Current password is incorrect.")
		http.Redirect(w, r, "/admin/change-password", http.StatusSeeOther)
		return
	}

	if err := a.admins.UpdatePassword(next); err != nil {
		slog.Error("update password failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("admin password changed", "email", account.Email)
	render.SetFlash(w, r, "success", "Password updated.")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
