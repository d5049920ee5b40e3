package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
)

const (
	// csrfTokenLength is the byte length of CSRF tokens (32 bytes = 64 hex chars).
	csrfTokenLength = 32

	// CSRFCookieName is the cookie that holds the CSRF token.
	CSRFCookieName = "qp_csrf"

	// CSRFFormField is the hidden form field carrying the token in
	// admin and comment forms. Multipart forms carry it in the action
	// URL's query string instead.
	CSRFFormField = "csrf_token"

	// CSRFHeader carries the token for clients that set headers, like
	// the search box fetch calls.
	CSRFHeader = "X-CSRF-Token"

	// csrfCtxKey is the context key the middleware stores the token
	// under, so templates can embed it even on the request that first
	// issued the cookie.
	csrfCtxKey contextKey = "csrf_token"
)

// CSRF provides double-submit cookie CSRF protection. It generates a
// token stored in a cookie and validates that subsequent state-changing
// requests (POST, PUT, PATCH, DELETE) include the same token as a
// hidden form field.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Ensure a CSRF token cookie exists.
		cookie, err := r.Cookie(CSRFCookieName)
		if err != nil || cookie.Value == "" {
			token, err := generateCSRFToken()
			if err != nil {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CSRFCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   false, // Set to true behind TLS
				SameSite: http.SameSiteLaxMode,
			})
			cookie = &http.Cookie{Value: token}
		}

		r = r.WithContext(context.WithValue(r.Context(), csrfCtxKey, cookie.Value))

		// Safe methods don't need CSRF validation.
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		submitted := submittedToken(r)
		if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(submitted)) != 1 {
			http.Error(w, "CSRF token mismatch", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// submittedToken locates the request's CSRF token without consuming a
// multipart body. Parsing a multipart form here would buffer the whole
// upload before the handler can install its own size limit, so the
// upload forms put the token in the query string instead.
func submittedToken(r *http.Request) string {
	if h := r.Header.Get(CSRFHeader); h != "" {
		return h
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.URL.Query().Get(CSRFFormField)
	}
	return r.FormValue(CSRFFormField)
}

// CSRFTokenFromCtx returns the token the CSRF middleware stored in the
// request context. Used in templates to populate hidden form fields.
func CSRFTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(csrfCtxKey).(string)
	return token
}

// GetCSRFToken extracts the current CSRF token from the request cookie.
func GetCSRFToken(r *http.Request) string {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// generateCSRFToken creates a cryptographically random token.
func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
