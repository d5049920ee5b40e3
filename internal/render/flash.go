package render

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// flashCookie carries one-time notification messages across a redirect.
const flashCookie = "qp_flash"

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string `json:"type"` // "success", "error", "warning", "info"
	Message string `json:"message"`
}

// SetFlash queues a flash message to be shown on the next rendered page.
// Messages accumulate until PopFlashes consumes them.
func SetFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	flashes := readFlashes(r)
	flashes = append(flashes, Flash{Type: kind, Message: message})

	payload, err := json.Marshal(flashes)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// HasFlash reports whether the request carries pending flash messages.
// Cached pages are rendered without flash handling, so handlers use
// this to fall back to a live render when a message is waiting.
func HasFlash(r *http.Request) bool {
	return len(readFlashes(r)) > 0
}

// PopFlashes returns all pending flash messages and clears the cookie.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if flashes == nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	return flashes
}

func readFlashes(r *http.Request) []Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	payload, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var flashes []Flash
	if err := json.Unmarshal(payload, &flashes); err != nil {
		return nil
	}
	return flashes
}
