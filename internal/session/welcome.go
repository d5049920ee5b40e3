package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"
)

// WelcomeCookieName marks that the admin has dismissed the one-time
// welcome screen. The value is HMAC-signed so a forged cookie cannot
// skip the screen on a fresh install.
const WelcomeCookieName = "has_seen_welcome"

const welcomeValue = "true"

// welcomeMaxAge keeps the cookie for a year; the welcome screen is a
// first-run experience, not a session artifact.
const welcomeMaxAge = 365 * 24 * time.Hour

// MarkWelcomeSeen sets the long-lived signed cookie recording that the
// welcome screen has been shown.
func MarkWelcomeSeen(w http.ResponseWriter, secret string) {
	http.SetCookie(w, &http.Cookie{
		Name:     WelcomeCookieName,
		Value:    welcomeValue + "." + signWelcome(secret),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(welcomeMaxAge.Seconds()),
	})
}

// WelcomeSeen reports whether the request carries a validly signed
// welcome cookie.
func WelcomeSeen(r *http.Request, secret string) bool {
	cookie, err := r.Cookie(WelcomeCookieName)
	if err != nil {
		return false
	}
	want := welcomeValue + "." + signWelcome(secret)
	return hmac.Equal([]byte(cookie.Value), []byte(want))
}

func signWelcome(secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(welcomeValue))
	return hex.EncodeToString(mac.Sum(nil))
}
