// Package middleware holds the HTTP middleware for the dashboard.
package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

type contextKey string

// CSRFTokenKey carries the per-session token through the request
// context so page templates can embed it.
const CSRFTokenKey contextKey = "csrf_token"

func generateToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Token returns the CSRF token injected by the middleware, or "" when
// the handler runs unwrapped.
func Token(r *http.Request) string {
	token, _ := r.Context().Value(CSRFTokenKey).(string)
	return token
}

// CSRF implements the double-submit pattern: a token cookie is issued
// on first contact, and every POST must echo it back in the
// X-CSRF-Token header or a csrf_token form value. The dashboard's
// search endpoint sends the header from the embedded page token.
func CSRF(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if cookie, err := r.Cookie("csrf_token"); err == nil {
			token = cookie.Value
		}
		if token == "" {
			token = generateToken()
			http.SetCookie(w, &http.Cookie{
				Name:     "csrf_token",
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		if r.Method == http.MethodPost {
			echoed := r.Header.Get("X-CSRF-Token")
			if echoed == "" {
				echoed = r.FormValue("csrf_token")
			}
			if subtle.ConstantTimeCompare([]byte(echoed), []byte(token)) != 1 {
				http.Error(w, "Invalid CSRF Token", http.StatusForbidden)
				return
			}
		}

		ctx := context.WithValue(r.Context(), CSRFTokenKey, token)
		next(w, r.WithContext(ctx))
	}
}
