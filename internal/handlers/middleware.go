package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"khamboran/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const TeacherContextKey ContextKey = "teacher"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens      *security.TokenIssuer
	csrf        *security.CSRF
	rateLimiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *security.TokenIssuer, csrf *security.CSRF) *Middleware {
	return &Middleware{
		tokens:      tokens,
		csrf:        csrf,
		rateLimiter: security.NewRateLimiter(10, time.Minute),
	}
}

// RequireTeacher validates the dashboard cookie and adds the claims to the
// request context.
func (m *Middleware) RequireTeacher(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(DashboardCookieName)
		if err != nil || cookie.Value == "" {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		claims, err := m.tokens.Verify(cookie.Value)
		if err != nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, DashboardCookieName))
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		ctx := context.WithValue(r.Context(), TeacherContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// CSRFProtect checks the X-CSRF-Token header on mutating dashboard calls.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(TeacherContextKey).(*security.DashboardClaims)
		if !ok || !m.csrf.Valid(claims.Email, r.Header.Get("X-CSRF-Token")) {
			respondWithError(w, http.StatusForbidden, "Invalid CSRF token", "", nil)
			return
		}
		next(w, r)
	}
}

// Logging wraps the mux with a request log line.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// RateLimit bounds login attempts per client IP.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.rateLimiter.Allow(security.ClientIP(r)) {
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}
