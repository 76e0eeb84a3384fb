package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reelist/internal/cache"
	"github.com/desertthunder/reelist/internal/shared"
)

// statusWriter records the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// RequestObserver records served requests.
type RequestObserver interface {
	ObserveRequest(method, route string, code int, elapsed time.Duration)
}

// Logging logs every request with its status and latency.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", sw.code(), "elapsed", time.Since(start))
		})
	}
}

// Metrics reports every request to obs, labelled by route template.
func Metrics(obs RequestObserver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			obs.ObserveRequest(r.Method, routeTemplate(r), sw.code(), time.Since(start))
		})
	}
}

type contextKey string

const userKey contextKey = "uid"

// Tokens issues bearer tokens for signed-in API users. Tokens expire with the backing cache.
type Tokens struct {
	cache *cache.TTL[string]
}

// NewTokens creates a token registry over c.
func NewTokens(c *cache.TTL[string]) *Tokens {
	return &Tokens{cache: c}
}

// Issue creates a token for uid.
func (t *Tokens) Issue(uid string) (string, error) {
	token, err := shared.GenerateState()
	if err != nil {
		return "", err
	}
	t.cache.Set(token, uid)
	return token, nil
}

// Resolve returns the user of a live token.
func (t *Tokens) Resolve(token string) (string, bool) {
	return t.cache.Get(token)
}

// Revoke invalidates token
func (t *Tokens) Revoke(token string) {
	t.cache.Delete(token)
}

// RequireUser rejects requests without a live bearer token and stores the user in the context.
func (t *Tokens) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := t.Resolve(bearerToken(r))
		if !ok {
			writeError(w, shared.ErrNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, uid)))
	})
}

// UserFromContext returns the authenticated user set by [Tokens.RequireUser].
func UserFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userKey).(string)
	return uid, ok && uid != ""
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
