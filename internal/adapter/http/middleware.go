package adapthttp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"meowscale/internal/logging"
)

type contextKey string

const userContextKey contextKey = "user"

const (
	headerRequestID   = "X-Request-ID"
	headerUserID      = "X-User-ID"
	headerUserEmail   = "X-User-Email"
	headerRemoteUser  = "Remote-User"
	headerRemoteEmail = "Remote-Email"
	idTokenCookie     = "id_token"
)

// Identity is the authenticated caller. Email is empty when the identity
// source does not provide one.
type Identity struct {
	ID    string
	Email string
}

func withUser(r *http.Request, id Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userContextKey, id))
}

func identityFromContext(r *http.Request) Identity {
	id, _ := r.Context().Value(userContextKey).(Identity)
	return id
}

// userFromContext returns the authenticated user ID. Handlers behind
// authMiddleware always get a non-empty value.
func userFromContext(r *http.Request) string {
	return identityFromContext(r).ID
}

// authMiddleware resolves the calling user from, in order: the X-User-ID
// header when auth is disabled, the Remote-User header when forward auth is
// enabled, and an OIDC id_token from the Authorization header or cookie.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.disableAuth {
			if uid := r.Header.Get(headerUserID); uid != "" {
				next.ServeHTTP(w, withUser(r, Identity{ID: uid, Email: r.Header.Get(headerUserEmail)}))
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if s.forwardAuth {
			if uid := r.Header.Get(headerRemoteUser); uid != "" {
				next.ServeHTTP(w, withUser(r, Identity{ID: uid, Email: r.Header.Get(headerRemoteEmail)}))
				return
			}
		}

		if s.oidc != nil {
			if raw := bearerToken(r); raw != "" {
				id, err := s.oidc.Identify(r.Context(), raw)
				if err == nil {
					next.ServeHTTP(w, withUser(r, id))
					return
				}
				slog.InfoContext(r.Context(), "rejected id token", "err", err)
			}
		}

		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(idTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// requestID tags the request context with a trace ID taken from
// X-Request-ID or freshly generated, and echoes it in the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(logging.WithTraceID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.ObserveRequest(r.Method, s.routeLabel(r.URL.Path), rec.status, time.Since(start))
	})
}

// routeLabel maps a request path onto a bounded label set. Unknown API paths
// share the "unmatched" label.
func (s *Server) routeLabel(p string) string {
	switch {
	case s.routes[p]:
		return p
	case strings.HasPrefix(p, "/api/"):
		return "unmatched"
	default:
		return "static"
	}
}
