// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"context"
	"net/http"

	"meowscale/internal/app"
	"meowscale/internal/metrics"
)

// Services are the application services the adapter drives.
type Services struct {
	Weights   *app.WeightService
	Profiles  *app.ProfileService
	Partners  *app.PartnerService
	Dashboard *app.DashboardService
	Charts    *app.ChartsService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	svc         Services
	webDir      string
	oidc        *OIDC
	forwardAuth bool
	disableAuth bool
	metrics     *metrics.Metrics
	ready       func(context.Context) error
	routes      map[string]bool
}

// Option configures a Server.
type Option func(*Server)

// WithOIDC enables id_token authentication and the SSO endpoints.
func WithOIDC(o *OIDC) Option {
	return func(s *Server) { s.oidc = o }
}

// WithForwardAuth trusts the Remote-User header set by a reverse proxy.
func WithForwardAuth() Option {
	return func(s *Server) { s.forwardAuth = true }
}

// WithMetrics records request metrics and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithReadiness makes /api/health report the result of check.
func WithReadiness(check func(context.Context) error) Option {
	return func(s *Server) { s.ready = check }
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string, opts ...Option) *Server {
	s := &Server{svc: svc, webDir: webDir}
	for _, o := range opts {
		o(s)
	}
	return s
}

// WithoutAuth makes the server take the user from the X-User-ID header
// without verification. For tests and trusted local setups.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	routes := []struct {
		path    string
		handler http.HandlerFunc
		auth    bool
	}{
		{"/health", s.handleHealth, false},
		{"/config", s.handleConfig, false},
		{"/auth/sso/login", s.handleSSOLogin, false},
		{"/auth/sso/callback", s.handleSSOCallback, false},
		{"/auth/logout", s.handleLogout, false},

		{"/profile", s.handleProfile, true},
		{"/partner/link", s.handlePartnerLink, true},
		{"/partner/unlink", s.handlePartnerUnlink, true},

		{"/weight/today", s.handleWeightToday, true},
		{"/weight/history", s.handleWeightHistory, true},

		{"/dashboard", s.handleDashboard, true},
		{"/charts/trend", s.handleChartsTrend, true},
	}

	api := http.NewServeMux()
	s.routes = map[string]bool{"/metrics": true}
	for _, rt := range routes {
		var h http.Handler = rt.handler
		if rt.auth {
			h = s.authMiddleware(h)
		}
		api.Handle(rt.path, h)
		s.routes["/api"+rt.path] = true
	}

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.metrics != nil {
		root.Handle("/metrics", s.metrics.Handler())
	}
	root.Handle("/", spaFromDisk(s.webDir))

	var h http.Handler = withNoCache(root)
	h = s.metricsMiddleware(h)
	h = s.loggingMiddleware(h)
	return requestID(h)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "store unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
