package adapthttp

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meowscale/internal/logging"
)

func TestLoggingMiddleware(t *testing.T) {
	s := &Server{}
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("OK"))
	})

	handler := requestID(s.loggingMiddleware(nextHandler))

	var buf bytes.Buffer
	original := slog.Default()
	slog.SetDefault(logging.New(&buf, "json", slog.LevelInfo))
	defer slog.SetDefault(original)

	req := httptest.NewRequest("GET", "/test-path", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, w.Code)
	}
	if got := w.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("request id not echoed, got %q", got)
	}

	logOutput := buf.String()
	for _, want := range []string{`"method":"GET"`, `"path":"/test-path"`, `"status":418`, `"trace_id":"req-42"`} {
		if !strings.Contains(logOutput, want) {
			t.Errorf("Log output missing %s. Got: %s", want, logOutput)
		}
	}
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	handler := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.TraceID(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if seen == "" || w.Header().Get("X-Request-ID") != seen {
		t.Errorf("expected generated id in context and header, got %q / %q", seen, w.Header().Get("X-Request-ID"))
	}
}

func TestRouteLabel(t *testing.T) {
	s := New(Services{}, t.TempDir())
	s.Handler()

	tests := map[string]string{
		"/api/weight/today":  "/api/weight/today",
		"/api/charts/trend":  "/api/charts/trend",
		"/metrics":           "/metrics",
		"/api/junk-42":       "unmatched",
		"/api/weight/today/": "unmatched",
		"/assets/app.js":     "static",
		"/":                  "static",
	}
	for in, want := range tests {
		if got := s.routeLabel(in); got != want {
			t.Errorf("routeLabel(%q) = %q; want %q", in, got, want)
		}
	}
}
