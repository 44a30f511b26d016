package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meowscale/internal/adapter/notify"
	"meowscale/internal/domain"
)

func TestWebhook(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s; want POST", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := notify.NewWebhook(srv.URL, time.Second)
	err := n.Notify(context.Background(), domain.UserProfile{ID: "alice", DisplayName: "Alice"}, "hi", "weigh in")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["userId"] != "alice" || got["title"] != "hi" || got["body"] != "weigh in" {
		t.Errorf("unexpected payload: %v", got)
	}
}

func TestWebhook_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := notify.NewWebhook(srv.URL, time.Second).Notify(context.Background(), domain.UserProfile{ID: "alice"}, "t", "b")
	if err == nil {
		t.Fatal("expected error for a 502 response")
	}
}
