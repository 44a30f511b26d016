package domain_test

import (
	"errors"
	"testing"
	"time"

	"meowscale/internal/domain"
)

func TestDayBounds(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	// 2026-01-15 23:30 UTC is already the 16th in UTC+8.
	ts := time.Date(2026, 1, 15, 23, 30, 0, 0, time.UTC)

	start, end := domain.DayBounds(ts, shanghai)
	wantStart := time.Date(2026, 1, 16, 0, 0, 0, 0, shanghai)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v; want %v", start, wantStart)
	}
	if got := end.Sub(start); got != 24*time.Hour {
		t.Errorf("day length = %v; want 24h", got)
	}
	if ts.Before(start) || !ts.Before(end) {
		t.Errorf("%v not within [%v, %v)", ts, start, end)
	}
	if got := domain.LocalDay(ts, shanghai); got != "2026-01-16" {
		t.Errorf("LocalDay = %q; want 2026-01-16", got)
	}
	if got := domain.LocalDay(ts, time.UTC); got != "2026-01-15" {
		t.Errorf("LocalDay UTC = %q; want 2026-01-15", got)
	}
}

func TestLoadLocation(t *testing.T) {
	fallback := time.FixedZone("X", 3600)
	if got := domain.LoadLocation("", fallback); got != fallback {
		t.Errorf("empty name: got %v", got)
	}
	if got := domain.LoadLocation("Not/AZone", fallback); got != fallback {
		t.Errorf("unknown name: got %v", got)
	}
	if got := domain.LoadLocation("UTC", fallback); got.String() != "UTC" {
		t.Errorf("UTC: got %v", got)
	}
}

func TestErrors(t *testing.T) {
	err := domain.Invalid("weight", "must be > 0")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatal("ValidationError should match ErrValidation")
	}
	if err.Error() != "weight: must be > 0" {
		t.Errorf("unexpected message %q", err.Error())
	}

	cause := errors.New("connection refused")
	se := domain.StoreFailure("insert weight", cause)
	var storeErr *domain.StoreError
	if !errors.As(se, &storeErr) || storeErr.Op != "insert weight" {
		t.Fatalf("expected *StoreError, got %v", se)
	}
	if !errors.Is(se, cause) {
		t.Error("StoreError should unwrap to its cause")
	}
	if domain.StoreFailure("get", domain.ErrNotFound) != domain.ErrNotFound {
		t.Error("ErrNotFound must pass through")
	}
	if domain.StoreFailure("get", nil) != nil {
		t.Error("nil must stay nil")
	}
	if domain.StoreFailure("outer", se) != se {
		t.Error("StoreError must not be wrapped twice")
	}
}
