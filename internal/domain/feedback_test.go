package domain_test

import (
	"strings"
	"testing"

	"meowscale/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func TestClassifyFeedback(t *testing.T) {
	tests := []struct {
		name  string
		kind  domain.OutcomeKind
		delta *float64
		want  domain.FeedbackKind
	}{
		{"gain above threshold", domain.OutcomeAdd, ptr(0.6), domain.FeedbackMockery},
		{"loss above threshold", domain.OutcomeAdd, ptr(-0.7), domain.FeedbackPraise},
		{"small gain", domain.OutcomeAdd, ptr(0.2), domain.FeedbackNeutral},
		{"exact threshold gain", domain.OutcomeAdd, ptr(0.5), domain.FeedbackNeutral},
		{"exact threshold loss", domain.OutcomeAdd, ptr(-0.5), domain.FeedbackNeutral},
		{"gain just over threshold", domain.OutcomeAdd, ptr(0.54), domain.FeedbackMockery},
		{"loss just over threshold", domain.OutcomeAdd, ptr(-0.54), domain.FeedbackPraise},
		{"first record", domain.OutcomeAdd, nil, domain.FeedbackPraise},
		{"update ignores gain", domain.OutcomeUpdate, ptr(3.0), domain.FeedbackNeutral},
		{"update ignores loss", domain.OutcomeUpdate, ptr(-3.0), domain.FeedbackNeutral},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.ClassifyFeedback(tc.kind, tc.delta)
			if got.Kind != tc.want {
				t.Errorf("ClassifyFeedback(%q, %v).Kind = %q; want %q", tc.kind, tc.delta, got.Kind, tc.want)
			}
			if got.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestClassifyFeedback_MessageCarriesDelta(t *testing.T) {
	got := domain.ClassifyFeedback(domain.OutcomeAdd, ptr(-0.7))
	if !strings.Contains(got.Message, "0.7kg") {
		t.Errorf("expected message to mention 0.7kg, got %q", got.Message)
	}
	got = domain.ClassifyFeedback(domain.OutcomeAdd, ptr(1.2))
	if !strings.Contains(got.Message, "1.2kg") {
		t.Errorf("expected message to mention 1.2kg, got %q", got.Message)
	}
}

func TestClassifyFeedback_FloatNoiseAtThreshold(t *testing.T) {
	prev, next := 70.6, 71.1
	d := next - prev
	if got := domain.ClassifyFeedback(domain.OutcomeAdd, &d); got.Kind != domain.FeedbackNeutral {
		t.Errorf("a 0.5kg gain (%v) should be stable, got %q", d, got.Kind)
	}
}
