package domain_test

import (
	"errors"
	"testing"

	"meowscale/internal/domain"
)

func TestComputeBMI(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		height float64
		want   float64
	}{
		{"reference case", 70.0, 170, 24.2},
		{"short and light", 45.5, 155, 18.9},
		{"tall", 92.3, 191, 25.3},
		{"rounds down", 52.0, 160, 20.3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := domain.ComputeBMI(tc.weight, tc.height)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ComputeBMI(%v, %v) = %v; want %v", tc.weight, tc.height, got, tc.want)
			}
		})
	}
}

func TestComputeBMI_Invalid(t *testing.T) {
	if _, err := domain.ComputeBMI(70, 0); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for zero height, got %v", err)
	}
	if _, err := domain.ComputeBMI(-1, 170); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for negative weight, got %v", err)
	}
}

func TestRound1(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{24.25, 24.3},
		{-0.25, -0.3},
		{70.04, 70.0},
		{0.6000000000000085, 0.6},
	}
	for _, tc := range tests {
		if got := domain.Round1(tc.in); got != tc.want {
			t.Errorf("Round1(%v) = %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestCategorize(t *testing.T) {
	th := domain.DefaultBMIThresholds
	tests := []struct {
		bmi  float64
		want domain.BMICategory
	}{
		{16.0, domain.BMIUnderweight},
		{18.4, domain.BMIUnderweight},
		{18.5, domain.BMINormal},
		{23.9, domain.BMINormal},
		{24.0, domain.BMIOverweight},
		{27.9, domain.BMIOverweight},
		{28.0, domain.BMIObese},
		{35.0, domain.BMIObese},
	}
	for _, tc := range tests {
		if got := th.Categorize(tc.bmi); got != tc.want {
			t.Errorf("Categorize(%v) = %q; want %q", tc.bmi, got, tc.want)
		}
	}
}

func TestThresholdsFromSlice(t *testing.T) {
	th, err := domain.ThresholdsFromSlice([]float64{18.5, 25, 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := th.Categorize(24.5); got != domain.BMINormal {
		t.Errorf("Categorize(24.5) = %q with WHO bounds; want normal", got)
	}

	for _, bad := range [][]float64{nil, {18.5, 24}, {24, 18.5, 28}, {0, 24, 28}} {
		if _, err := domain.ThresholdsFromSlice(bad); err == nil {
			t.Errorf("ThresholdsFromSlice(%v): expected error", bad)
		}
	}
}

func TestGoalProgress(t *testing.T) {
	initial := 80.0
	same := 70.0
	tests := []struct {
		name    string
		current float64
		target  float64
		initial *float64
		want    float64
	}{
		{"halfway", 75, 70, &initial, 50},
		{"reached", 70, 70, &initial, 100},
		{"moved away", 85, 70, &initial, 0},
		{"no initial", 71, 70, nil, 90},
		{"initial equals target", 72, 70, &same, 80},
		{"far without initial", 90, 70, nil, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.GoalProgress(tc.current, tc.target, tc.initial)
			if !almostEqual(got, tc.want, 1e-9) {
				t.Errorf("GoalProgress = %v; want %v", got, tc.want)
			}
		})
	}
}
