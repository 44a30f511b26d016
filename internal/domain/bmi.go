package domain

import (
	"fmt"
	"math"
)

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ComputeBMI returns weightKg / (heightCm/100)^2 rounded with Round1.
func ComputeBMI(weightKg, heightCm float64) (float64, error) {
	if heightCm <= 0 {
		return 0, Invalid("height", "must be > 0")
	}
	if weightKg <= 0 {
		return 0, Invalid("weight", "must be > 0")
	}
	m := heightCm / 100
	return Round1(weightKg / (m * m)), nil
}

// BMICategory is a display bucket; it is never stored.
type BMICategory string

const (
	BMIUnderweight BMICategory = "underweight"
	BMINormal      BMICategory = "normal"
	BMIOverweight  BMICategory = "overweight"
	BMIObese       BMICategory = "obese"
)

// DefaultBMIThresholds are the regionally calibrated lower bounds of normal,
// overweight and obese.
var DefaultBMIThresholds = BMIThresholds{Normal: 18.5, Overweight: 24.0, Obese: 28.0}

// BMIThresholds are the lower bounds of each category above underweight.
type BMIThresholds struct {
	Normal     float64
	Overweight float64
	Obese      float64
}

// ThresholdsFromSlice builds BMIThresholds from three ascending bounds.
func ThresholdsFromSlice(bounds []float64) (BMIThresholds, error) {
	if len(bounds) != 3 {
		return BMIThresholds{}, fmt.Errorf("bmi thresholds: want 3 bounds, got %d", len(bounds))
	}
	t := BMIThresholds{Normal: bounds[0], Overweight: bounds[1], Obese: bounds[2]}
	if !(t.Normal > 0 && t.Normal < t.Overweight && t.Overweight < t.Obese) {
		return BMIThresholds{}, fmt.Errorf("bmi thresholds: bounds must be positive and ascending: %v", bounds)
	}
	return t, nil
}

// Categorize buckets bmi: [0,Normal) underweight, [Normal,Overweight) normal,
// [Overweight,Obese) overweight, >= Obese obese.
func (t BMIThresholds) Categorize(bmi float64) BMICategory {
	switch {
	case bmi < t.Normal:
		return BMIUnderweight
	case bmi < t.Overweight:
		return BMINormal
	case bmi < t.Obese:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// GoalProgress returns progress towards target in percent, clamped to [0,100].
// With a usable starting weight it is the share of the distance covered;
// otherwise each kilogram away from the target costs ten points.
func GoalProgress(current, target float64, initial *float64) float64 {
	var p float64
	if initial != nil && *initial != target {
		p = (*initial - current) / (*initial - target) * 100
	} else {
		p = 100 - math.Abs(current-target)*10
	}
	return math.Max(0, math.Min(100, p))
}
