package app

import (
	"context"
	"log/slog"
	"time"

	"meowscale/internal/domain"
)

const maxWeightKg = 500

// WeightInput is a single weight submission.
type WeightInput struct {
	Value     float64    `json:"value" validate:"gt=0"`
	Unit      string     `json:"unit" validate:"omitempty,oneof=kg lb"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// WeightService encapsulates weight-tracking use cases.
type WeightService struct {
	weights  domain.WeightRepository
	profiles domain.ProfileRepository
	settings
}

// NewWeightService creates a WeightService backed by the given repositories.
func NewWeightService(weights domain.WeightRepository, profiles domain.ProfileRepository, opts ...Option) *WeightService {
	return &WeightService{weights: weights, profiles: profiles, settings: newSettings(opts)}
}

// RecordWeight upserts the user's record for the calendar day of the
// submission. An existing record for that day is overwritten in place,
// otherwise a new one is inserted; exactly one write happens either way.
//
// Concurrent submissions for the same day both read "no record" and may both
// insert. Nothing here prevents that.
func (s *WeightService) RecordWeight(ctx context.Context, userID string, in WeightInput) (*domain.UpsertOutcome, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	unit, err := domain.ParseUnit(in.Unit)
	if err != nil {
		return nil, err
	}
	kg := in.Value
	if unit != domain.UnitKg {
		kg = domain.Round1(domain.ConvertWeight(in.Value, unit, domain.UnitKg))
	}
	if kg <= 0 || kg > maxWeightKg {
		return nil, domain.Invalid("value", "must be within (0, 500] kg")
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	bmi, err := domain.ComputeBMI(kg, profile.Height)
	if err != nil {
		return nil, err
	}

	ts := s.now()
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}
	loc := s.location(profile)
	dayStart, dayEnd := domain.DayBounds(ts, loc)

	existing, err := s.weights.FindRecordInRange(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	prev, err := s.weights.LatestRecordBefore(ctx, userID, dayStart)
	if err != nil {
		return nil, err
	}

	out := &domain.UpsertOutcome{
		Record:   domain.WeightRecord{UserID: userID, Weight: kg, BMI: bmi, Timestamp: ts},
		Previous: prev,
	}
	if existing != nil {
		if err := s.weights.UpdateRecord(ctx, existing.ID, domain.WeightUpdate{Weight: kg, BMI: bmi, Timestamp: ts}); err != nil {
			return nil, err
		}
		out.Kind = domain.OutcomeUpdate
		out.ID = existing.ID
	} else {
		id, err := s.weights.InsertRecord(ctx, out.Record)
		if err != nil {
			return nil, err
		}
		out.Kind = domain.OutcomeAdd
		out.ID = id
	}
	out.Record.ID = out.ID

	var diff *float64
	if prev != nil {
		raw := kg - prev.Weight
		d := domain.Round1(raw)
		diff, out.Delta = &raw, &d
	}
	out.Feedback = domain.ClassifyFeedback(out.Kind, diff)

	slog.InfoContext(ctx, "weight recorded",
		"user_id", userID,
		"kind", out.Kind,
		"day", domain.LocalDay(ts, loc),
		"feedback", out.Feedback.Kind,
	)
	return out, nil
}

// GetToday returns the user's record for the current calendar day, or nil.
func (s *WeightService) GetToday(ctx context.Context, userID string) (*domain.WeightRecord, string, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	now := s.now()
	loc := s.location(profile)
	start, end := domain.DayBounds(now, loc)
	rec, err := s.weights.FindRecordInRange(ctx, userID, start, end)
	return rec, domain.LocalDay(now, loc), err
}

// History returns up to HistoryLimit records, most recent first.
func (s *WeightService) History(ctx context.Context, userID string) ([]domain.WeightRecord, error) {
	return s.weights.QueryRecords(ctx, userID, HistoryLimit)
}
