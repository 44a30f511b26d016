package domain

import (
	"context"
	"time"
)

// WeightRecord is a single daily weight observation.
type WeightRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Weight    float64   `json:"weight"`
	BMI       float64   `json:"bmi"`
	Timestamp time.Time `json:"timestamp"`
}

// WeightUpdate holds the fields overwritten by a same-day resubmission.
// They are always written together.
type WeightUpdate struct {
	Weight    float64
	BMI       float64
	Timestamp time.Time
}

// WeightRepository is the port for weight persistence.
//
// QueryRecords returns records sorted by timestamp descending; limit <= 0
// means no limit. FindRecordInRange returns the latest record with
// from <= timestamp < to, and LatestRecordBefore the latest one strictly
// before the given instant; both return (nil, nil) when there is none.
type WeightRepository interface {
	QueryRecords(ctx context.Context, userID string, limit int) ([]WeightRecord, error)
	InsertRecord(ctx context.Context, rec WeightRecord) (string, error)
	UpdateRecord(ctx context.Context, id string, u WeightUpdate) error
	FindRecordInRange(ctx context.Context, userID string, from, to time.Time) (*WeightRecord, error)
	LatestRecordBefore(ctx context.Context, userID string, before time.Time) (*WeightRecord, error)
}
