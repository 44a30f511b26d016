// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"meowscale/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	profiles map[string]domain.UserProfile
	weights  []domain.WeightRecord
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		profiles: make(map[string]domain.UserProfile),
	}
}

// Ensure interfaces are met.
var _ domain.WeightRepository = (*DB)(nil)
var _ domain.ProfileRepository = (*DB)(nil)

// --- ProfileRepository ---

// GetProfile returns a copy of the stored profile.
func (db *DB) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneProfile(p), nil
}

// CreateProfile stores p, replacing any profile with the same ID.
func (db *DB) CreateProfile(ctx context.Context, p *domain.UserProfile) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.profiles[p.ID] = *cloneProfile(*p)
	return nil
}

// UpdateProfile merges u into the stored profile.
func (db *DB) UpdateProfile(ctx context.Context, userID string, u domain.ProfileUpdate) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.Apply(&p)
	db.profiles[userID] = p
	return nil
}

// FindProfileByInviteCode looks a profile up by its partner code.
func (db *DB) FindProfileByInviteCode(ctx context.Context, code string) (*domain.UserProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, p := range db.profiles {
		if p.PartnerCode == code {
			return cloneProfile(p), nil
		}
	}
	return nil, domain.ErrNotFound
}

// DeleteProfile removes a profile. Weight records are kept.
func (db *DB) DeleteProfile(ctx context.Context, userID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.profiles[userID]; !ok {
		return domain.ErrNotFound
	}
	delete(db.profiles, userID)
	return nil
}

// ListReminderProfiles returns every profile with reminders switched on.
func (db *DB) ListReminderProfiles(ctx context.Context) ([]domain.UserProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.UserProfile
	for _, p := range db.profiles {
		if p.ReminderEnabled {
			out = append(out, *cloneProfile(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneProfile(p domain.UserProfile) *domain.UserProfile {
	if p.PartnerUID != nil {
		id := *p.PartnerUID
		p.PartnerUID = &id
	}
	if p.TargetWeight != nil {
		tw := *p.TargetWeight
		p.TargetWeight = &tw
	}
	return &p
}

// --- WeightRepository ---

// InsertRecord stores a record under a fresh ID.
func (db *DB) InsertRecord(ctx context.Context, rec domain.WeightRecord) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rec.ID = uuid.NewString()
	rec.Timestamp = rec.Timestamp.UTC()
	db.weights = append(db.weights, rec)
	return rec.ID, nil
}

// UpdateRecord overwrites weight, bmi and timestamp of a record.
func (db *DB) UpdateRecord(ctx context.Context, id string, u domain.WeightUpdate) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.weights {
		if db.weights[i].ID == id {
			db.weights[i].Weight = u.Weight
			db.weights[i].BMI = u.BMI
			db.weights[i].Timestamp = u.Timestamp.UTC()
			return nil
		}
	}
	return domain.ErrNotFound
}

// QueryRecords returns a user's records, most recent first.
func (db *DB) QueryRecords(ctx context.Context, userID string, limit int) ([]domain.WeightRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := db.userRecords(userID)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// FindRecordInRange returns the latest record with from <= timestamp < to.
func (db *DB) FindRecordInRange(ctx context.Context, userID string, from, to time.Time) (*domain.WeightRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, w := range db.userRecords(userID) {
		if !w.Timestamp.Before(from) && w.Timestamp.Before(to) {
			return &w, nil
		}
	}
	return nil, nil
}

// LatestRecordBefore returns the latest record strictly before the instant.
func (db *DB) LatestRecordBefore(ctx context.Context, userID string, before time.Time) (*domain.WeightRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, w := range db.userRecords(userID) {
		if w.Timestamp.Before(before) {
			return &w, nil
		}
	}
	return nil, nil
}

// userRecords copies a user's records sorted by timestamp descending.
// Callers hold db.mu.
func (db *DB) userRecords(userID string) []domain.WeightRecord {
	result := make([]domain.WeightRecord, 0)
	for _, w := range db.weights {
		if w.UserID == userID {
			result = append(result, w)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result
}
