package app_test

import (
	"context"
	"time"

	"meowscale/internal/domain"
)

type mockWeightRepo struct {
	queryFn  func(ctx context.Context, userID string, limit int) ([]domain.WeightRecord, error)
	insertFn func(ctx context.Context, rec domain.WeightRecord) (string, error)
	updateFn func(ctx context.Context, id string, u domain.WeightUpdate) error
	rangeFn  func(ctx context.Context, userID string, from, to time.Time) (*domain.WeightRecord, error)
	beforeFn func(ctx context.Context, userID string, before time.Time) (*domain.WeightRecord, error)
}

func (m *mockWeightRepo) QueryRecords(ctx context.Context, userID string, limit int) ([]domain.WeightRecord, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockWeightRepo) InsertRecord(ctx context.Context, rec domain.WeightRecord) (string, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, rec)
	}
	return "w1", nil
}

func (m *mockWeightRepo) UpdateRecord(ctx context.Context, id string, u domain.WeightUpdate) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, u)
	}
	return nil
}

func (m *mockWeightRepo) FindRecordInRange(ctx context.Context, userID string, from, to time.Time) (*domain.WeightRecord, error) {
	if m.rangeFn != nil {
		return m.rangeFn(ctx, userID, from, to)
	}
	return nil, nil
}

func (m *mockWeightRepo) LatestRecordBefore(ctx context.Context, userID string, before time.Time) (*domain.WeightRecord, error) {
	if m.beforeFn != nil {
		return m.beforeFn(ctx, userID, before)
	}
	return nil, nil
}

type mockProfileRepo struct {
	getFn    func(ctx context.Context, userID string) (*domain.UserProfile, error)
	createFn func(ctx context.Context, p *domain.UserProfile) error
	updateFn func(ctx context.Context, userID string, u domain.ProfileUpdate) error
	codeFn   func(ctx context.Context, code string) (*domain.UserProfile, error)
	deleteFn func(ctx context.Context, userID string) error
	listFn   func(ctx context.Context) ([]domain.UserProfile, error)
}

func (m *mockProfileRepo) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return &domain.UserProfile{ID: userID, Height: 170}, nil
}

func (m *mockProfileRepo) CreateProfile(ctx context.Context, p *domain.UserProfile) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockProfileRepo) UpdateProfile(ctx context.Context, userID string, u domain.ProfileUpdate) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, u)
	}
	return nil
}

func (m *mockProfileRepo) FindProfileByInviteCode(ctx context.Context, code string) (*domain.UserProfile, error) {
	if m.codeFn != nil {
		return m.codeFn(ctx, code)
	}
	return nil, domain.ErrNotFound
}

func (m *mockProfileRepo) DeleteProfile(ctx context.Context, userID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID)
	}
	return nil
}

func (m *mockProfileRepo) ListReminderProfiles(ctx context.Context) ([]domain.UserProfile, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockNotifier struct {
	sent  []string
	err   error
	title string
}

func (m *mockNotifier) Notify(_ context.Context, p domain.UserProfile, title, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, p.ID)
	m.title = title
	return nil
}

// clock is a settable wall clock for services under test.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
