package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"meowscale/internal/domain"
)

const keyPrefix = "meowscale:profile:"

// Profiles caches GetProfile results in Redis and drops the cached entry on
// every write through it. Redis failures degrade to the wrapped repository.
type Profiles struct {
	next domain.ProfileRepository
	rdb  redis.Cmdable
	ttl  time.Duration
}

var _ domain.ProfileRepository = (*Profiles)(nil)

// NewProfiles wraps next with a cache whose entries expire after ttl.
func NewProfiles(next domain.ProfileRepository, rdb redis.Cmdable, ttl time.Duration) *Profiles {
	return &Profiles{next: next, rdb: rdb, ttl: ttl}
}

func profileKey(userID string) string {
	return keyPrefix + userID
}

// GetProfile serves from the cache and fills it on a miss.
func (c *Profiles) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	key := profileKey(userID)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p domain.UserProfile
		if jsonErr := json.Unmarshal(raw, &p); jsonErr == nil {
			return &p, nil
		}
		slog.WarnContext(ctx, "discarding undecodable cached profile", "key", key)
	case !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "profile cache read failed", "key", key, "err", err)
	}

	p, err := c.next.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "profile cache write failed", "key", key, "err", err)
		}
	}
	return p, nil
}

// CreateProfile writes through and invalidates.
func (c *Profiles) CreateProfile(ctx context.Context, p *domain.UserProfile) error {
	if err := c.next.CreateProfile(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, p.ID)
	return nil
}

// UpdateProfile writes through and invalidates.
func (c *Profiles) UpdateProfile(ctx context.Context, userID string, u domain.ProfileUpdate) error {
	err := c.next.UpdateProfile(ctx, userID, u)
	c.invalidate(ctx, userID)
	return err
}

// DeleteProfile writes through and invalidates.
func (c *Profiles) DeleteProfile(ctx context.Context, userID string) error {
	err := c.next.DeleteProfile(ctx, userID)
	c.invalidate(ctx, userID)
	return err
}

// FindProfileByInviteCode is not cached.
func (c *Profiles) FindProfileByInviteCode(ctx context.Context, code string) (*domain.UserProfile, error) {
	return c.next.FindProfileByInviteCode(ctx, code)
}

// ListReminderProfiles is not cached.
func (c *Profiles) ListReminderProfiles(ctx context.Context) ([]domain.UserProfile, error) {
	return c.next.ListReminderProfiles(ctx)
}

func (c *Profiles) invalidate(ctx context.Context, userID string) {
	if err := c.rdb.Del(ctx, profileKey(userID)).Err(); err != nil {
		slog.WarnContext(ctx, "profile cache invalidation failed", "user_id", userID, "err", err)
	}
}
