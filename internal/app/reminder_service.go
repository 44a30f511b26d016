package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"meowscale/internal/domain"
)

const (
	reminderTitle = "Meow scale reminder 🐾"
	reminderBody  = "Hi! Hop on the scale and log today's weight. Still a cute little kitty? 🐱"
)

// ReminderService sends the daily weigh-in reminder.
type ReminderService struct {
	profiles domain.ProfileRepository
	weights  domain.WeightRepository
	notifier domain.Notifier
	settings
}

// NewReminderService creates a ReminderService.
func NewReminderService(profiles domain.ProfileRepository, weights domain.WeightRepository, n domain.Notifier, opts ...Option) *ReminderService {
	return &ReminderService{profiles: profiles, weights: weights, notifier: n, settings: newSettings(opts)}
}

// SendDue notifies every profile whose reminder time matches the current
// local minute and who has not recorded a weight for the local day yet. It is
// meant to run once a minute. Failures for one profile do not stop the rest.
func (s *ReminderService) SendDue(ctx context.Context) (int, error) {
	profiles, err := s.profiles.ListReminderProfiles(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	sent := 0
	var errs []error
	for i := range profiles {
		p := profiles[i]
		if !p.ReminderEnabled || p.ReminderTime == "" {
			continue
		}
		loc := s.location(&p)
		if now.In(loc).Format("15:04") != p.ReminderTime {
			continue
		}
		start, end := domain.DayBounds(now, loc)
		rec, err := s.weights.FindRecordInRange(ctx, p.ID, start, end)
		if err != nil {
			errs = append(errs, fmt.Errorf("reminder %s: %w", p.ID, err))
			continue
		}
		if rec != nil {
			continue
		}
		if err := s.notifier.Notify(ctx, p, reminderTitle, reminderBody); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", p.ID, err))
			continue
		}
		sent++
	}
	if len(errs) > 0 {
		slog.WarnContext(ctx, "some reminders failed", "failed", len(errs), "sent", sent)
	}
	return sent, errors.Join(errs...)
}
