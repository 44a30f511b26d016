// Package app holds the application services and business logic.
package app

import (
	"crypto/rand"
	"time"

	"meowscale/internal/domain"
)

// HistoryLimit caps every history read. Older records are not reachable.
const HistoryLimit = 100

const partnerCodeLength = 6

// Option configures the services in this package.
type Option func(*settings)

type settings struct {
	now     func() time.Time
	loc     *time.Location
	bmi     domain.BMIThresholds
	newCode func() string
}

func newSettings(opts []Option) settings {
	s := settings{
		now:     time.Now,
		loc:     time.UTC,
		bmi:     domain.DefaultBMIThresholds,
		newCode: randomPartnerCode,
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithLocation sets the zone used for profiles without their own timezone.
func WithLocation(loc *time.Location) Option {
	return func(s *settings) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithBMIThresholds sets the BMI category bounds.
func WithBMIThresholds(t domain.BMIThresholds) Option {
	return func(s *settings) { s.bmi = t }
}

// WithCodeGenerator overrides invitation code generation.
func WithCodeGenerator(gen func() string) Option {
	return func(s *settings) { s.newCode = gen }
}

// location resolves the calendar-day zone of a profile.
func (s settings) location(p *domain.UserProfile) *time.Location {
	if p == nil {
		return s.loc
	}
	return domain.LoadLocation(p.Timezone, s.loc)
}

// randomPartnerCode returns six characters of the uppercase base32 alphabet.
func randomPartnerCode() string {
	return rand.Text()[:partnerCodeLength]
}
