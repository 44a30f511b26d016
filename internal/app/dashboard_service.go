package app

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"meowscale/internal/domain"
)

// PersonSummary is one side of the couple's dashboard.
type PersonSummary struct {
	Profile       domain.UserProfile    `json:"profile"`
	History       []domain.WeightRecord `json:"history"`
	Latest        *domain.WeightRecord  `json:"latest"`
	BMICategory   domain.BMICategory    `json:"bmiCategory,omitempty"`
	GoalProgress  *float64              `json:"goalProgress"`
	RecordedToday bool                  `json:"recordedToday"`
}

// Dashboard is the landing view: the user and, when linked, the partner.
type Dashboard struct {
	Today   string         `json:"today"`
	Me      PersonSummary  `json:"me"`
	Partner *PersonSummary `json:"partner"`
}

// DashboardService assembles the couple's landing view.
type DashboardService struct {
	weights  domain.WeightRepository
	profiles domain.ProfileRepository
	settings
}

// NewDashboardService creates a DashboardService backed by the given repositories.
func NewDashboardService(weights domain.WeightRepository, profiles domain.ProfileRepository, opts ...Option) *DashboardService {
	return &DashboardService{weights: weights, profiles: profiles, settings: newSettings(opts)}
}

// Get loads the user's summary and, concurrently, the partner's. A partner
// link pointing at a missing profile yields no partner rather than an error.
func (s *DashboardService) Get(ctx context.Context, userID string) (*Dashboard, error) {
	me, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		myHistory      []domain.WeightRecord
		partner        *domain.UserProfile
		partnerHistory []domain.WeightRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		myHistory, err = s.weights.QueryRecords(gctx, userID, HistoryLimit)
		return err
	})
	if me.HasPartner() {
		partnerID := *me.PartnerUID
		g.Go(func() error {
			p, err := s.profiles.GetProfile(gctx, partnerID)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			h, err := s.weights.QueryRecords(gctx, partnerID, HistoryLimit)
			if err != nil {
				return err
			}
			partner, partnerHistory = p, h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	d := &Dashboard{
		Today: domain.LocalDay(now, s.location(me)),
		Me:    s.summarize(*me, myHistory),
	}
	if partner != nil {
		ps := s.summarize(*partner, partnerHistory)
		d.Partner = &ps
	}
	return d, nil
}

func (s *DashboardService) summarize(p domain.UserProfile, history []domain.WeightRecord) PersonSummary {
	sum := PersonSummary{Profile: p, History: history}
	if sum.History == nil {
		sum.History = []domain.WeightRecord{}
	}
	if len(history) == 0 {
		return sum
	}

	latest := history[0]
	sum.Latest = &latest
	sum.BMICategory = s.bmi.Categorize(latest.BMI)

	loc := s.location(&p)
	sum.RecordedToday = domain.LocalDay(latest.Timestamp, loc) == domain.LocalDay(s.now(), loc)

	if p.TargetWeight != nil {
		initial := history[len(history)-1].Weight
		progress := domain.GoalProgress(latest.Weight, *p.TargetWeight, &initial)
		sum.GoalProgress = &progress
	}
	return sum
}
