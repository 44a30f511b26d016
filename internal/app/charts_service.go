package app

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"meowscale/internal/domain"
)

const maxTrendDays = 366

// ChartsService encapsulates chart data retrieval use cases.
type ChartsService struct {
	weights  domain.WeightRepository
	profiles domain.ProfileRepository
	settings
}

// NewChartsService creates a ChartsService backed by the given repositories.
func NewChartsService(weights domain.WeightRepository, profiles domain.ProfileRepository, opts ...Option) *ChartsService {
	return &ChartsService{weights: weights, profiles: profiles, settings: newSettings(opts)}
}

// TrendPoint is a single day of the couple's chart.
type TrendPoint struct {
	Day     string       `json:"day"`
	Mine    *WeightPoint `json:"mine"`
	Partner *WeightPoint `json:"partner"`
}

// WeightPoint is the optional weight value within a TrendPoint. Change is
// the difference to the person's previous recorded day, nil for the oldest.
type WeightPoint struct {
	Value     float64     `json:"value"`
	BMI       float64     `json:"bmi"`
	Unit      domain.Unit `json:"unit"`
	Change    *float64    `json:"change"`
	Direction Direction   `json:"direction,omitempty"`
}

// Direction summarizes a day-over-day change.
type Direction string

const (
	DirectionFlat Direction = "flat"
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// flatChange is the smallest change, in the display unit, shown as movement.
const flatChange = 0.1

func direction(change float64) Direction {
	switch {
	case math.Abs(change) < flatChange:
		return DirectionFlat
	case change > 0:
		return DirectionUp
	default:
		return DirectionDown
	}
}

// Trend returns one point per calendar day for the last days days, oldest
// first, with weights converted to unit. Days are labelled in the requesting
// user's timezone and only the latest record of a day is plotted. Each point
// carries the change since that person's previous recorded day, which may lie
// before the window.
func (s *ChartsService) Trend(ctx context.Context, userID string, days int, unit string) ([]TrendPoint, error) {
	u, err := domain.ParseUnit(unit)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, domain.Invalid("days", "must be > 0")
	}
	if days > maxTrendDays {
		days = maxTrendDays
	}

	me, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc := s.location(me)

	mine, err := s.byDay(ctx, userID, loc, u)
	if err != nil {
		return nil, err
	}
	var theirs map[string]*WeightPoint
	if me.HasPartner() {
		partnerID := *me.PartnerUID
		if _, err := s.profiles.GetProfile(ctx, partnerID); err == nil {
			if theirs, err = s.byDay(ctx, partnerID, loc, u); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	today := s.now().In(loc)
	points := make([]TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(domain.DayLayout)
		points = append(points, TrendPoint{Day: day, Mine: mine[day], Partner: theirs[day]})
	}
	return points, nil
}

func (s *ChartsService) byDay(ctx context.Context, userID string, loc *time.Location, unit domain.Unit) (map[string]*WeightPoint, error) {
	records, err := s.weights.QueryRecords(ctx, userID, HistoryLimit)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*WeightPoint, len(records))
	for _, r := range records {
		day := domain.LocalDay(r.Timestamp, loc)
		if _, seen := out[day]; seen {
			continue
		}
		out[day] = &WeightPoint{
			Value: domain.Round1(domain.ConvertWeight(r.Weight, domain.UnitKg, unit)),
			BMI:   r.BMI,
			Unit:  unit,
		}
	}

	days := make([]string, 0, len(out))
	for day := range out {
		days = append(days, day)
	}
	sort.Strings(days)
	for i := 1; i < len(days); i++ {
		cur, prev := out[days[i]], out[days[i-1]]
		change := domain.Round1(cur.Value - prev.Value)
		cur.Change = &change
		cur.Direction = direction(change)
	}
	return out, nil
}
