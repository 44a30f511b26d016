package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"meowscale/internal/domain"
)

const (
	codeAttempts        = 5
	defaultReminderTime = "08:00"
)

var (
	// ErrProfileExists indicates that onboarding ran twice for the same user.
	ErrProfileExists = errors.New("profile already exists")
	// ErrCodeExhausted indicates that no unused invitation code was found.
	ErrCodeExhausted = errors.New("could not generate a unique invitation code")
)

// ProfileInput is the onboarding form. Email comes from the caller's identity,
// never from the submitted form.
type ProfileInput struct {
	DisplayName     string   `json:"displayName" validate:"required,max=50"`
	Email           string   `json:"-" validate:"omitempty,email"`
	Height          float64  `json:"height" validate:"gte=50,lte=300"`
	Gender          string   `json:"gender" validate:"required,oneof=male female other"`
	TargetWeight    *float64 `json:"targetWeight" validate:"omitempty,gt=0,lte=500"`
	ReminderEnabled bool     `json:"reminderEnabled"`
	ReminderTime    string   `json:"reminderTime" validate:"omitempty,datetime=15:04"`
	Timezone        string   `json:"timezone" validate:"omitempty,timezone"`
	Theme           string   `json:"theme" validate:"omitempty,oneof=auto light dark"`
	InviteCode      string   `json:"inviteCode" validate:"omitempty,alphanum,len=6"`
}

// ProfilePatch is the settings form. Nil fields are left unchanged; a zero
// target weight clears it.
type ProfilePatch struct {
	DisplayName     *string  `json:"displayName" validate:"omitempty,min=1,max=50"`
	Height          *float64 `json:"height" validate:"omitempty,gte=50,lte=300"`
	Gender          *string  `json:"gender" validate:"omitempty,oneof=male female other"`
	TargetWeight    *float64 `json:"targetWeight" validate:"omitempty,gte=0,lte=500"`
	ReminderEnabled *bool    `json:"reminderEnabled"`
	ReminderTime    *string  `json:"reminderTime" validate:"omitempty,datetime=15:04"`
	Timezone        *string  `json:"timezone" validate:"omitempty,timezone"`
	Theme           *string  `json:"theme" validate:"omitempty,oneof=auto light dark"`
}

func (p ProfilePatch) update() domain.ProfileUpdate {
	u := domain.ProfileUpdate{
		DisplayName:     p.DisplayName,
		Height:          p.Height,
		TargetWeight:    p.TargetWeight,
		ReminderEnabled: p.ReminderEnabled,
		ReminderTime:    p.ReminderTime,
		Timezone:        p.Timezone,
	}
	if p.Gender != nil {
		g := domain.Gender(*p.Gender)
		u.Gender = &g
	}
	if p.Theme != nil {
		t := domain.Theme(*p.Theme)
		u.Theme = &t
	}
	return u
}

// ProfileService manages user profiles.
type ProfileService struct {
	profiles domain.ProfileRepository
	settings
}

// NewProfileService creates a ProfileService backed by the given repository.
func NewProfileService(profiles domain.ProfileRepository, opts ...Option) *ProfileService {
	return &ProfileService{profiles: profiles, settings: newSettings(opts)}
}

// Create onboards a user. It generates the user's own invitation code and,
// when the form carries someone else's code, records that person as partner
// on this profile only.
func (s *ProfileService) Create(ctx context.Context, userID string, in ProfileInput) (*domain.UserProfile, error) {
	if userID == "" {
		return nil, domain.Invalid("userId", "required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := s.profiles.GetProfile(ctx, userID); err == nil {
		return nil, ErrProfileExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	p := &domain.UserProfile{
		ID:              userID,
		DisplayName:     strings.TrimSpace(in.DisplayName),
		Email:           in.Email,
		Height:          in.Height,
		Gender:          domain.Gender(in.Gender),
		PartnerCode:     code,
		TargetWeight:    in.TargetWeight,
		ReminderEnabled: in.ReminderEnabled,
		ReminderTime:    in.ReminderTime,
		Timezone:        in.Timezone,
		Theme:           domain.Theme(in.Theme),
		CreatedAt:       s.now().UTC(),
	}
	if p.ReminderTime == "" {
		p.ReminderTime = defaultReminderTime
	}
	if p.Timezone == "" {
		p.Timezone = s.loc.String()
	}
	if p.Theme == "" {
		p.Theme = domain.ThemeAuto
	}

	if in.InviteCode != "" {
		partner, err := s.profiles.FindProfileByInviteCode(ctx, normalizeCode(in.InviteCode))
		switch {
		case errors.Is(err, domain.ErrNotFound):
			slog.InfoContext(ctx, "onboarding invite code did not match", "user_id", userID)
		case err != nil:
			return nil, err
		case partner.ID != userID:
			p.PartnerUID = &partner.ID
		}
	}

	if err := s.profiles.CreateProfile(ctx, p); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "profile created", "user_id", userID, "linked", p.HasPartner())
	return p, nil
}

// Get returns the user's profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return s.profiles.GetProfile(ctx, userID)
}

// Update merges the patch into the profile and returns the result.
func (s *ProfileService) Update(ctx context.Context, userID string, patch ProfilePatch) (*domain.UserProfile, error) {
	if err := validateInput(patch); err != nil {
		return nil, err
	}
	if err := s.profiles.UpdateProfile(ctx, userID, patch.update()); err != nil {
		return nil, err
	}
	return s.profiles.GetProfile(ctx, userID)
}

// Delete removes the profile. Weight records and the partner's link are left
// alone; readers of the partner profile tolerate the dangling reference.
func (s *ProfileService) Delete(ctx context.Context, userID string) error {
	return s.profiles.DeleteProfile(ctx, userID)
}

func (s *ProfileService) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := s.newCode()
		_, err := s.profiles.FindProfileByInviteCode(ctx, code)
		if errors.Is(err, domain.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrCodeExhausted, codeAttempts)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
