package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"meowscale/internal/domain"
)

// PartnerService links and unlinks couples.
//
// Both operations are two independent profile writes with no transaction; a
// failure between them leaves an asymmetric link that readers tolerate.
type PartnerService struct {
	profiles domain.ProfileRepository
}

// NewPartnerService creates a PartnerService backed by the given repository.
func NewPartnerService(profiles domain.ProfileRepository) *PartnerService {
	return &PartnerService{profiles: profiles}
}

// Link resolves an invitation code and points both profiles at each other.
// It returns the partner's profile.
func (s *PartnerService) Link(ctx context.Context, userID, code string) (*domain.UserProfile, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, domain.Invalid("code", "required")
	}
	if _, err := s.profiles.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	partner, err := s.profiles.FindProfileByInviteCode(ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("invitation code %s: %w", code, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if partner.ID == userID {
		return nil, domain.Invalid("code", "cannot link to yourself")
	}

	if err := s.profiles.UpdateProfile(ctx, userID, domain.SetPartner(partner.ID)); err != nil {
		return nil, err
	}
	if err := s.profiles.UpdateProfile(ctx, partner.ID, domain.SetPartner(userID)); err != nil {
		return nil, err
	}
	partner.PartnerUID = &userID

	slog.InfoContext(ctx, "partners linked", "user_id", userID, "partner_id", partner.ID)
	return partner, nil
}

// Unlink clears the link on both sides. The partner side is only cleared
// while it still points back at userID, and a partner profile that no longer
// exists is not an error.
func (s *PartnerService) Unlink(ctx context.Context, userID string) error {
	self, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if self.HasPartner() {
		partnerID := *self.PartnerUID
		if err := s.clearBackLink(ctx, partnerID, userID); err != nil {
			return err
		}
	}

	if err := s.profiles.UpdateProfile(ctx, userID, domain.ClearPartner()); err != nil {
		return err
	}
	slog.InfoContext(ctx, "partners unlinked", "user_id", userID)
	return nil
}

func (s *PartnerService) clearBackLink(ctx context.Context, partnerID, userID string) error {
	partner, err := s.profiles.GetProfile(ctx, partnerID)
	if errors.Is(err, domain.ErrNotFound) {
		slog.InfoContext(ctx, "partner profile already gone", "user_id", userID, "partner_id", partnerID)
		return nil
	}
	if err != nil {
		return err
	}
	if !partner.HasPartner() || *partner.PartnerUID != userID {
		return nil
	}
	err = s.profiles.UpdateProfile(ctx, partnerID, domain.ClearPartner())
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
