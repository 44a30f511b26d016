// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// Gender of a profile owner.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Theme is the display preference stored with a profile.
type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// UserProfile is the per-user record in the users collection.
//
// PartnerUID being set on A does not imply it is set on B: linking is two
// independent writes, so readers must tolerate asymmetric links.
type UserProfile struct {
	ID              string    `json:"id" bson:"_id"`
	DisplayName     string    `json:"displayName" bson:"displayName"`
	Email           string    `json:"email,omitempty" bson:"email,omitempty"`
	Height          float64   `json:"height" bson:"height"`
	Gender          Gender    `json:"gender" bson:"gender"`
	PartnerCode     string    `json:"partnerCode" bson:"partnerCode"`
	PartnerUID      *string   `json:"partnerUid" bson:"partnerUid"`
	TargetWeight    *float64  `json:"targetWeight" bson:"targetWeight"`
	ReminderEnabled bool      `json:"reminderEnabled" bson:"reminderEnabled"`
	ReminderTime    string    `json:"reminderTime" bson:"reminderTime"`
	Timezone        string    `json:"timezone" bson:"timezone"`
	Theme           Theme     `json:"theme" bson:"theme"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
}

// HasPartner reports whether the profile carries a partner link.
func (p *UserProfile) HasPartner() bool {
	return p.PartnerUID != nil && *p.PartnerUID != ""
}

// ProfileUpdate is a merge patch. Nil fields are left untouched.
//
// PartnerUID pointing at the empty string clears the link; the same holds for
// TargetWeight pointing at zero.
type ProfileUpdate struct {
	DisplayName     *string
	Height          *float64
	Gender          *Gender
	PartnerUID      *string
	TargetWeight    *float64
	ReminderEnabled *bool
	ReminderTime    *string
	Timezone        *string
	Theme           *Theme
}

// ClearPartner returns a patch that removes the partner link.
func ClearPartner() ProfileUpdate {
	empty := ""
	return ProfileUpdate{PartnerUID: &empty}
}

// SetPartner returns a patch that links to partnerID.
func SetPartner(partnerID string) ProfileUpdate {
	return ProfileUpdate{PartnerUID: &partnerID}
}

// Apply merges u into p in place. Stores without native partial updates use it.
func (u ProfileUpdate) Apply(p *UserProfile) {
	if u.DisplayName != nil {
		p.DisplayName = *u.DisplayName
	}
	if u.Height != nil {
		p.Height = *u.Height
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.PartnerUID != nil {
		if *u.PartnerUID == "" {
			p.PartnerUID = nil
		} else {
			id := *u.PartnerUID
			p.PartnerUID = &id
		}
	}
	if u.TargetWeight != nil {
		if *u.TargetWeight == 0 {
			p.TargetWeight = nil
		} else {
			tw := *u.TargetWeight
			p.TargetWeight = &tw
		}
	}
	if u.ReminderEnabled != nil {
		p.ReminderEnabled = *u.ReminderEnabled
	}
	if u.ReminderTime != nil {
		p.ReminderTime = *u.ReminderTime
	}
	if u.Timezone != nil {
		p.Timezone = *u.Timezone
	}
	if u.Theme != nil {
		p.Theme = *u.Theme
	}
}

// ProfileRepository is the port for profile persistence.
//
// GetProfile and FindProfileByInviteCode return ErrNotFound when nothing
// matches; UpdateProfile and DeleteProfile do the same for a missing ID.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	CreateProfile(ctx context.Context, p *UserProfile) error
	UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) error
	FindProfileByInviteCode(ctx context.Context, code string) (*UserProfile, error)
	DeleteProfile(ctx context.Context, userID string) error
	ListReminderProfiles(ctx context.Context) ([]UserProfile, error)
}
