package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"meowscale/internal/adapter/memory"
	"meowscale/internal/app"
	"meowscale/internal/domain"
)

func sequenceCodes(codes ...string) func() string {
	i := 0
	return func() string {
		c := codes[i%len(codes)]
		i++
		return c
	}
}

func validProfileInput() app.ProfileInput {
	return app.ProfileInput{DisplayName: "Alice", Height: 165, Gender: "female"}
}

func TestProfileCreate_Defaults(t *testing.T) {
	db := memory.New()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := app.NewProfileService(db, app.WithClock(func() time.Time { return now }), app.WithCodeGenerator(sequenceCodes("ABC123")))

	p, err := svc.Create(context.Background(), "alice", validProfileInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PartnerCode != "ABC123" {
		t.Errorf("partner code = %q; want ABC123", p.PartnerCode)
	}
	if p.ReminderTime != "08:00" || p.Theme != domain.ThemeAuto || p.Timezone != "UTC" {
		t.Errorf("defaults not applied: %+v", p)
	}
	if !p.CreatedAt.Equal(now) {
		t.Errorf("createdAt = %v; want %v", p.CreatedAt, now)
	}
	if p.HasPartner() {
		t.Errorf("new profile should not be linked")
	}

	stored, err := db.GetProfile(context.Background(), "alice")
	if err != nil || stored.DisplayName != "Alice" {
		t.Fatalf("profile not stored: %v, %v", stored, err)
	}
}

func TestProfileCreate_Duplicate(t *testing.T) {
	db := memory.New()
	svc := app.NewProfileService(db)
	ctx := context.Background()
	if _, err := svc.Create(ctx, "alice", validProfileInput()); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Create(ctx, "alice", validProfileInput())
	if !errors.Is(err, app.ErrProfileExists) {
		t.Fatalf("expected ErrProfileExists, got %v", err)
	}
}

func TestProfileCreate_Validation(t *testing.T) {
	svc := app.NewProfileService(memory.New())

	tests := []struct {
		name   string
		mutate func(*app.ProfileInput)
		field  string
	}{
		{"missing name", func(in *app.ProfileInput) { in.DisplayName = "" }, "displayName"},
		{"height too small", func(in *app.ProfileInput) { in.Height = 20 }, "height"},
		{"bad gender", func(in *app.ProfileInput) { in.Gender = "cat" }, "gender"},
		{"bad reminder time", func(in *app.ProfileInput) { in.ReminderTime = "25:99" }, "reminderTime"},
		{"bad theme", func(in *app.ProfileInput) { in.Theme = "neon" }, "theme"},
		{"bad invite code", func(in *app.ProfileInput) { in.InviteCode = "AB" }, "inviteCode"},
		{"bad identity email", func(in *app.ProfileInput) { in.Email = "not-an-address" }, "email"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validProfileInput()
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), "alice", in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Field != tc.field {
				t.Errorf("field = %q; want %q", ve.Field, tc.field)
			}
		})
	}
}

func TestProfileCreate_UniqueCode(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	_ = db.CreateProfile(ctx, &domain.UserProfile{ID: "bob", PartnerCode: "TAKEN1"})
	svc := app.NewProfileService(db, app.WithCodeGenerator(sequenceCodes("TAKEN1", "FRESH2")))

	p, err := svc.Create(ctx, "alice", validProfileInput())
	if err != nil {
		t.Fatal(err)
	}
	if p.PartnerCode != "FRESH2" {
		t.Errorf("partner code = %q; want FRESH2", p.PartnerCode)
	}
}

func TestProfileCreate_CodeExhausted(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	_ = db.CreateProfile(ctx, &domain.UserProfile{ID: "bob", PartnerCode: "TAKEN1"})
	svc := app.NewProfileService(db, app.WithCodeGenerator(sequenceCodes("TAKEN1")))

	if _, err := svc.Create(ctx, "alice", validProfileInput()); !errors.Is(err, app.ErrCodeExhausted) {
		t.Fatalf("expected ErrCodeExhausted, got %v", err)
	}
}

func TestProfileCreate_InviteCodeLinksOneSide(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	_ = db.CreateProfile(ctx, &domain.UserProfile{ID: "bob", PartnerCode: "BOB222"})
	svc := app.NewProfileService(db, app.WithCodeGenerator(sequenceCodes("ALICE1")))

	in := validProfileInput()
	in.InviteCode = "bob222"
	p, err := svc.Create(ctx, "alice", in)
	if err != nil {
		t.Fatal(err)
	}
	if p.PartnerUID == nil || *p.PartnerUID != "bob" {
		t.Fatalf("alice should point at bob, got %+v", p.PartnerUID)
	}
	if got := partnerOf(t, db, "bob"); got != "" {
		t.Errorf("bob should stay unlinked until he links back, got %q", got)
	}
}

func TestProfileCreate_UnknownInviteCodeIgnored(t *testing.T) {
	svc := app.NewProfileService(memory.New(), app.WithCodeGenerator(sequenceCodes("ALICE1")))

	in := validProfileInput()
	in.InviteCode = "ZZZZZZ"
	p, err := svc.Create(context.Background(), "alice", in)
	if err != nil {
		t.Fatalf("unknown invite code should not fail onboarding, got %v", err)
	}
	if p.HasPartner() {
		t.Errorf("expected no partner, got %v", *p.PartnerUID)
	}
}

func TestProfileUpdate(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	tw := 60.0
	_ = db.CreateProfile(ctx, &domain.UserProfile{ID: "alice", DisplayName: "Alice", Height: 165, TargetWeight: &tw})
	svc := app.NewProfileService(db)

	name := "Ally"
	zero := 0.0
	theme := "dark"
	p, err := svc.Update(ctx, "alice", app.ProfilePatch{DisplayName: &name, TargetWeight: &zero, Theme: &theme})
	if err != nil {
		t.Fatal(err)
	}
	if p.DisplayName != "Ally" || p.Theme != domain.ThemeDark {
		t.Errorf("patch not applied: %+v", p)
	}
	if p.TargetWeight != nil {
		t.Errorf("zero target weight should clear it, got %v", *p.TargetWeight)
	}
	if p.Height != 165 {
		t.Errorf("untouched height changed to %v", p.Height)
	}
}

func TestProfileUpdate_Errors(t *testing.T) {
	db := memory.New()
	svc := app.NewProfileService(db)
	ctx := context.Background()

	h := 10.0
	if _, err := svc.Update(ctx, "alice", app.ProfilePatch{Height: &h}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	name := "Ally"
	if _, err := svc.Update(ctx, "ghost", app.ProfilePatch{DisplayName: &name}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileDelete(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	_ = db.CreateProfile(ctx, &domain.UserProfile{ID: "alice"})
	svc := app.NewProfileService(db)

	if err := svc.Delete(ctx, "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, "alice"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
