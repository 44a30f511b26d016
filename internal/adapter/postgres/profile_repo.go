package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meowscale/internal/domain"
)

const profileColumns = "id, display_name, email, height, gender, partner_code, partner_uid, target_weight, reminder_enabled, reminder_time, timezone, theme, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.UserProfile, error) {
	var (
		p       domain.UserProfile
		partner sql.NullString
		target  sql.NullFloat64
	)
	err := row.Scan(&p.ID, &p.DisplayName, &p.Email, &p.Height, &p.Gender, &p.PartnerCode,
		&partner, &target, &p.ReminderEnabled, &p.ReminderTime, &p.Timezone, &p.Theme, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if partner.Valid && partner.String != "" {
		p.PartnerUID = &partner.String
	}
	if target.Valid {
		p.TargetWeight = &target.Float64
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func rowNotFound(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return domain.StoreFailure(op, err)
}

// GetProfile loads a profile by user ID.
func (d *DB) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	row := d.sql.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM users WHERE id=$1;", userID)
	p, err := scanProfile(row)
	if err != nil {
		return nil, rowNotFound("get profile", err)
	}
	return p, nil
}

// CreateProfile inserts p, replacing any profile with the same ID.
func (d *DB) CreateProfile(ctx context.Context, p *domain.UserProfile) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO users(`+profileColumns+`)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			display_name=EXCLUDED.display_name, email=EXCLUDED.email, height=EXCLUDED.height,
			gender=EXCLUDED.gender, partner_code=EXCLUDED.partner_code, partner_uid=EXCLUDED.partner_uid,
			target_weight=EXCLUDED.target_weight, reminder_enabled=EXCLUDED.reminder_enabled,
			reminder_time=EXCLUDED.reminder_time, timezone=EXCLUDED.timezone, theme=EXCLUDED.theme,
			created_at=EXCLUDED.created_at;`,
		p.ID, p.DisplayName, p.Email, p.Height, string(p.Gender), p.PartnerCode,
		p.PartnerUID, p.TargetWeight, p.ReminderEnabled, p.ReminderTime, p.Timezone, string(p.Theme),
		p.CreatedAt.UTC(),
	)
	return domain.StoreFailure("create profile", err)
}

// UpdateProfile applies u in a single UPDATE statement.
func (d *DB) UpdateProfile(ctx context.Context, userID string, u domain.ProfileUpdate) error {
	sets, args := profileAssignments(u)
	if len(sets) == 0 {
		_, err := d.GetProfile(ctx, userID)
		return err
	}
	args = append(args, userID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id=$%d;", strings.Join(sets, ", "), len(args))

	res, err := d.sql.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.StoreFailure("update profile", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.StoreFailure("update profile", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindProfileByInviteCode looks a profile up by its partner code.
func (d *DB) FindProfileByInviteCode(ctx context.Context, code string) (*domain.UserProfile, error) {
	row := d.sql.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM users WHERE partner_code=$1;", code)
	p, err := scanProfile(row)
	if err != nil {
		return nil, rowNotFound("find profile by code", err)
	}
	return p, nil
}

// DeleteProfile removes a profile. Weight rows are kept.
func (d *DB) DeleteProfile(ctx context.Context, userID string) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM users WHERE id=$1;", userID)
	if err != nil {
		return domain.StoreFailure("delete profile", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.StoreFailure("delete profile", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListReminderProfiles returns every profile with reminders switched on.
func (d *DB) ListReminderProfiles(ctx context.Context) ([]domain.UserProfile, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT "+profileColumns+" FROM users WHERE reminder_enabled ORDER BY id;")
	if err != nil {
		return nil, domain.StoreFailure("list reminder profiles", err)
	}
	defer rows.Close()

	var out []domain.UserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, domain.StoreFailure("list reminder profiles", err)
		}
		out = append(out, *p)
	}
	return out, domain.StoreFailure("list reminder profiles", rows.Err())
}

// profileAssignments builds the SET list of an UPDATE with positional
// parameters starting at $1. Cleared optional columns are set to NULL.
func profileAssignments(u domain.ProfileUpdate) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if u.DisplayName != nil {
		add("display_name", *u.DisplayName)
	}
	if u.Height != nil {
		add("height", *u.Height)
	}
	if u.Gender != nil {
		add("gender", string(*u.Gender))
	}
	if u.PartnerUID != nil {
		if *u.PartnerUID == "" {
			sets = append(sets, "partner_uid=NULL")
		} else {
			add("partner_uid", *u.PartnerUID)
		}
	}
	if u.TargetWeight != nil {
		if *u.TargetWeight == 0 {
			sets = append(sets, "target_weight=NULL")
		} else {
			add("target_weight", *u.TargetWeight)
		}
	}
	if u.ReminderEnabled != nil {
		add("reminder_enabled", *u.ReminderEnabled)
	}
	if u.ReminderTime != nil {
		add("reminder_time", *u.ReminderTime)
	}
	if u.Timezone != nil {
		add("timezone", *u.Timezone)
	}
	if u.Theme != nil {
		add("theme", string(*u.Theme))
	}
	return sets, args
}
