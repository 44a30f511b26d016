package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"meowscale/internal/domain"
)

const weightColumns = "id, user_id, weight, bmi, ts"

func scanWeight(row rowScanner) (domain.WeightRecord, error) {
	var (
		r  domain.WeightRecord
		id int64
	)
	if err := row.Scan(&id, &r.UserID, &r.Weight, &r.BMI, &r.Timestamp); err != nil {
		return r, err
	}
	r.ID = strconv.FormatInt(id, 10)
	r.Timestamp = r.Timestamp.UTC()
	return r, nil
}

// QueryRecords returns a user's records, most recent first.
func (d *DB) QueryRecords(ctx context.Context, userID string, limit int) ([]domain.WeightRecord, error) {
	query := "SELECT " + weightColumns + " FROM weights WHERE user_id=$1 ORDER BY ts DESC"
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	rows, err := d.sql.QueryContext(ctx, query+";", args...)
	if err != nil {
		return nil, domain.StoreFailure("query weights", err)
	}
	defer rows.Close()

	out := make([]domain.WeightRecord, 0)
	for rows.Next() {
		r, err := scanWeight(rows)
		if err != nil {
			return nil, domain.StoreFailure("query weights", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreFailure("query weights", err)
	}
	return out, nil
}

// InsertRecord inserts a new weight row and returns its ID.
func (d *DB) InsertRecord(ctx context.Context, rec domain.WeightRecord) (string, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO weights(user_id, weight, bmi, ts) VALUES($1, $2, $3, $4) RETURNING id;",
		rec.UserID, rec.Weight, rec.BMI, rec.Timestamp.UTC(),
	).Scan(&id)
	if err != nil {
		return "", domain.StoreFailure("insert weight", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// UpdateRecord overwrites weight, bmi and timestamp of a row.
func (d *DB) UpdateRecord(ctx context.Context, id string, u domain.WeightUpdate) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := d.sql.ExecContext(ctx,
		"UPDATE weights SET weight=$1, bmi=$2, ts=$3 WHERE id=$4;",
		u.Weight, u.BMI, u.Timestamp.UTC(), n,
	)
	if err != nil {
		return domain.StoreFailure("update weight", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.StoreFailure("update weight", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindRecordInRange returns the latest record with from <= ts < to.
func (d *DB) FindRecordInRange(ctx context.Context, userID string, from, to time.Time) (*domain.WeightRecord, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT "+weightColumns+" FROM weights WHERE user_id=$1 AND ts >= $2 AND ts < $3 ORDER BY ts DESC LIMIT 1;",
		userID, from.UTC(), to.UTC(),
	)
	return optionalWeight("find weight in range", row)
}

// LatestRecordBefore returns the latest record strictly before the instant.
func (d *DB) LatestRecordBefore(ctx context.Context, userID string, before time.Time) (*domain.WeightRecord, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT "+weightColumns+" FROM weights WHERE user_id=$1 AND ts < $2 ORDER BY ts DESC LIMIT 1;",
		userID, before.UTC(),
	)
	return optionalWeight("find previous weight", row)
}

func optionalWeight(op string, row *sql.Row) (*domain.WeightRecord, error) {
	r, err := scanWeight(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StoreFailure(op, err)
	}
	return &r, nil
}
