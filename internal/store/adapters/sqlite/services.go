package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
)

type serviceRepo struct{ db *sql.DB }

func (r *serviceRepo) GetByShortName(ctx context.Context, shortName string) (*repository.Service, error) {
	var s repository.Service
	err := r.db.QueryRowContext(ctx,
		`SELECT id, short_name, name, enabled FROM web_service WHERE short_name = ?`, shortName,
	).Scan(&s.ID, &s.ShortName, &s.Name, &s.Enabled)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *serviceRepo) List(ctx context.Context) ([]repository.Service, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, short_name, name, enabled FROM web_service ORDER BY short_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Service
	for rows.Next() {
		var s repository.Service
		if err := rows.Scan(&s.ID, &s.ShortName, &s.Name, &s.Enabled); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *serviceRepo) Create(ctx context.Context, shortName, name string, enabled bool) (*repository.Service, error) {
	s := &repository.Service{ID: newID(), ShortName: shortName, Name: name, Enabled: enabled}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO web_service (id, short_name, name, enabled) VALUES (?, ?, ?, ?)`,
		s.ID, s.ShortName, s.Name, s.Enabled)
	if err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *serviceRepo) SetEnabled(ctx context.Context, shortName string, enabled bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE web_service SET enabled = ? WHERE short_name = ?`, enabled, shortName)
	return affectedOne(res, err)
}

type serviceTokenRepo struct{ db *sql.DB }

func (r *serviceTokenRepo) FindValid(ctx context.Context, userID, serviceID string, now time.Time) (*repository.ServiceToken, error) {
	var t repository.ServiceToken
	var validUntil sql.NullInt64
	var created int64
	err := r.db.QueryRowContext(ctx, `
		SELECT id, token, user_id, service_id, valid_until, created_at
		FROM web_service_token
		WHERE user_id = ? AND service_id = ? AND (valid_until IS NULL OR valid_until > ?)
		ORDER BY created_at DESC
		LIMIT 1`,
		userID, serviceID, toMillis(now),
	).Scan(&t.ID, &t.Token, &t.UserID, &t.ServiceID, &validUntil, &created)
	if err != nil {
		return nil, mapErr(err)
	}
	if validUntil.Valid {
		v := fromMillis(validUntil.Int64)
		t.ValidUntil = &v
	}
	t.CreatedAt = fromMillis(created)
	return &t, nil
}

func (r *serviceTokenRepo) Create(ctx context.Context, t repository.ServiceToken) error {
	if t.ID == "" {
		t.ID = newID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	var validUntil any
	if t.ValidUntil != nil {
		validUntil = toMillis(*t.ValidUntil)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO web_service_token (id, token, user_id, service_id, valid_until, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Token, t.UserID, t.ServiceID, validUntil, toMillis(t.CreatedAt))
	return mapErr(err)
}
