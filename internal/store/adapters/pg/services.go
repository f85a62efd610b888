package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
)

type serviceRepo struct{ pool *pgxpool.Pool }

func (r *serviceRepo) GetByShortName(ctx context.Context, shortName string) (*repository.Service, error) {
	var s repository.Service
	err := r.pool.QueryRow(ctx,
		`SELECT id::text, short_name, name, enabled FROM web_service WHERE short_name = $1`, shortName).
		Scan(&s.ID, &s.ShortName, &s.Name, &s.Enabled)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *serviceRepo) List(ctx context.Context) ([]repository.Service, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, short_name, name, enabled FROM web_service ORDER BY short_name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.Service, error) {
		var s repository.Service
		err := row.Scan(&s.ID, &s.ShortName, &s.Name, &s.Enabled)
		return s, err
	})
}

func (r *serviceRepo) Create(ctx context.Context, shortName, name string, enabled bool) (*repository.Service, error) {
	s := &repository.Service{ID: newID(), ShortName: shortName, Name: name, Enabled: enabled}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO web_service (id, short_name, name, enabled) VALUES ($1, $2, $3, $4)`,
		s.ID, s.ShortName, s.Name, s.Enabled)
	if err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *serviceRepo) SetEnabled(ctx context.Context, shortName string, enabled bool) error {
	return affectedOne(r.pool.Exec(ctx, `UPDATE web_service SET enabled = $2 WHERE short_name = $1`, shortName, enabled))
}

type serviceTokenRepo struct{ pool *pgxpool.Pool }

func (r *serviceTokenRepo) FindValid(ctx context.Context, userID, serviceID string, now time.Time) (*repository.ServiceToken, error) {
	var t repository.ServiceToken
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, token, user_id, service_id::text, valid_until, created_at
		FROM web_service_token
		WHERE user_id = $1 AND service_id::text = $2 AND (valid_until IS NULL OR valid_until > $3)
		ORDER BY created_at DESC
		LIMIT 1`,
		userID, serviceID, now.UTC(),
	).Scan(&t.ID, &t.Token, &t.UserID, &t.ServiceID, &t.ValidUntil, &t.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (r *serviceTokenRepo) Create(ctx context.Context, t repository.ServiceToken) error {
	if t.ID == "" {
		t.ID = newID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO web_service_token (id, token, user_id, service_id, valid_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Token, t.UserID, t.ServiceID, t.ValidUntil, t.CreatedAt.UTC())
	return mapErr(err)
}
