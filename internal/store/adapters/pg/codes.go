package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
)

type codeRepo struct{ pool *pgxpool.Pool }

func (r *codeRepo) Create(ctx context.Context, c repository.AuthorizationCode) error {
	if c.ID == "" {
		c.ID = newID()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO oauth_code (id, client_id, code, redirect_uri, access_token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.ClientID, c.Code, c.RedirectURI, c.AccessToken, toMillis(c.ExpiresAt))
	return mapErr(err)
}

// Consume: un único DELETE ... RETURNING. Con dos canjes concurrentes el
// segundo espera el lock de la fila y al re-evaluar no encuentra nada.
func (r *codeRepo) Consume(ctx context.Context, code, clientID string) (*repository.AuthorizationCode, error) {
	var c repository.AuthorizationCode
	err := r.pool.QueryRow(ctx, `
		DELETE FROM oauth_code
		WHERE code = $1 AND client_id::text = $2
		RETURNING id::text, client_id::text, code, redirect_uri, access_token, expires_at`,
		code, clientID,
	).Scan(&c.ID, &c.ClientID, &c.Code, &c.RedirectURI, &c.AccessToken, &c.ExpiresAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *codeRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM oauth_code WHERE expires_at < $1`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// toMillis lleva t a UTC con resolución de milisegundos: la misma que usan
// AuthorizationCode.Expired y el adapter SQLite. timestamptz guarda
// microsegundos, así que se trunca antes de escribir o comparar.
func toMillis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}
