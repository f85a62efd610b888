package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
)

type codeRepo struct{ db *sql.DB }

func (r *codeRepo) Create(ctx context.Context, c repository.AuthorizationCode) error {
	if c.ID == "" {
		c.ID = newID()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO oauth_code (id, client_id, code, redirect_uri, access_token, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.ClientID, c.Code, c.RedirectURI, c.AccessToken, toMillis(c.ExpiresAt))
	return mapErr(err)
}

func (r *codeRepo) Consume(ctx context.Context, code, clientID string) (*repository.AuthorizationCode, error) {
	var c repository.AuthorizationCode
	var expires int64
	err := r.db.QueryRowContext(ctx, `
		DELETE FROM oauth_code
		WHERE code = ? AND client_id = ?
		RETURNING id, client_id, code, redirect_uri, access_token, expires_at`,
		code, clientID,
	).Scan(&c.ID, &c.ClientID, &c.Code, &c.RedirectURI, &c.AccessToken, &expires)
	if err != nil {
		return nil, mapErr(err)
	}
	c.ExpiresAt = fromMillis(expires)
	return &c, nil
}

func (r *codeRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM oauth_code WHERE expires_at < ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
