package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
)

type clientRepo struct{ pool *pgxpool.Pool }

func (r *clientRepo) Get(ctx context.Context, id string) (*repository.Client, error) {
	var c repository.Client
	err := r.pool.QueryRow(ctx, `SELECT id::text, name, created_at FROM oauth_client WHERE id::text = $1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *clientRepo) GetByName(ctx context.Context, name string) (*repository.Client, error) {
	var c repository.Client
	err := r.pool.QueryRow(ctx,
		`SELECT id::text, name, created_at FROM oauth_client WHERE name = $1 ORDER BY created_at LIMIT 1`, name).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *clientRepo) List(ctx context.Context, nameFilter string) ([]repository.ClientWithRedirects, error) {
	const query = `
		SELECT c.id::text, c.name, c.created_at, COALESCE(r.id::text, ''), COALESCE(r.redirect_uri, '')
		FROM oauth_client c
		LEFT JOIN oauth_redirect r ON r.client_id = c.id
		WHERE $1 = '' OR c.name ILIKE '%' || $1 || '%'
		ORDER BY c.name, c.id, r.redirect_uri
	`
	rows, err := r.pool.Query(ctx, query, nameFilter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.ClientWithRedirects
	for rows.Next() {
		var c repository.Client
		var rid, ruri string
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &rid, &ruri); err != nil {
			return nil, err
		}
		if n := len(out); n == 0 || out[n-1].ID != c.ID {
			out = append(out, repository.ClientWithRedirects{Client: c})
		}
		if rid != "" {
			last := &out[len(out)-1]
			last.Redirects = append(last.Redirects, repository.RedirectURI{ID: rid, ClientID: c.ID, URI: ruri})
		}
	}
	return out, rows.Err()
}

func (r *clientRepo) Create(ctx context.Context, name string) (*repository.Client, error) {
	c := &repository.Client{ID: newID(), Name: name}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO oauth_client (id, name) VALUES ($1, $2) RETURNING created_at`, c.ID, c.Name).
		Scan(&c.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (r *clientRepo) Rename(ctx context.Context, id, name string) error {
	return affectedOne(r.pool.Exec(ctx, `UPDATE oauth_client SET name = $2 WHERE id::text = $1`, id, name))
}

func (r *clientRepo) Delete(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, q := range []string{
			`DELETE FROM oauth_code WHERE client_id::text = $1`,
			`DELETE FROM oauth_secret WHERE client_id::text = $1`,
			`DELETE FROM oauth_redirect WHERE client_id::text = $1`,
		} {
			if _, err := tx.Exec(ctx, q, id); err != nil {
				return fmt.Errorf("pg: cascade delete: %w", err)
			}
		}
		return affectedOne(tx.Exec(ctx, `DELETE FROM oauth_client WHERE id::text = $1`, id))
	})
}

// ─── Redirect URIs ───

func (r *clientRepo) ListRedirects(ctx context.Context, clientID string) ([]repository.RedirectURI, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, client_id::text, redirect_uri FROM oauth_redirect WHERE client_id::text = $1 ORDER BY redirect_uri`,
		clientID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.RedirectURI, error) {
		var ru repository.RedirectURI
		err := row.Scan(&ru.ID, &ru.ClientID, &ru.URI)
		return ru, err
	})
}

func (r *clientRepo) AddRedirect(ctx context.Context, clientID, uri string) (*repository.RedirectURI, error) {
	ru := &repository.RedirectURI{ID: newID(), ClientID: clientID, URI: uri}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO oauth_redirect (id, client_id, redirect_uri) VALUES ($1, $2, $3)`, ru.ID, ru.ClientID, ru.URI)
	if err != nil {
		return nil, mapErr(err)
	}
	return ru, nil
}

func (r *clientRepo) DeleteRedirect(ctx context.Context, id string) error {
	return affectedOne(r.pool.Exec(ctx, `DELETE FROM oauth_redirect WHERE id::text = $1`, id))
}

// ─── Secrets ───

const secretColumns = `id::text, client_id::text, public_id, secret_hash, created_at`

func scanSecret(row pgx.Row) (repository.ClientSecret, error) {
	var s repository.ClientSecret
	err := row.Scan(&s.ID, &s.ClientID, &s.PublicID, &s.SecretHash, &s.CreatedAt)
	return s, err
}

func (r *clientRepo) ListSecrets(ctx context.Context, clientID string) ([]repository.ClientSecret, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+secretColumns+` FROM oauth_secret WHERE client_id::text = $1 ORDER BY created_at, public_id`, clientID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.ClientSecret, error) {
		return scanSecret(row)
	})
}

func (r *clientRepo) GetSecretByPublicID(ctx context.Context, publicID string) (*repository.ClientSecret, error) {
	s, err := scanSecret(r.pool.QueryRow(ctx,
		`SELECT `+secretColumns+` FROM oauth_secret WHERE public_id = $1`, publicID))
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *clientRepo) AddSecret(ctx context.Context, clientID, publicID, secretHash string) (*repository.ClientSecret, error) {
	s := &repository.ClientSecret{ID: newID(), ClientID: clientID, PublicID: publicID, SecretHash: secretHash}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO oauth_secret (id, client_id, public_id, secret_hash) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		s.ID, s.ClientID, s.PublicID, s.SecretHash).Scan(&s.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *clientRepo) DeleteSecret(ctx context.Context, id string) error {
	return affectedOne(r.pool.Exec(ctx, `DELETE FROM oauth_secret WHERE id::text = $1`, id))
}
