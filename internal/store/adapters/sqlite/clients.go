package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
)

type clientRepo struct{ db *sql.DB }

func (r *clientRepo) Get(ctx context.Context, id string) (*repository.Client, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM oauth_client WHERE id = ?`, id)
}

func (r *clientRepo) GetByName(ctx context.Context, name string) (*repository.Client, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM oauth_client WHERE name = ? ORDER BY created_at LIMIT 1`, name)
}

func (r *clientRepo) getOne(ctx context.Context, query string, arg string) (*repository.Client, error) {
	var c repository.Client
	var created int64
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &created); err != nil {
		return nil, mapErr(err)
	}
	c.CreatedAt = fromMillis(created)
	return &c, nil
}

func (r *clientRepo) List(ctx context.Context, nameFilter string) ([]repository.ClientWithRedirects, error) {
	const query = `
		SELECT c.id, c.name, c.created_at, COALESCE(r.id, ''), COALESCE(r.redirect_uri, '')
		FROM oauth_client c
		LEFT JOIN oauth_redirect r ON r.client_id = c.id
		WHERE ? = '' OR instr(lower(c.name), lower(?)) > 0
		ORDER BY c.name, c.id, r.redirect_uri
	`
	rows, err := r.db.QueryContext(ctx, query, nameFilter, nameFilter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.ClientWithRedirects
	for rows.Next() {
		var c repository.Client
		var created int64
		var rid, ruri string
		if err := rows.Scan(&c.ID, &c.Name, &created, &rid, &ruri); err != nil {
			return nil, err
		}
		if n := len(out); n == 0 || out[n-1].ID != c.ID {
			c.CreatedAt = fromMillis(created)
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
	c := &repository.Client{ID: newID(), Name: name, CreatedAt: time.Now().UTC().Truncate(time.Millisecond)}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO oauth_client (id, name, created_at) VALUES (?, ?, ?)`,
		c.ID, c.Name, toMillis(c.CreatedAt))
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (r *clientRepo) Rename(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE oauth_client SET name = ? WHERE id = ?`, name, id)
	return affectedOne(res, err)
}

func (r *clientRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM oauth_code WHERE client_id = ?`,
		`DELETE FROM oauth_secret WHERE client_id = ?`,
		`DELETE FROM oauth_redirect WHERE client_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("sqlite: cascade delete: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM oauth_client WHERE id = ?`, id)
	if err := affectedOne(res, err); err != nil {
		return err
	}
	return tx.Commit()
}

// ─── Redirect URIs ───

func (r *clientRepo) ListRedirects(ctx context.Context, clientID string) ([]repository.RedirectURI, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_id, redirect_uri FROM oauth_redirect WHERE client_id = ? ORDER BY redirect_uri`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.RedirectURI
	for rows.Next() {
		var ru repository.RedirectURI
		if err := rows.Scan(&ru.ID, &ru.ClientID, &ru.URI); err != nil {
			return nil, err
		}
		out = append(out, ru)
	}
	return out, rows.Err()
}

func (r *clientRepo) AddRedirect(ctx context.Context, clientID, uri string) (*repository.RedirectURI, error) {
	ru := &repository.RedirectURI{ID: newID(), ClientID: clientID, URI: uri}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO oauth_redirect (id, client_id, redirect_uri) VALUES (?, ?, ?)`, ru.ID, ru.ClientID, ru.URI)
	if err != nil {
		return nil, mapErr(err)
	}
	return ru, nil
}

func (r *clientRepo) DeleteRedirect(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM oauth_redirect WHERE id = ?`, id)
	return affectedOne(res, err)
}

// ─── Secrets ───

func (r *clientRepo) ListSecrets(ctx context.Context, clientID string) ([]repository.ClientSecret, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_id, public_id, secret_hash, created_at FROM oauth_secret WHERE client_id = ? ORDER BY created_at, public_id`,
		clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.ClientSecret
	for rows.Next() {
		var s repository.ClientSecret
		var created int64
		if err := rows.Scan(&s.ID, &s.ClientID, &s.PublicID, &s.SecretHash, &created); err != nil {
			return nil, err
		}
		s.CreatedAt = fromMillis(created)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *clientRepo) GetSecretByPublicID(ctx context.Context, publicID string) (*repository.ClientSecret, error) {
	var s repository.ClientSecret
	var created int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, public_id, secret_hash, created_at FROM oauth_secret WHERE public_id = ?`, publicID,
	).Scan(&s.ID, &s.ClientID, &s.PublicID, &s.SecretHash, &created)
	if err != nil {
		return nil, mapErr(err)
	}
	s.CreatedAt = fromMillis(created)
	return &s, nil
}

func (r *clientRepo) AddSecret(ctx context.Context, clientID, publicID, secretHash string) (*repository.ClientSecret, error) {
	s := &repository.ClientSecret{
		ID:         newID(),
		ClientID:   clientID,
		PublicID:   publicID,
		SecretHash: secretHash,
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO oauth_secret (id, client_id, public_id, secret_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.ClientID, s.PublicID, s.SecretHash, toMillis(s.CreatedAt))
	if err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *clientRepo) DeleteSecret(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM oauth_secret WHERE id = ?`, id)
	return affectedOne(res, err)
}

// affectedOne retorna ErrNotFound si el statement no tocó ninguna fila.
func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
