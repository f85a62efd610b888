// Package registry es el Client Registry: resuelve clients por su public id,
// lista sus redirect URIs y verifica secrets. También expone las mutaciones
// administrativas que usa grantctl.
package registry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dropDatabas3/grantbridge/internal/audit"
	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
	"github.com/dropDatabas3/grantbridge/internal/observability/logger"
	"github.com/dropDatabas3/grantbridge/internal/security/password"
	tokens "github.com/dropDatabas3/grantbridge/internal/security/token"
)

const (
	PublicIDLength = 15
	SecretLength   = 64

	maxSecretAttempts = 3
)

var (
	ErrInvalidName        = errors.New("registry: name must not be empty")
	ErrInvalidRedirectURI = errors.New("registry: redirect uri must be an absolute http(s) url")
	ErrAmbiguous          = errors.New("registry: more than one match")
)

// Registry implementa el contrato de lectura del registry y las
// operaciones de administración.
type Registry struct {
	repo   repository.ClientRepository
	hasher password.Hasher
}

func New(repo repository.ClientRepository, hasher password.Hasher) *Registry {
	return &Registry{repo: repo, hasher: hasher}
}

// ─── Contrato de lectura ───

// Secret resuelve el ClientSecret por public client id.
func (r *Registry) Secret(ctx context.Context, publicID string) (*repository.ClientSecret, error) {
	return r.repo.GetSecretByPublicID(ctx, publicID)
}

// ClientByPublicID resuelve public id → secret → client.
// Retorna repository.ErrNotFound si falta cualquiera de los dos.
func (r *Registry) ClientByPublicID(ctx context.Context, publicID string) (*repository.Client, error) {
	sec, err := r.repo.GetSecretByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return r.repo.Get(ctx, sec.ClientID)
}

// Redirects lista las redirect URIs registradas del client.
func (r *Registry) Redirects(ctx context.Context, clientID string) ([]repository.RedirectURI, error) {
	return r.repo.ListRedirects(ctx, clientID)
}

// VerifySecret compara en tiempo constante contra el hash almacenado.
func (r *Registry) VerifySecret(plain, secretHash string) bool {
	return password.Verify(plain, secretHash)
}

// ─── Administración ───

// ResolveClient busca por id interno y, si no existe, por nombre exacto.
func (r *Registry) ResolveClient(ctx context.Context, idOrName string) (*repository.Client, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return nil, repository.ErrNotFound
	}
	c, err := r.repo.Get(ctx, idOrName)
	if err == nil || !repository.IsNotFound(err) {
		return c, err
	}
	return r.repo.GetByName(ctx, idOrName)
}

func (r *Registry) List(ctx context.Context, nameFilter string) ([]repository.ClientWithRedirects, error) {
	return r.repo.List(ctx, strings.TrimSpace(nameFilter))
}

func (r *Registry) CreateClient(ctx context.Context, name string) (*repository.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	c, err := r.repo.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.EventClientCreated, logger.ClientID(c.ID), logger.String("name", c.Name))
	return c, nil
}

func (r *Registry) RenameClient(ctx context.Context, clientID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	return r.repo.Rename(ctx, clientID, name)
}

// DropClient elimina el client con sus redirects, secrets y codes.
func (r *Registry) DropClient(ctx context.Context, clientID string) error {
	if err := r.repo.Delete(ctx, clientID); err != nil {
		return err
	}
	audit.Log(ctx, audit.EventClientDropped, logger.ClientID(clientID))
	return nil
}

// ValidateRedirectURI exige una URL absoluta http(s) con host.
func ValidateRedirectURI(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ErrInvalidRedirectURI
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidRedirectURI
	}
	return nil
}

func (r *Registry) AddRedirect(ctx context.Context, clientID, uri string) (*repository.RedirectURI, error) {
	uri = strings.TrimSpace(uri)
	if err := ValidateRedirectURI(uri); err != nil {
		return nil, err
	}
	return r.repo.AddRedirect(ctx, clientID, uri)
}

// MatchRedirects retorna las URIs del client que contienen partial.
// Es un atajo del CLI: el flujo de autorización siempre compara exacto.
func (r *Registry) MatchRedirects(ctx context.Context, clientID, partial string) ([]repository.RedirectURI, error) {
	all, err := r.repo.ListRedirects(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if partial == "" {
		return all, nil
	}
	var out []repository.RedirectURI
	for _, ru := range all {
		if strings.Contains(ru.URI, partial) {
			out = append(out, ru)
		}
	}
	return out, nil
}

func (r *Registry) DropRedirect(ctx context.Context, redirectID string) error {
	return r.repo.DeleteRedirect(ctx, redirectID)
}

// IssuedSecret es el resultado de AddSecret. Secret es el único momento en
// que el valor en claro está disponible.
type IssuedSecret struct {
	PublicID string
	Secret   string
}

// AddSecret genera un par (public id, secret), guarda solo el hash y
// retorna el secret en claro una única vez.
func (r *Registry) AddSecret(ctx context.Context, clientID string) (*IssuedSecret, error) {
	if _, err := r.repo.Get(ctx, clientID); err != nil {
		return nil, err
	}
	secret, err := tokens.RandomAlphanumeric(SecretLength)
	if err != nil {
		return nil, err
	}
	hash, err := r.hasher.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("registry: hash secret: %w", err)
	}

	for attempt := 0; attempt < maxSecretAttempts; attempt++ {
		publicID, err := tokens.RandomAlphanumeric(PublicIDLength)
		if err != nil {
			return nil, err
		}
		_, err = r.repo.AddSecret(ctx, clientID, publicID, hash)
		if err == nil {
			audit.Log(ctx, audit.EventSecretIssued, logger.ClientID(clientID), logger.PublicID(publicID))
			return &IssuedSecret{PublicID: publicID, Secret: secret}, nil
		}
		if !repository.IsConflict(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("registry: could not allocate a unique public id: %w", repository.ErrConflict)
}

func (r *Registry) Secrets(ctx context.Context, clientID string) ([]repository.ClientSecret, error) {
	return r.repo.ListSecrets(ctx, clientID)
}

// DropSecret revoca el secret con ese public id, siempre que sea del client.
func (r *Registry) DropSecret(ctx context.Context, clientID, publicID string) error {
	sec, err := r.repo.GetSecretByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	if sec.ClientID != clientID {
		return repository.ErrNotFound
	}
	if err := r.repo.DeleteSecret(ctx, sec.ID); err != nil {
		return err
	}
	audit.Log(ctx, audit.EventSecretRevoked, logger.ClientID(clientID), logger.PublicID(publicID))
	return nil
}
