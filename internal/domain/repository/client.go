package repository

import (
	"context"
	"time"
)

// Client agrupa redirect URIs y secrets de una aplicación registrada.
type Client struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// RedirectURI es un destino pre-registrado para el code.
type RedirectURI struct {
	ID       string
	ClientID string
	URI      string
}

// ClientSecret es el par (public id, hash) con el que el cliente se autentica
// en el token endpoint. El secret en claro nunca se persiste.
type ClientSecret struct {
	ID         string
	ClientID   string
	PublicID   string
	SecretHash string
	CreatedAt  time.Time
}

// ClientWithRedirects es la vista que usa el listado del CLI.
type ClientWithRedirects struct {
	Client
	Redirects []RedirectURI
}

// ClientRepository define operaciones sobre clients, sus redirect URIs y sus secrets.
type ClientRepository interface {
	// Get obtiene un client por su id interno.
	// Retorna ErrNotFound si no existe.
	Get(ctx context.Context, id string) (*Client, error)

	// GetByName obtiene un client por nombre exacto.
	GetByName(ctx context.Context, name string) (*Client, error)

	// List lista los clients con sus redirects. nameFilter vacío lista todos.
	List(ctx context.Context, nameFilter string) ([]ClientWithRedirects, error)

	// Create crea un client nuevo.
	Create(ctx context.Context, name string) (*Client, error)

	// Rename cambia el nombre visible.
	Rename(ctx context.Context, id, name string) error

	// Delete elimina el client y, en la misma transacción, sus redirects,
	// secrets y codes pendientes.
	Delete(ctx context.Context, id string) error

	// ─── Redirect URIs ───

	ListRedirects(ctx context.Context, clientID string) ([]RedirectURI, error)
	AddRedirect(ctx context.Context, clientID, uri string) (*RedirectURI, error)
	DeleteRedirect(ctx context.Context, id string) error

	// ─── Secrets ───

	ListSecrets(ctx context.Context, clientID string) ([]ClientSecret, error)

	// GetSecretByPublicID resuelve el secret por public client id.
	// Retorna ErrNotFound si no existe.
	GetSecretByPublicID(ctx context.Context, publicID string) (*ClientSecret, error)

	// AddSecret persiste un secret ya hasheado.
	// Retorna ErrConflict si el public id ya existe.
	AddSecret(ctx context.Context, clientID, publicID, secretHash string) (*ClientSecret, error)

	DeleteSecret(ctx context.Context, id string) error
}
