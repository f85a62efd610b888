package repository

import (
	"context"
	"time"
)

// Service es una entrada del catálogo de web services a los que un code
// puede dar acceso (el "scope" del request de autorización).
type Service struct {
	ID        string
	ShortName string
	Name      string
	Enabled   bool
}

// ServiceToken es la credencial opaca que recibe el cliente al canjear el code.
type ServiceToken struct {
	ID         string
	Token      string
	UserID     string
	ServiceID  string
	ValidUntil *time.Time // nil = sin vencimiento
	CreatedAt  time.Time
}

// ServiceRepository define operaciones sobre el catálogo de servicios.
type ServiceRepository interface {
	// GetByShortName retorna ErrNotFound si no existe.
	GetByShortName(ctx context.Context, shortName string) (*Service, error)
	List(ctx context.Context) ([]Service, error)
	// Create retorna ErrConflict si el short name ya existe.
	Create(ctx context.Context, shortName, name string, enabled bool) (*Service, error)
	SetEnabled(ctx context.Context, shortName string, enabled bool) error
}

// ServiceTokenRepository define operaciones sobre las credenciales emitidas.
type ServiceTokenRepository interface {
	// FindValid retorna el token más reciente del usuario para el servicio
	// que siga vigente en now. Retorna ErrNotFound si no hay.
	FindValid(ctx context.Context, userID, serviceID string, now time.Time) (*ServiceToken, error)

	// Create retorna ErrConflict si el valor de token ya existe.
	Create(ctx context.Context, tok ServiceToken) error
}

// Store agrupa los repositorios que expone un adapter conectado.
type Store interface {
	Clients() ClientRepository
	Codes() AuthCodeRepository
	Services() ServiceRepository
	ServiceTokens() ServiceTokenRepository

	Ping(ctx context.Context) error
	Close() error
}
