package repository

import (
	"context"
	"time"
)

// AuthorizationCode es un code de un solo uso emitido en /authorize.
type AuthorizationCode struct {
	ID          string
	ClientID    string
	Code        string
	RedirectURI string // copiado del registry al emitir; inmutable
	AccessToken string
	ExpiresAt   time.Time
}

// Expired indica si el code venció respecto de now, con resolución de
// milisegundos (la misma que persisten los adapters).
// Un code con ExpiresAt == now todavía es válido.
func (c AuthorizationCode) Expired(now time.Time) bool {
	return c.ExpiresAt.UnixMilli() < now.UnixMilli()
}

// AuthCodeRepository define operaciones sobre authorization codes.
type AuthCodeRepository interface {
	// Create inserta un code. Si ID está vacío el adapter genera uno.
	// Retorna ErrConflict si el valor de code ya existe.
	Create(ctx context.Context, code AuthorizationCode) error

	// Consume busca y elimina atómicamente el code del client indicado,
	// devolviendo la fila eliminada. Dos Consume concurrentes sobre el mismo
	// code: a lo sumo uno recibe la fila, el otro recibe ErrNotFound.
	// No evalúa expiración.
	Consume(ctx context.Context, code, clientID string) (*AuthorizationCode, error)

	// DeleteExpired elimina los codes con expires_at < now y retorna cuántos borró.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
