// Package oauth contiene el Issuer (/oauth2/authorize) y el Exchanger
// (/oauth2/token) del authorization code grant.
package oauth

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
	"github.com/dropDatabas3/grantbridge/internal/metrics"
)

// Errores de dominio. El controller los traduce a AppError.
var (
	ErrMissingParameter     = errors.New("missing_parameter")
	ErrInvalidClient        = errors.New("invalid_client")
	ErrInvalidRedirect      = errors.New("invalid_redirect")
	ErrServiceUnavailable   = errors.New("service_unavailable")
	ErrUnsupportedGrantType = errors.New("unsupported_grant_type")
	ErrInvalidToken         = errors.New("invalid_token")
	ErrExpiredToken         = errors.New("expired_token")
)

// GrantTypeAuthorizationCode es el único grant soportado.
const GrantTypeAuthorizationCode = "authorization_code"

// ClientRegistry es el contrato de lectura del registry de clients.
type ClientRegistry interface {
	Secret(ctx context.Context, publicID string) (*repository.ClientSecret, error)
	ClientByPublicID(ctx context.Context, publicID string) (*repository.Client, error)
	Redirects(ctx context.Context, clientID string) ([]repository.RedirectURI, error)
	VerifySecret(plain, secretHash string) bool
}

// ServiceCatalog resuelve un short name a un servicio habilitado.
type ServiceCatalog interface {
	EnabledService(ctx context.Context, shortName string) (*repository.Service, error)
}

// TokenIssuer entrega la credencial del usuario para un servicio.
type TokenIssuer interface {
	TokenForUser(ctx context.Context, userID string, svc *repository.Service) (string, error)
}

// Deps contiene las dependencias para crear los services OAuth.
type Deps struct {
	Registry ClientRegistry
	Catalog  ServiceCatalog
	Issuer   TokenIssuer
	Codes    repository.AuthCodeRepository
	Metrics  *metrics.Metrics

	CodeTTL    time.Duration
	CodeLength int
	// VerifyExchangeRedirect exige en el canje el mismo redirect_uri que
	// quedó asociado al code.
	VerifyExchangeRedirect bool
}

// Services agrupa los services del dominio OAuth.
type Services struct {
	Authorize AuthorizeService
	Token     TokenService
}

func NewServices(d Deps) Services {
	return Services{
		Authorize: NewAuthorizeService(AuthorizeDeps{
			Registry:   d.Registry,
			Catalog:    d.Catalog,
			Issuer:     d.Issuer,
			Codes:      d.Codes,
			Metrics:    d.Metrics,
			CodeTTL:    d.CodeTTL,
			CodeLength: d.CodeLength,
		}),
		Token: NewTokenService(TokenDeps{
			Registry:       d.Registry,
			Codes:          d.Codes,
			Metrics:        d.Metrics,
			VerifyRedirect: d.VerifyExchangeRedirect,
		}),
	}
}
