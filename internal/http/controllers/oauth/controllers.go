// Package oauth contiene los controllers HTTP de /oauth2/authorize y
// /oauth2/token.
package oauth

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/grantbridge/internal/session"

	httperrors "github.com/dropDatabas3/grantbridge/internal/http/errors"
	svc "github.com/dropDatabas3/grantbridge/internal/http/services/oauth"
)

// SessionReader resuelve la identidad del request y permite cerrar la sesión.
type SessionReader interface {
	FromRequest(r *http.Request) (session.Identity, error)
	Logout(w http.ResponseWriter)
}

// Controllers agrupa los controllers del dominio OAuth.
type Controllers struct {
	Authorize *AuthorizeController
	Token     *TokenController
}

func NewControllers(s svc.Services, sessions SessionReader, loginURL string) *Controllers {
	return &Controllers{
		Authorize: NewAuthorizeController(s.Authorize, sessions, loginURL),
		Token:     NewTokenController(s.Token),
	}
}

// toAppError traduce los errores del service al envelope HTTP.
func toAppError(err error) *httperrors.AppError {
	switch {
	case errors.Is(err, svc.ErrMissingParameter):
		return httperrors.ErrMissingParameter.WithDetail(detailOf(err))
	case errors.Is(err, svc.ErrInvalidClient):
		return httperrors.ErrInvalidClient
	case errors.Is(err, svc.ErrInvalidRedirect):
		return httperrors.ErrInvalidRedirect
	case errors.Is(err, svc.ErrServiceUnavailable):
		return httperrors.ErrServiceUnavailable
	case errors.Is(err, svc.ErrUnsupportedGrantType):
		return httperrors.ErrUnsupportedGrantType
	case errors.Is(err, svc.ErrInvalidToken):
		return httperrors.ErrInvalidToken
	case errors.Is(err, svc.ErrExpiredToken):
		return httperrors.ErrExpiredToken
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}

// detailOf extrae el nombre del parámetro de "missing_parameter: <name>".
func detailOf(err error) string {
	msg := err.Error()
	prefix := svc.ErrMissingParameter.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return ""
}
