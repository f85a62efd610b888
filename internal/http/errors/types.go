package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError es el envelope de error que ve el cliente HTTP.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa, solo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is compara por Code, así errors.Is funciona contra las variables base
// aunque el error haya pasado por WithDetail/WithCause.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// FromError convierte cualquier error en un AppError. Lo que no sea un
// AppError termina como error interno conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail devuelve una copia con Detail seteado.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause devuelve una copia con la causa original.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// ERRORES PREDEFINIDOS
// =================================================================================

var (
	ErrMissingParameter     = New(http.StatusBadRequest, "missing_parameter", "Falta un parámetro requerido o es inválido.")
	ErrInvalidClient        = New(http.StatusUnauthorized, "invalid_client", "Credenciales de cliente inválidas.")
	ErrInvalidRedirect      = New(http.StatusBadRequest, "invalid_redirect", "El redirect_uri no está registrado para el cliente.")
	ErrServiceUnavailable   = New(http.StatusBadRequest, "service_unavailable", "El servicio solicitado no existe o está deshabilitado.")
	ErrUnsupportedGrantType = New(http.StatusBadRequest, "unsupported_grant_type", "Solo se soporta grant_type=authorization_code.")
	ErrInvalidToken         = New(http.StatusBadRequest, "invalid_token", "El authorization code no es válido.")
	ErrExpiredToken         = New(http.StatusBadRequest, "expired_token", "El authorization code expiró.")
)

var (
	ErrMethodNotAllowed    = New(http.StatusMethodNotAllowed, "method_not_allowed", "Método no permitido.")
	ErrPayloadTooLarge     = New(http.StatusRequestEntityTooLarge, "payload_too_large", "El cuerpo del request es demasiado grande.")
	ErrRateLimitExceeded   = New(http.StatusTooManyRequests, "rate_limit_exceeded", "Demasiadas solicitudes, intentá más tarde.")
	ErrInternalServerError = New(http.StatusInternalServerError, "internal_error", "Ocurrió un error interno.")
)
