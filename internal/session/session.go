// Package session resuelve la identidad autenticada de un request a partir de
// un token de sesión firmado (HS256), en cookie o en Authorization: Bearer.
//
// El login en sí vive fuera de este servicio; acá solo se verifica el token y
// se expone Identity al Issuer.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSession: el request no trae token de sesión.
	ErrNoSession = errors.New("session: not authenticated")
	// ErrInvalidSession: el token no verifica (firma, issuer, expiración).
	ErrInvalidSession = errors.New("session: invalid token")
)

// Identity es el usuario detrás del request.
type Identity struct {
	UserID string
	Guest  bool
}

type claims struct {
	Guest bool `json:"guest,omitempty"`
	jwtv5.RegisteredClaims
}

// Manager firma y verifica tokens de sesión.
type Manager struct {
	secret     []byte
	issuer     string
	cookieName string
	now        func() time.Time
}

func NewManager(secret, issuer, cookieName string) *Manager {
	return &Manager{
		secret:     []byte(secret),
		issuer:     issuer,
		cookieName: cookieName,
		now:        time.Now,
	}
}

// CookieName retorna el nombre de la cookie de sesión.
func (m *Manager) CookieName() string { return m.cookieName }

// Sign emite un token de sesión para userID válido por ttl.
func (m *Manager) Sign(userID string, guest bool, ttl time.Duration) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("session: empty user id")
	}
	if len(m.secret) == 0 {
		return "", errors.New("session: secret not configured")
	}
	now := m.now()
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims{
		Guest: guest,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		},
	})
	return tk.SignedString(m.secret)
}

// Parse verifica un token y retorna la identidad.
// Sin secret configurado ningún token es válido.
func (m *Manager) Parse(raw string) (Identity, error) {
	if len(m.secret) == 0 {
		return Identity{}, fmt.Errorf("%w: secret not configured", ErrInvalidSession)
	}
	var c claims
	_, err := jwtv5.ParseWithClaims(raw, &c,
		func(*jwtv5.Token) (any, error) { return m.secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithIssuer(m.issuer),
		jwtv5.WithTimeFunc(m.now),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if c.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidSession)
	}
	return Identity{UserID: c.Subject, Guest: c.Guest}, nil
}

// FromRequest busca el token en Authorization: Bearer y luego en la cookie.
func (m *Manager) FromRequest(r *http.Request) (Identity, error) {
	raw := ""
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		raw = strings.TrimSpace(h[7:])
	}
	if raw == "" {
		if ck, err := r.Cookie(m.cookieName); err == nil {
			raw = ck.Value
		}
	}
	if raw == "" {
		return Identity{}, ErrNoSession
	}
	return m.Parse(raw)
}

// Logout borra la cookie de sesión.
func (m *Manager) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
