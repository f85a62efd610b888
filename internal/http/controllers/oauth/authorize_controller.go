package oauth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dropDatabas3/grantbridge/internal/observability/logger"
	"github.com/dropDatabas3/grantbridge/internal/session"

	dto "github.com/dropDatabas3/grantbridge/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/grantbridge/internal/http/errors"
	svc "github.com/dropDatabas3/grantbridge/internal/http/services/oauth"
)

// AuthorizeController maneja GET|POST /oauth2/authorize.
type AuthorizeController struct {
	service  svc.AuthorizeService
	sessions SessionReader
	loginURL string
}

func NewAuthorizeController(s svc.AuthorizeService, sessions SessionReader, loginURL string) *AuthorizeController {
	return &AuthorizeController{service: s, sessions: sessions, loginURL: loginURL}
}

// Authorize exige un usuario autenticado y no invitado, emite el code y
// redirige a la URI registrada.
func (c *AuthorizeController) Authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.authorize"))

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	identity, err := c.sessions.FromRequest(r)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			log.Debug("invalid session", logger.Err(err))
		}
		c.requireLogin(w, r)
		return
	}
	if identity.Guest {
		// invitado: se cierra la sesión y se corta sin cuerpo
		log.Info("guest rejected", logger.UserID(identity.UserID))
		c.sessions.Logout(w)
		w.WriteHeader(http.StatusForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		httperrors.WriteError(w, httperrors.ErrMissingParameter.WithDetail("invalid form data"))
		return
	}

	req := dto.AuthorizeRequest{
		ResponseType: strings.TrimSpace(r.Form.Get("response_type")),
		ClientID:     strings.TrimSpace(r.Form.Get("client_id")),
		RedirectURI:  strings.TrimSpace(r.Form.Get("redirect_uri")),
		Scope:        strings.TrimSpace(r.Form.Get("scope")),
	}
	if vals, ok := r.Form["state"]; ok && len(vals) > 0 {
		state := vals[0]
		req.State = &state
	}

	res, err := c.service.Authorize(ctx, identity, req)
	if err != nil {
		appErr := toAppError(err)
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Error("authorize failed", logger.Err(err))
		}
		httperrors.WriteError(w, appErr)
		return
	}

	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}

// requireLogin manda al login si está configurado; si no, 401 sin cuerpo.
func (c *AuthorizeController) requireLogin(w http.ResponseWriter, r *http.Request) {
	if c.loginURL == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	u, err := url.Parse(c.loginURL)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	q := u.Query()
	q.Set("return_to", r.URL.RequestURI())
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}
