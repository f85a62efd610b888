package oauth

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/dropDatabas3/grantbridge/internal/observability/logger"

	dto "github.com/dropDatabas3/grantbridge/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/grantbridge/internal/http/errors"
	svc "github.com/dropDatabas3/grantbridge/internal/http/services/oauth"
)

// TokenController maneja POST /oauth2/token.
type TokenController struct {
	service svc.TokenService
}

func NewTokenController(s svc.TokenService) *TokenController {
	return &TokenController{service: s}
}

// Token canjea el authorization code. Acepta form-urlencoded o JSON; las
// credenciales del client pueden venir como parámetros o por Basic auth.
func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.token"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	req, err := parseTokenRequest(r)
	if err != nil {
		log.Debug("failed to parse token request", logger.Err(err))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperrors.WriteError(w, httperrors.ErrPayloadTooLarge)
			return
		}
		httperrors.WriteError(w, httperrors.ErrMissingParameter.WithDetail("invalid request body"))
		return
	}

	// Basic auth solo completa lo que no vino como parámetro.
	if user, pass, ok := r.BasicAuth(); ok {
		if req.ClientID == "" {
			req.ClientID = user
		}
		if req.ClientSecret == "" {
			req.ClientSecret = pass
		}
	}

	resp, err := c.service.Exchange(ctx, req)
	if err != nil {
		appErr := toAppError(err)
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Error("token exchange failed", logger.Err(err))
		} else {
			log.Info("token exchange rejected", logger.String("code", appErr.Code))
		}
		httperrors.WriteError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func parseTokenRequest(r *http.Request) (dto.TokenRequest, error) {
	var req dto.TokenRequest
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req = dto.TokenRequest{
			GrantType:    r.PostForm.Get("grant_type"),
			Code:         r.PostForm.Get("code"),
			RedirectURI:  r.PostForm.Get("redirect_uri"),
			ClientID:     r.PostForm.Get("client_id"),
			ClientSecret: r.PostForm.Get("client_secret"),
		}
	}
	req.GrantType = strings.TrimSpace(req.GrantType)
	req.Code = strings.TrimSpace(req.Code)
	req.RedirectURI = strings.TrimSpace(req.RedirectURI)
	req.ClientID = strings.TrimSpace(req.ClientID)
	return req, nil
}
