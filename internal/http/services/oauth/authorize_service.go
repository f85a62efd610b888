package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
	dto "github.com/dropDatabas3/grantbridge/internal/http/dto/oauth"
	"github.com/dropDatabas3/grantbridge/internal/metrics"
	"github.com/dropDatabas3/grantbridge/internal/observability/logger"
	tokens "github.com/dropDatabas3/grantbridge/internal/security/token"
	"github.com/dropDatabas3/grantbridge/internal/session"
	"github.com/dropDatabas3/grantbridge/internal/validation"
	"github.com/dropDatabas3/grantbridge/internal/webservice"
)

const (
	defaultCodeTTL    = 300 * time.Second
	minCodeLength     = 30
	maxInsertAttempts = 3
)

// AuthorizeService emite authorization codes para el usuario en sesión.
type AuthorizeService interface {
	Authorize(ctx context.Context, identity session.Identity, req dto.AuthorizeRequest) (dto.AuthorizeResult, error)
}

// AuthorizeDeps contiene las dependencias del issuer.
type AuthorizeDeps struct {
	Registry   ClientRegistry
	Catalog    ServiceCatalog
	Issuer     TokenIssuer
	Codes      repository.AuthCodeRepository
	Metrics    *metrics.Metrics
	CodeTTL    time.Duration
	CodeLength int
	Now        func() time.Time
}

type authorizeService struct {
	deps AuthorizeDeps
}

func NewAuthorizeService(d AuthorizeDeps) AuthorizeService {
	if d.CodeTTL <= 0 {
		d.CodeTTL = defaultCodeTTL
	}
	if d.CodeLength < minCodeLength {
		d.CodeLength = minCodeLength
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &authorizeService{deps: d}
}

func (s *authorizeService) Authorize(ctx context.Context, identity session.Identity, req dto.AuthorizeRequest) (dto.AuthorizeResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("AuthorizeService.Authorize"),
		logger.PublicID(req.ClientID),
	)

	if identity.UserID == "" || identity.Guest {
		// la sesión debería haberlo cortado antes
		return dto.AuthorizeResult{}, fmt.Errorf("authorize: identity not allowed: %w", session.ErrNoSession)
	}

	if !validation.ValidResponseType(req.ResponseType) {
		return dto.AuthorizeResult{}, fmt.Errorf("%w: response_type", ErrMissingParameter)
	}
	if req.ResponseType != "code" {
		log.Info("non-code response_type accepted", logger.ResponseType(req.ResponseType))
	}
	for _, p := range [...]struct{ name, v string }{
		{"client_id", req.ClientID},
		{"redirect_uri", req.RedirectURI},
		{"scope", req.Scope},
	} {
		if strings.TrimSpace(p.v) == "" {
			return dto.AuthorizeResult{}, fmt.Errorf("%w: %s", ErrMissingParameter, p.name)
		}
	}
	if !validation.ValidServiceName(req.Scope) {
		return dto.AuthorizeResult{}, fmt.Errorf("%w: scope", ErrMissingParameter)
	}

	client, err := s.deps.Registry.ClientByPublicID(ctx, req.ClientID)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.AuthorizeResult{}, ErrInvalidClient
		}
		return dto.AuthorizeResult{}, fmt.Errorf("authorize: resolve client: %w", err)
	}

	redirects, err := s.deps.Registry.Redirects(ctx, client.ID)
	if err != nil {
		return dto.AuthorizeResult{}, fmt.Errorf("authorize: list redirects: %w", err)
	}
	var bound *repository.RedirectURI
	for i := range redirects {
		if redirects[i].URI == req.RedirectURI {
			bound = &redirects[i]
			break
		}
	}
	if bound == nil {
		return dto.AuthorizeResult{}, ErrInvalidRedirect
	}

	svc, err := s.deps.Catalog.EnabledService(ctx, req.Scope)
	if err != nil {
		if errors.Is(err, webservice.ErrServiceUnavailable) {
			return dto.AuthorizeResult{}, ErrServiceUnavailable
		}
		return dto.AuthorizeResult{}, fmt.Errorf("authorize: resolve service: %w", err)
	}

	accessToken, err := s.deps.Issuer.TokenForUser(ctx, identity.UserID, svc)
	if err != nil {
		return dto.AuthorizeResult{}, fmt.Errorf("authorize: access token: %w", err)
	}

	code, err := s.storeCode(ctx, client.ID, bound.URI, accessToken)
	if err != nil {
		return dto.AuthorizeResult{}, err
	}
	s.deps.Metrics.CodeIssued()

	target, err := buildRedirect(bound.URI, code, req.State)
	if err != nil {
		return dto.AuthorizeResult{}, fmt.Errorf("authorize: build redirect: %w", err)
	}

	log.Debug("authorization code issued",
		logger.ClientID(client.ID), logger.UserID(identity.UserID), logger.Service(svc.ShortName))
	return dto.AuthorizeResult{RedirectURL: target}, nil
}

// storeCode genera y persiste el code. La unicidad la garantiza el store;
// ante colisión se reintenta con otro valor.
func (s *authorizeService) storeCode(ctx context.Context, clientID, redirectURI, accessToken string) (string, error) {
	row := repository.AuthorizationCode{
		ClientID:    clientID,
		RedirectURI: redirectURI,
		AccessToken: accessToken,
		ExpiresAt:   s.deps.Now().Add(s.deps.CodeTTL),
	}
	var err error
	for attempt := 0; attempt < maxInsertAttempts; attempt++ {
		row.Code, err = tokens.RandomAlphanumeric(s.deps.CodeLength)
		if err != nil {
			return "", fmt.Errorf("authorize: generate code: %w", err)
		}
		err = s.deps.Codes.Create(ctx, row)
		if err == nil {
			return row.Code, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			break
		}
	}
	return "", fmt.Errorf("authorize: store code: %w", err)
}

// buildRedirect agrega code y state a la URI registrada conservando su query.
func buildRedirect(base, code string, state *string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("code", code)
	if state != nil {
		q.Set("state", *state)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
