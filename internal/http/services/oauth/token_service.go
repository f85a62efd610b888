package oauth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
	dto "github.com/dropDatabas3/grantbridge/internal/http/dto/oauth"
	"github.com/dropDatabas3/grantbridge/internal/metrics"
	"github.com/dropDatabas3/grantbridge/internal/observability/logger"
)

// TokenService canjea un authorization code por la credencial asociada.
type TokenService interface {
	Exchange(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error)
}

// TokenDeps contiene las dependencias del exchanger.
type TokenDeps struct {
	Registry       ClientRegistry
	Codes          repository.AuthCodeRepository
	Metrics        *metrics.Metrics
	VerifyRedirect bool
	Now            func() time.Time
}

type tokenService struct {
	deps TokenDeps
}

func NewTokenService(d TokenDeps) TokenService {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &tokenService{deps: d}
}

// Exchange valida el client, consume el code y retorna su credencial.
// El code se borra siempre que exista para este client, incluso si
// después resulta vencido.
func (s *tokenService) Exchange(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("TokenService.Exchange"),
		logger.PublicID(req.ClientID),
		logger.GrantType(req.GrantType),
	)

	// Sin credenciales no se toca la base.
	if req.ClientID == "" || req.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client credentials", ErrMissingParameter)
	}
	for _, p := range [...]struct{ name, v string }{
		{"grant_type", req.GrantType},
		{"code", req.Code},
		{"redirect_uri", req.RedirectURI},
	} {
		if strings.TrimSpace(p.v) == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingParameter, p.name)
		}
	}

	if req.GrantType != GrantTypeAuthorizationCode {
		return nil, ErrUnsupportedGrantType
	}

	secret, err := s.deps.Registry.Secret(ctx, req.ClientID)
	if err != nil {
		if repository.IsNotFound(err) {
			s.deps.Metrics.CodeExchange(metrics.ResultInvalid)
			return nil, ErrInvalidClient
		}
		return nil, s.fail(fmt.Errorf("exchange: lookup secret: %w", err))
	}
	if !s.deps.Registry.VerifySecret(req.ClientSecret, secret.SecretHash) {
		s.deps.Metrics.CodeExchange(metrics.ResultInvalid)
		return nil, ErrInvalidClient
	}

	row, err := s.deps.Codes.Consume(ctx, req.Code, secret.ClientID)
	if err != nil {
		if repository.IsNotFound(err) {
			s.deps.Metrics.CodeExchange(metrics.ResultInvalid)
			return nil, ErrInvalidToken
		}
		return nil, s.fail(fmt.Errorf("exchange: consume code: %w", err))
	}

	if row.Expired(s.deps.Now()) {
		s.deps.Metrics.CodeExchange(metrics.ResultExpired)
		log.Info("expired code consumed", logger.ClientID(secret.ClientID))
		return nil, ErrExpiredToken
	}

	if s.deps.VerifyRedirect && row.RedirectURI != req.RedirectURI {
		s.deps.Metrics.CodeExchange(metrics.ResultInvalid)
		log.Warn("redirect_uri mismatch on exchange", logger.ClientID(secret.ClientID))
		return nil, ErrInvalidRedirect
	}

	s.deps.Metrics.CodeExchange(metrics.ResultSuccess)
	return &dto.TokenResponse{AccessToken: row.AccessToken, TokenType: dto.TokenTypeBearer}, nil
}

func (s *tokenService) fail(err error) error {
	s.deps.Metrics.CodeExchange(metrics.ResultError)
	return err
}
