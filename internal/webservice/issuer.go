package webservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/grantbridge/internal/audit"
	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
	"github.com/dropDatabas3/grantbridge/internal/observability/logger"
	tokens "github.com/dropDatabas3/grantbridge/internal/security/token"
)

const maxTokenAttempts = 3

// Issuer entrega la credencial de un usuario para un servicio: reutiliza la
// vigente o emite una nueva. Cada entrega queda en el log de auditoría.
type Issuer struct {
	repo   repository.ServiceTokenRepository
	length int
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer crea el emisor. ttl 0 = credenciales sin vencimiento.
func NewIssuer(repo repository.ServiceTokenRepository, length int, ttl time.Duration) *Issuer {
	return &Issuer{repo: repo, length: length, ttl: ttl, now: time.Now}
}

// TokenForUser retorna la credencial opaca de userID para svc.
func (i *Issuer) TokenForUser(ctx context.Context, userID string, svc *repository.Service) (string, error) {
	now := i.now()

	existing, err := i.repo.FindValid(ctx, userID, svc.ID, now)
	switch {
	case err == nil:
		audit.Log(ctx, audit.EventCredentialGranted,
			logger.UserID(userID), logger.Service(svc.ShortName), logger.Bool("reused", true))
		return existing.Token, nil
	case !repository.IsNotFound(err):
		return "", fmt.Errorf("webservice: find token: %w", err)
	}

	tok := repository.ServiceToken{UserID: userID, ServiceID: svc.ID, CreatedAt: now}
	if i.ttl > 0 {
		until := now.Add(i.ttl)
		tok.ValidUntil = &until
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		tok.Token, err = tokens.RandomAlphanumeric(i.length)
		if err != nil {
			return "", fmt.Errorf("webservice: generate token: %w", err)
		}
		err = i.repo.Create(ctx, tok)
		if err == nil {
			audit.Log(ctx, audit.EventCredentialGranted,
				logger.UserID(userID), logger.Service(svc.ShortName), logger.Bool("reused", false))
			return tok.Token, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return "", fmt.Errorf("webservice: store token: %w", err)
		}
	}
	return "", fmt.Errorf("webservice: store token: %w", err)
}
