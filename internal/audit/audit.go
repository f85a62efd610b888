package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/grantbridge/internal/observability/logger"
)

// Eventos conocidos.
const (
	EventCredentialGranted = "credential_granted"
	EventClientCreated     = "client_created"
	EventClientDropped     = "client_dropped"
	EventSecretIssued      = "client_secret_issued"
	EventSecretRevoked     = "client_secret_revoked"
)

// Log escribe un evento de auditoría estructurado en el logger "audit".
func Log(ctx context.Context, event string, fields ...zap.Field) {
	logger.From(ctx).Named("audit").Info(event, append(fields, zap.String("event", event))...)
}
