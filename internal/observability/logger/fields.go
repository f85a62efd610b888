package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

// Duration registra la duración en milisegundos.
func Duration(v time.Duration) zap.Field { return zap.Int64("duration_ms", v.Milliseconds()) }

// =================================================================================
// GRANT
// =================================================================================

// ClientID es el id interno del cliente (no el public client id).
func ClientID(v string) zap.Field { return zap.String("client_id", v) }

// PublicID es el client_id público que presenta el cliente en el token endpoint.
func PublicID(v string) zap.Field { return zap.String("public_client_id", v) }

func UserID(v string) zap.Field { return zap.String("user_id", v) }

func Service(v string) zap.Field { return zap.String("service_name", v) }

func GrantType(v string) zap.Field { return zap.String("grant_type", v) }

func ResponseType(v string) zap.Field { return zap.String("response_type", v) }

// =================================================================================
// ESTRUCTURA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }

// Layer: "controller", "service", "store", "job".
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Op(v string) zap.Field { return zap.String("op", v) }

// =================================================================================
// GENÉRICOS
// =================================================================================

func Err(err error) zap.Field { return zap.Error(err) }

func Count(v int64) zap.Field { return zap.Int64("count", v) }

func String(k, v string) zap.Field { return zap.String(k, v) }

func Int(k string, v int) zap.Field { return zap.Int(k, v) }

func Bool(k string, v bool) zap.Field { return zap.Bool(k, v) }

func Time(k string, v time.Time) zap.Field { return zap.Time(k, v) }
