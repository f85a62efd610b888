package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config es la configuración del servicio y del CLI. Se carga desde YAML y
// las variables GRANTBRIDGE_* pisan los valores del archivo.
type Config struct {
	App struct {
		// dev | prod
		Env      string `yaml:"env" env:"ENV"`
		LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	} `yaml:"app" envPrefix:"APP_"`

	Server struct {
		Addr string `yaml:"addr" env:"ADDR"`
		// BaseURL se usa para armar las URLs que imprime `grantctl setup`.
		BaseURL      string        `yaml:"base_url" env:"BASE_URL"`
		ReadTimeout  time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
		WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	} `yaml:"server" envPrefix:"SERVER_"`

	Storage struct {
		// postgres | sqlite
		Driver       string `yaml:"driver" env:"DRIVER"`
		DSN          string `yaml:"dsn" env:"DSN"`
		MaxOpenConns int    `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
		MaxIdleConns int    `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	} `yaml:"storage" envPrefix:"STORAGE_"`

	OAuth struct {
		CodeTTL    time.Duration `yaml:"code_ttl" env:"CODE_TTL"`
		CodeLength int           `yaml:"code_length" env:"CODE_LENGTH"`
		// VerifyExchangeRedirect exige que el redirect_uri del canje coincida
		// con el que quedó ligado al code. Apagado por defecto.
		VerifyExchangeRedirect bool `yaml:"verify_exchange_redirect" env:"VERIFY_EXCHANGE_REDIRECT"`
		// SecretHash: bcrypt | argon2id, para secrets nuevos.
		SecretHash string `yaml:"secret_hash" env:"SECRET_HASH"`
	} `yaml:"oauth" envPrefix:"OAUTH_"`

	Session struct {
		CookieName string `yaml:"cookie_name" env:"COOKIE_NAME"`
		Secret     string `yaml:"secret" env:"SECRET"`
		Issuer     string `yaml:"issuer" env:"ISSUER"`
		// LoginURL: si está vacío, los requests sin sesión reciben 401.
		LoginURL string `yaml:"login_url" env:"LOGIN_URL"`
	} `yaml:"session" envPrefix:"SESSION_"`

	WebService struct {
		TokenLength int `yaml:"token_length" env:"TOKEN_LENGTH"`
		// TokenTTL 0 = credenciales sin vencimiento.
		TokenTTL time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
		// CatalogCacheTTL cachea short names inexistentes. 0 desactiva el cache.
		CatalogCacheTTL time.Duration `yaml:"catalog_cache_ttl" env:"CATALOG_CACHE_TTL"`
	} `yaml:"webservice" envPrefix:"WEBSERVICE_"`

	Sweeper struct {
		// Disabled apaga el loop in-process (p.ej. cuando se usa `grantctl sweep` desde cron).
		Disabled bool          `yaml:"disabled" env:"DISABLED"`
		Interval time.Duration `yaml:"interval" env:"INTERVAL"`
	} `yaml:"sweeper" envPrefix:"SWEEPER_"`

	Rate struct {
		Enabled bool `yaml:"enabled" env:"ENABLED"`
		// memory | redis
		Backend     string        `yaml:"backend" env:"BACKEND"`
		Window      time.Duration `yaml:"window" env:"WINDOW"`
		MaxRequests int           `yaml:"max_requests" env:"MAX_REQUESTS"`
		Redis       struct {
			Addr     string `yaml:"addr" env:"ADDR"`
			Password string `yaml:"password" env:"PASSWORD"`
			DB       int    `yaml:"db" env:"DB"`
			Prefix   string `yaml:"prefix" env:"PREFIX"`
		} `yaml:"redis" envPrefix:"REDIS_"`
	} `yaml:"rate" envPrefix:"RATE_"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" env:"ENABLED"`
		Path    string `yaml:"path" env:"PATH"`
	} `yaml:"metrics" envPrefix:"METRICS_"`
}

// EnvPrefix antecede a todas las variables de entorno de Config.
const EnvPrefix = "GRANTBRIDGE_"

// Load lee el YAML de path (si path no está vacío), aplica overrides de
// entorno y defaults, y valida.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&c, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default retorna una Config con todos los defaults aplicados, sin leer
// archivo ni entorno.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost" + c.Server.Addr
	}
	c.Server.BaseURL = strings.TrimRight(c.Server.BaseURL, "/")
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Driver == "sqlite" && c.Storage.DSN == "" {
		c.Storage.DSN = "grantbridge.db"
	}
	if c.OAuth.CodeTTL == 0 {
		c.OAuth.CodeTTL = 300 * time.Second
	}
	if c.OAuth.CodeLength == 0 {
		c.OAuth.CodeLength = MinCodeLength
	}
	if c.OAuth.SecretHash == "" {
		c.OAuth.SecretHash = "bcrypt"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "grantbridge_session"
	}
	if c.Session.Issuer == "" {
		c.Session.Issuer = "grantbridge"
	}
	if c.WebService.TokenLength == 0 {
		c.WebService.TokenLength = 32
	}
	if c.Sweeper.Interval == 0 {
		c.Sweeper.Interval = time.Minute
	}
	if c.Rate.Backend == "" {
		c.Rate.Backend = "memory"
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Minute
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 60
	}
	if c.Rate.Redis.Prefix == "" {
		c.Rate.Redis.Prefix = "grantbridge:rl:"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// MinCodeLength es el largo mínimo de un authorization code.
const MinCodeLength = 30

// Validate verifica combinaciones inválidas. Se llama desde Load.
func (c *Config) Validate() error {
	var errs []error
	switch c.App.Env {
	case "dev", "prod":
	default:
		errs = append(errs, fmt.Errorf("app.env: unknown value %q", c.App.Env))
	}
	switch c.Storage.Driver {
	case "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for postgres"))
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}
	if c.OAuth.CodeTTL < 0 {
		errs = append(errs, errors.New("oauth.code_ttl must be positive"))
	}
	if c.OAuth.CodeLength < MinCodeLength {
		errs = append(errs, fmt.Errorf("oauth.code_length must be >= %d", MinCodeLength))
	}
	if c.WebService.TokenLength < 16 {
		errs = append(errs, errors.New("webservice.token_length must be >= 16"))
	}
	if c.Sweeper.Interval < 0 {
		errs = append(errs, errors.New("sweeper.interval must be positive"))
	}
	switch c.Rate.Backend {
	case "memory":
	case "redis":
		if c.Rate.Enabled && c.Rate.Redis.Addr == "" {
			errs = append(errs, errors.New("rate.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("rate.backend: unknown backend %q", c.Rate.Backend))
	}
	if c.App.Env == "prod" && len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("session.secret must be at least 32 bytes in prod"))
	}
	return errors.Join(errs...)
}
