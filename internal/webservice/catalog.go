// Package webservice implementa los colaboradores del Issuer: el catálogo de
// servicios habilitados y el emisor de credenciales por usuario y servicio.
package webservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
)

// ErrServiceUnavailable: el servicio no existe o está deshabilitado.
var ErrServiceUnavailable = errors.New("webservice: service not available")

// Catalog resuelve short names a servicios habilitados. El estado enabled se
// lee del store en cada llamada; solo se cachean (ttl) los short names
// inexistentes, así deshabilitar un servicio tiene efecto inmediato.
type Catalog struct {
	repo    repository.ServiceRepository
	missing *gocache.Cache
}

// NewCatalog crea el catálogo. Con ttl <= 0 no cachea nada.
func NewCatalog(repo repository.ServiceRepository, ttl time.Duration) *Catalog {
	c := &Catalog{repo: repo}
	if ttl > 0 {
		c.missing = gocache.New(ttl, 2*ttl)
	}
	return c
}

// EnabledService retorna el servicio si existe y está habilitado.
func (c *Catalog) EnabledService(ctx context.Context, shortName string) (*repository.Service, error) {
	if c.missing != nil {
		if _, ok := c.missing.Get(shortName); ok {
			return nil, ErrServiceUnavailable
		}
	}

	svc, err := c.repo.GetByShortName(ctx, shortName)
	if err != nil {
		if repository.IsNotFound(err) {
			if c.missing != nil {
				c.missing.SetDefault(shortName, struct{}{})
			}
			return nil, ErrServiceUnavailable
		}
		return nil, fmt.Errorf("webservice: lookup %q: %w", shortName, err)
	}
	if !svc.Enabled {
		return nil, ErrServiceUnavailable
	}
	return svc, nil
}
