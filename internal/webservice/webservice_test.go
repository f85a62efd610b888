package webservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/grantbridge/internal/store/storetest"
	"github.com/dropDatabas3/grantbridge/internal/webservice"
)

func TestCatalog_EnabledService(t *testing.T) {
	ctx := context.Background()
	conn := storetest.OpenSQLite(t)
	_, err := conn.Services().Create(ctx, "acme_api", "Acme API", true)
	require.NoError(t, err)
	_, err = conn.Services().Create(ctx, "legacy", "Legacy", false)
	require.NoError(t, err)

	cat := webservice.NewCatalog(conn.Services(), time.Minute)

	svc, err := cat.EnabledService(ctx, "acme_api")
	require.NoError(t, err)
	assert.Equal(t, "Acme API", svc.Name)

	_, err = cat.EnabledService(ctx, "legacy")
	assert.ErrorIs(t, err, webservice.ErrServiceUnavailable)

	_, err = cat.EnabledService(ctx, "nope")
	assert.ErrorIs(t, err, webservice.ErrServiceUnavailable)
}

func TestCatalog_DisableTakesEffectImmediately(t *testing.T) {
	ctx := context.Background()
	conn := storetest.OpenSQLite(t)
	_, err := conn.Services().Create(ctx, "acme_api", "Acme API", true)
	require.NoError(t, err)

	cat := webservice.NewCatalog(conn.Services(), time.Minute)
	_, err = cat.EnabledService(ctx, "acme_api")
	require.NoError(t, err)

	require.NoError(t, conn.Services().SetEnabled(ctx, "acme_api", false))
	_, err = cat.EnabledService(ctx, "acme_api")
	assert.ErrorIs(t, err, webservice.ErrServiceUnavailable)

	require.NoError(t, conn.Services().SetEnabled(ctx, "acme_api", true))
	_, err = cat.EnabledService(ctx, "acme_api")
	assert.NoError(t, err)
}

func TestCatalog_CachesOnlyMissing(t *testing.T) {
	ctx := context.Background()
	conn := storetest.OpenSQLite(t)
	cat := webservice.NewCatalog(conn.Services(), time.Minute)

	_, err := cat.EnabledService(ctx, "late_api")
	require.ErrorIs(t, err, webservice.ErrServiceUnavailable)

	_, err = conn.Services().Create(ctx, "late_api", "Late API", true)
	require.NoError(t, err)
	_, err = cat.EnabledService(ctx, "late_api")
	assert.ErrorIs(t, err, webservice.ErrServiceUnavailable, "miss still cached")

	uncached := webservice.NewCatalog(conn.Services(), 0)
	_, err = uncached.EnabledService(ctx, "late_api")
	assert.NoError(t, err)
}

func TestIssuer_ReusesValidToken(t *testing.T) {
	ctx := context.Background()
	conn := storetest.OpenSQLite(t)
	svc, err := conn.Services().Create(ctx, "acme_api", "Acme API", true)
	require.NoError(t, err)

	iss := webservice.NewIssuer(conn.ServiceTokens(), 32, 0)

	first, err := iss.TokenForUser(ctx, "u1", svc)
	require.NoError(t, err)
	assert.Len(t, first, 32)

	again, err := iss.TokenForUser(ctx, "u1", svc)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	other, err := iss.TokenForUser(ctx, "u2", svc)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}
