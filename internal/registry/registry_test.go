package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
	"github.com/dropDatabas3/grantbridge/internal/registry"
	"github.com/dropDatabas3/grantbridge/internal/security/password"
	"github.com/dropDatabas3/grantbridge/internal/store/storetest"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	conn := storetest.OpenSQLite(t)
	return registry.New(conn.Clients(), password.Hasher{Alg: password.AlgBcrypt, BcryptCost: bcrypt.MinCost})
}

func TestRegistry_SecretLifecycle(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)

	c, err := reg.CreateClient(ctx, "  Acme ")
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Name)

	issued, err := reg.AddSecret(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, issued.PublicID, registry.PublicIDLength)
	assert.Len(t, issued.Secret, registry.SecretLength)

	got, err := reg.ClientByPublicID(ctx, issued.PublicID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	sec, err := reg.Secret(ctx, issued.PublicID)
	require.NoError(t, err)
	assert.NotEqual(t, issued.Secret, sec.SecretHash, "plaintext never stored")
	assert.True(t, reg.VerifySecret(issued.Secret, sec.SecretHash))
	assert.False(t, reg.VerifySecret("wrong", sec.SecretHash))

	require.NoError(t, reg.DropSecret(ctx, c.ID, issued.PublicID))
	_, err = reg.ClientByPublicID(ctx, issued.PublicID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRegistry_DropSecretOtherClient(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	a, err := reg.CreateClient(ctx, "A")
	require.NoError(t, err)
	b, err := reg.CreateClient(ctx, "B")
	require.NoError(t, err)

	issued, err := reg.AddSecret(ctx, a.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, reg.DropSecret(ctx, b.ID, issued.PublicID), repository.ErrNotFound)
	_, err = reg.Secret(ctx, issued.PublicID)
	assert.NoError(t, err)
}

func TestRegistry_Redirects(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	c, err := reg.CreateClient(ctx, "Acme")
	require.NoError(t, err)

	_, err = reg.AddRedirect(ctx, c.ID, "not a url")
	assert.ErrorIs(t, err, registry.ErrInvalidRedirectURI)
	_, err = reg.AddRedirect(ctx, c.ID, "ftp://acme.example/cb")
	assert.ErrorIs(t, err, registry.ErrInvalidRedirectURI)

	_, err = reg.AddRedirect(ctx, c.ID, "https://acme.example/cb")
	require.NoError(t, err)
	_, err = reg.AddRedirect(ctx, c.ID, "https://acme.example/cb2")
	require.NoError(t, err)
	_, err = reg.AddRedirect(ctx, c.ID, "https://other.example/return")
	require.NoError(t, err)

	m, err := reg.MatchRedirects(ctx, c.ID, "acme.example")
	require.NoError(t, err)
	assert.Len(t, m, 2)

	m, err = reg.MatchRedirects(ctx, c.ID, "other")
	require.NoError(t, err)
	require.Len(t, m, 1)
	require.NoError(t, reg.DropRedirect(ctx, m[0].ID))

	all, err := reg.Redirects(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRegistry_ResolveAndRename(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	c, err := reg.CreateClient(ctx, "Acme")
	require.NoError(t, err)

	byID, err := reg.ResolveClient(ctx, c.ID)
	require.NoError(t, err)
	byName, err := reg.ResolveClient(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, byID.ID, byName.ID)

	assert.ErrorIs(t, reg.RenameClient(ctx, c.ID, "   "), registry.ErrInvalidName)
	require.NoError(t, reg.RenameClient(ctx, c.ID, "Acme Corp"))

	_, err = reg.ResolveClient(ctx, "Acme")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = reg.CreateClient(ctx, "")
	assert.ErrorIs(t, err, registry.ErrInvalidName)
}

func TestRegistry_DropClient(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	c, err := reg.CreateClient(ctx, "Acme")
	require.NoError(t, err)
	issued, err := reg.AddSecret(ctx, c.ID)
	require.NoError(t, err)

	require.NoError(t, reg.DropClient(ctx, c.ID))
	_, err = reg.Secret(ctx, issued.PublicID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
