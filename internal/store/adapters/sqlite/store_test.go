package sqlite_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
	"github.com/dropDatabas3/grantbridge/internal/store"
	"github.com/dropDatabas3/grantbridge/internal/store/storetest"
	"github.com/dropDatabas3/grantbridge/migrations"
)

func TestMigrator_Idempotent(t *testing.T) {
	conn := storetest.OpenSQLite(t)

	res, err := store.NewMigrator(migrations.FS, migrations.SQLiteDir).Run(context.Background(), conn.Migrations())
	require.NoError(t, err)
	assert.Empty(t, res.Applied)
	assert.Equal(t, []int{1, 2}, res.Skipped)
}

func seedClient(t *testing.T, conn store.Connection, name string) *repository.Client {
	t.Helper()
	c, err := conn.Clients().Create(context.Background(), name)
	require.NoError(t, err)
	return c
}

func TestCodes_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	conn := storetest.OpenSQLite(t)
	client := seedClient(t, conn, "Acme")
	exp := time.Unix(1_700_000_300, 0).UTC()

	require.NoError(t, conn.Codes().Create(ctx, repository.AuthorizationCode{
		ClientID: client.ID, Code: "abc", RedirectURI: "https://acme.example/cb", AccessToken: "tok", ExpiresAt: exp,
	}))

	got, err := conn.Codes().Consume(ctx, "abc", client.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.AccessToken)
	assert.Equal(t, "https://acme.example/cb", got.RedirectURI)
	assert.True(t, got.ExpiresAt.Equal(exp))

	_, err = conn.Codes().Consume(ctx, "abc", client.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCodes_ConsumeWrongClient(t *testing.T) {
	ctx := context.Background()
	conn := storetest.OpenSQLite(t)
	a := seedClient(t, conn, "A")
	b := seedClient(t, conn, "B")

	require.NoError(t, conn.Codes().Create(ctx, repository.AuthorizationCode{
		ClientID: a.ID, Code: "abc", AccessToken: "tok", ExpiresAt: time.Now().Add(time.Minute),
	}))

	_, err := conn.Codes().Consume(ctx, "abc", b.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// sigue disponible para su dueño
	_, err = conn.Codes().Consume(ctx, "abc", a.ID)
	assert.NoError(t, err)
}

func TestCodes_DuplicateCodeConflict(t *testing.T) {
	ctx := context.Background()
	conn := storetest.OpenSQLite(t)
	c := seedClient(t, conn, "Acme")
	code := repository.AuthorizationCode{ClientID: c.ID, Code: "dup", AccessToken: "t", ExpiresAt: time.Now()}

	require.NoError(t, conn.Codes().Create(ctx, code))
	err := conn.Codes().Create(ctx, code)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestCodes_ConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	conn := storetest.OpenSQLite(t)
	c := seedClient(t, conn, "Acme")
	require.NoError(t, conn.Codes().Create(ctx, repository.AuthorizationCode{
		ClientID: c.ID, Code: "race", AccessToken: "tok", ExpiresAt: time.Now().Add(time.Minute),
	}))

	const n = 8
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := conn.Codes().Consume(ctx, "race", c.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, missing int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case repository.IsNotFound(err):
			missing++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, missing)
}

func TestCodes_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	conn := storetest.OpenSQLite(t)
	c := seedClient(t, conn, "Acme")
	now := time.Unix(1_700_000_000, 0)

	for code, exp := range map[string]time.Time{
		"past":   now.Add(-10 * time.Second),
		"now":    now,
		"future": now.Add(10 * time.Second),
	} {
		require.NoError(t, conn.Codes().Create(ctx, repository.AuthorizationCode{
			ClientID: c.ID, Code: code, AccessToken: "t", ExpiresAt: exp,
		}))
	}

	n, err := conn.Codes().DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = conn.Codes().Consume(ctx, "past", c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = conn.Codes().Consume(ctx, "now", c.ID)
	assert.NoError(t, err)
	_, err = conn.Codes().Consume(ctx, "future", c.ID)
	assert.NoError(t, err)
}

func TestClients_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	conn := storetest.OpenSQLite(t)
	repo := conn.Clients()
	c := seedClient(t, conn, "Acme")

	_, err := repo.AddRedirect(ctx, c.ID, "https://acme.example/cb")
	require.NoError(t, err)
	_, err = repo.AddSecret(ctx, c.ID, "pub123", "$2a$hash")
	require.NoError(t, err)
	require.NoError(t, conn.Codes().Create(ctx, repository.AuthorizationCode{
		ClientID: c.ID, Code: "abc", AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour),
	}))

	require.NoError(t, repo.Delete(ctx, c.ID))

	_, err = repo.Get(ctx, c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetSecretByPublicID(ctx, "pub123")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	redirects, err := repo.ListRedirects(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, redirects)
	_, err = conn.Codes().Consume(ctx, "abc", c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, c.ID), repository.ErrNotFound)
}

func TestClients_SecretPublicIDUnique(t *testing.T) {
	ctx := context.Background()
	conn := storetest.OpenSQLite(t)
	a := seedClient(t, conn, "A")
	b := seedClient(t, conn, "B")

	_, err := conn.Clients().AddSecret(ctx, a.ID, "pub", "h1")
	require.NoError(t, err)
	_, err = conn.Clients().AddSecret(ctx, b.ID, "pub", "h2")
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestClients_ListWithFilter(t *testing.T) {
	ctx := context.Background()
	conn := storetest.OpenSQLite(t)
	acme := seedClient(t, conn, "Acme")
	seedClient(t, conn, "Globex")

	_, err := conn.Clients().AddRedirect(ctx, acme.ID, "https://acme.example/a")
	require.NoError(t, err)
	_, err = conn.Clients().AddRedirect(ctx, acme.ID, "https://acme.example/b")
	require.NoError(t, err)

	all, err := conn.Clients().List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Acme", all[0].Name)
	assert.Len(t, all[0].Redirects, 2)
	assert.Empty(t, all[1].Redirects)

	filtered, err := conn.Clients().List(ctx, "glob")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Globex", filtered[0].Name)
}

func TestServiceTokens_FindValid(t *testing.T) {
	ctx := context.Background()
	conn := storetest.OpenSQLite(t)
	svc, err := conn.Services().Create(ctx, "acme_api", "Acme API", true)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	expired := now.Add(-time.Minute)
	require.NoError(t, conn.ServiceTokens().Create(ctx, repository.ServiceToken{
		Token: "old", UserID: "u1", ServiceID: svc.ID, ValidUntil: &expired, CreatedAt: now.Add(-time.Hour),
	}))

	_, err = conn.ServiceTokens().FindValid(ctx, "u1", svc.ID, now)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, conn.ServiceTokens().Create(ctx, repository.ServiceToken{
		Token: "live", UserID: "u1", ServiceID: svc.ID, CreatedAt: now,
	}))
	got, err := conn.ServiceTokens().FindValid(ctx, "u1", svc.ID, now)
	require.NoError(t, err)
	assert.Equal(t, "live", got.Token)
	assert.Nil(t, got.ValidUntil)
}

func TestServices_SetEnabled(t *testing.T) {
	ctx := context.Background()
	conn := storetest.OpenSQLite(t)
	_, err := conn.Services().Create(ctx, "acme_api", "Acme API", true)
	require.NoError(t, err)

	require.NoError(t, conn.Services().SetEnabled(ctx, "acme_api", false))
	s, err := conn.Services().GetByShortName(ctx, "acme_api")
	require.NoError(t, err)
	assert.False(t, s.Enabled)

	assert.ErrorIs(t, conn.Services().SetEnabled(ctx, "missing", true), repository.ErrNotFound)
}
