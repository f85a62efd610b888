package pg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
)

func TestToMillis_MatchesExpiryResolution(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 123_456_789, time.FixedZone("ART", -3*3600))
	expiresAt := now.Add(-300 * time.Microsecond)

	stored := toMillis(expiresAt)
	assert.Equal(t, time.UTC, stored.Location())
	assert.Zero(t, stored.Nanosecond()%int(time.Millisecond))

	// Expired y el DELETE del sweeper tienen que coincidir: ambos ven el
	// mismo milisegundo, así que ninguno de los dos lo considera vencido.
	code := repository.AuthorizationCode{ExpiresAt: expiresAt}
	assert.False(t, code.Expired(now))
	assert.False(t, stored.Before(toMillis(now)))

	later := now.Add(time.Millisecond)
	assert.True(t, code.Expired(later))
	assert.True(t, stored.Before(toMillis(later)))
}
