package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	user := &models.User{Email: "alice@example.com", Role: models.RoleCustomer}

	token, err := tm.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)
	token, err := tm.Issue(&models.User{Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = tm.Parse(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Issue(&models.User{Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).Parse(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
}

func TestTokenGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tm.Parse(raw)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrUnauthenticated), raw)
	}
}
