package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
	"github.com/example/localhands/pkg/repository/memory"
)

type fakeGoogle struct {
	identity *GoogleIdentity
	err      error
}

func (f *fakeGoogle) Verify(_ context.Context, _ string) (*GoogleIdentity, error) {
	return f.identity, f.err
}

func newTestService(google GoogleVerifier) (*Service, *memory.Store) {
	if google == nil {
		google = &fakeGoogle{err: errs.ErrUnauthenticated}
	}
	st := memory.New()
	svc := NewService(st.Users(), NewTokenManager("test-secret", time.Hour), google, zap.NewNop())
	return svc, st
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)

	t.Run("creates customer account", func(t *testing.T) {
		session, err := svc.Register(ctx, RegisterInput{
			Email:     "  Alice@Example.COM ",
			Password:  "hunter22",
			FirstName: "Alice",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, session.AccessToken)
		assert.Equal(t, "bearer", session.TokenType)
		assert.Equal(t, "alice@example.com", session.User.Email)
		assert.Equal(t, models.RoleCustomer, session.User.Role)
		assert.True(t, session.User.IsActive)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "other"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrConflict))
	})

	t.Run("empty email rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{Email: "   "})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrInvalidInput))
	})
}

func TestPasswordLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)

	_, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		session, err := svc.PasswordLogin(ctx, "alice@example.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", session.User.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.PasswordLogin(ctx, "alice@example.com", "wrong")
		assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.PasswordLogin(ctx, "nobody@example.com", "hunter22")
		assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
	})
}

func TestPasswordLoginFederatedOnlyAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(&fakeGoogle{identity: &GoogleIdentity{Email: "bob@example.com"}})

	_, err := svc.GoogleLogin(ctx, "valid-id-token")
	require.NoError(t, err)

	// no local credential was ever set
	_, err = svc.PasswordLogin(ctx, "bob@example.com", "anything")
	assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
}

func TestGoogleLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates customer on first sight", func(t *testing.T) {
		svc, _ := newTestService(&fakeGoogle{identity: &GoogleIdentity{
			Email:     "Carol@Example.com",
			GivenName: "Carol",
			Picture:   "https://example.com/carol.png",
		}})

		session, err := svc.GoogleLogin(ctx, "valid-id-token")
		require.NoError(t, err)
		assert.Equal(t, "carol@example.com", session.User.Email)
		assert.Equal(t, models.RoleCustomer, session.User.Role)
		assert.Equal(t, "Carol", session.User.FirstName)

		// second login resolves the same account
		again, err := svc.GoogleLogin(ctx, "valid-id-token")
		require.NoError(t, err)
		assert.Equal(t, session.User.ID, again.User.ID)
	})

	t.Run("rejected token", func(t *testing.T) {
		svc, _ := newTestService(&fakeGoogle{err: errors.New("token expired")})
		_, err := svc.GoogleLogin(ctx, "bad-token")
		assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(nil)

	session, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	t.Run("resolves live user", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, session.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, session.User.ID, user.ID)
	})

	t.Run("role changes apply without reissuing", func(t *testing.T) {
		require.NoError(t, st.Users().SetRole(ctx, session.User.ID, models.RoleShopAdmin))
		user, err := svc.Authenticate(ctx, session.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, models.RoleShopAdmin, user.Role)
	})

	t.Run("bad token", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "garbage")
		assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
	})

	t.Run("inactive user forbidden", func(t *testing.T) {
		inactive := &models.User{ID: "dormant", Email: "dormant@example.com", Role: models.RoleCustomer}
		require.NoError(t, st.Users().Insert(ctx, inactive))

		token, err := NewTokenManager("test-secret", time.Hour).Issue(inactive)
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, token)
		assert.True(t, errors.Is(err, errs.ErrForbidden))
	})
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(nil)

	session, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)
	target := session.User

	superadmin := &models.User{ID: "root", Role: models.RoleSuperadmin}
	customer := &models.User{ID: "joe", Role: models.RoleCustomer}

	t.Run("superadmin promotes", func(t *testing.T) {
		updated, err := svc.SetRole(ctx, superadmin, target.ID, models.RoleShopAdmin)
		require.NoError(t, err)
		assert.Equal(t, models.RoleShopAdmin, updated.Role)

		stored, err := st.Users().ByID(ctx, target.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleShopAdmin, stored.Role)
	})

	t.Run("non superadmin forbidden", func(t *testing.T) {
		_, err := svc.SetRole(ctx, customer, target.ID, models.RoleSuperadmin)
		assert.True(t, errors.Is(err, errs.ErrForbidden))
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		_, err := svc.SetRole(ctx, superadmin, target.ID, models.Role("owner"))
		assert.True(t, errors.Is(err, errs.ErrConflict))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.SetRole(ctx, superadmin, "missing", models.RoleCustomer)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})
}
