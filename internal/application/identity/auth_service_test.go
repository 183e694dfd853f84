package identity

import (
	"context"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/application/validation"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type authFixture struct {
	auth    *AuthService
	users   *UserService
	jwt     *auth.JWTService
	revoked *auth.InMemoryRevocationStore
	db      *gorm.DB
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	f := newUserFixture(t)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "backoffice-test",
	})
	svc := NewAuthService(
		persistence.NewGormUserRepository(f.db),
		jwtService,
		f.sessions,
		validation.New(),
		zap.NewNop(),
	)
	return authFixture{auth: svc, users: f.svc, jwt: jwtService, revoked: f.sessions, db: f.db}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a token carrying the user and company", func(t *testing.T) {
		f := newAuthFixture(t)
		companyID := testutil.SeedCompany(t, f.db, "Acme", nil)
		input := validCreate()
		input.EmpresaID = &companyID
		user, err := f.users.Create(ctx, input)
		require.NoError(t, err)

		result, err := f.auth.Login(ctx, LoginInput{Email: "MARIA@example.com", Password: "segredo123"})

		require.NoError(t, err)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, user.ID, result.User.ID)

		claims, err := f.jwt.ValidateToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
		assert.Equal(t, companyID.String(), claims.EmpresaID)
		assert.Equal(t, "Maria Silva", claims.Name)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.users.Create(ctx, validCreate())
		require.NoError(t, err)

		_, err = f.auth.Login(ctx, LoginInput{Email: "maria@example.com", Password: "errada123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = f.auth.Login(ctx, LoginInput{Email: "ninguem@example.com", Password: "segredo123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		f := newAuthFixture(t)
		input := validCreate()
		inactive := false
		input.Ativo = &inactive
		_, err := f.users.Create(ctx, input)
		require.NoError(t, err)

		_, err = f.auth.Login(ctx, LoginInput{Email: "maria@example.com", Password: "segredo123"})

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("missing credentials", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.auth.Login(ctx, LoginInput{})

		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	_, err := f.users.Create(ctx, validCreate())
	require.NoError(t, err)

	result, err := f.auth.Login(ctx, LoginInput{Email: "maria@example.com", Password: "segredo123"})
	require.NoError(t, err)
	claims, err := f.jwt.ValidateToken(result.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, claims))

	revoked, err := f.revoked.IsTokenRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.ErrorIs(t, f.auth.Logout(ctx, nil), shared.ErrUnauthorized)
}
