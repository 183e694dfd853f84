package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(ttl time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: ttl,
		Issuer:                "backoffice-test",
	})
}

type failingRevocations struct{}

func (failingRevocations) RevokeToken(context.Context, string, time.Duration) error {
	return errors.New("redis down")
}

func (failingRevocations) IsTokenRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func (failingRevocations) RevokeUser(context.Context, string, time.Duration) error {
	return errors.New("redis down")
}

func (failingRevocations) IsUserRevoked(context.Context, string, time.Time) (bool, error) {
	return false, errors.New("redis down")
}

type seenRequest struct {
	userID    string
	empresaID string
	ctxUserID string
}

func jwtRouter(cfg JWTConfig, seen *seenRequest) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), JWTAuth(cfg))
	router.GET("/test", func(c *gin.Context) {
		seen.userID = GetJWTUserID(c)
		seen.empresaID = GetJWTEmpresaID(c)
		seen.ctxUserID = logger.GetUserID(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return router
}

func bearer(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	return req
}

func TestJWTAuth(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	userID, empresaID := uuid.New(), uuid.New()
	token, err := svc.GenerateToken(auth.GenerateTokenInput{UserID: userID, EmpresaID: &empresaID, Name: "Ana"})
	require.NoError(t, err)

	t.Run("valid token exposes the acting user", func(t *testing.T) {
		var seen seenRequest
		w := serve(jwtRouter(JWTConfig{JWTService: svc}, &seen), bearer(token.AccessToken))

		testutil.StatusIs(t, w, http.StatusOK)
		assert.Equal(t, userID.String(), seen.userID)
		assert.Equal(t, empresaID.String(), seen.empresaID)
		assert.Equal(t, userID.String(), seen.ctxUserID)
	})

	tests := []struct {
		name string
		req  *http.Request
		code string
	}{
		{"missing header", bearer(""), "UNAUTHORIZED"},
		{"garbage token", bearer("not-a-jwt"), "UNAUTHORIZED"},
		{"basic scheme", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/test", nil)
			r.Header.Set(AuthHeaderKey, "Basic abc")
			return r
		}(), "UNAUTHORIZED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen seenRequest
			w := serve(jwtRouter(JWTConfig{JWTService: svc}, &seen), tt.req)

			testutil.StatusIs(t, w, http.StatusUnauthorized)
			env := testutil.DecodeEnvelope(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Empty(t, seen.userID)
		})
	}

	t.Run("expired token", func(t *testing.T) {
		expired, err := newTestJWTService(-time.Minute).GenerateToken(auth.GenerateTokenInput{UserID: userID})
		require.NoError(t, err)

		var seen seenRequest
		w := serve(jwtRouter(JWTConfig{JWTService: svc}, &seen), bearer(expired.AccessToken))

		testutil.StatusIs(t, w, http.StatusUnauthorized)
		assert.Equal(t, "TOKEN_EXPIRED", testutil.DecodeEnvelope(t, w).Error.Code)
	})
}

func TestJWTAuth_Revocation(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	ctx := context.Background()

	issue := func(t *testing.T) (*auth.Token, *auth.Claims) {
		t.Helper()
		token, err := svc.GenerateToken(auth.GenerateTokenInput{UserID: uuid.New()})
		require.NoError(t, err)
		claims, err := svc.ValidateToken(token.AccessToken)
		require.NoError(t, err)
		return token, claims
	}

	t.Run("revoked jti is rejected", func(t *testing.T) {
		store := auth.NewInMemoryRevocationStore()
		token, claims := issue(t)
		require.NoError(t, store.RevokeToken(ctx, claims.ID, time.Minute))

		var seen seenRequest
		w := serve(jwtRouter(JWTConfig{JWTService: svc, Revocations: store}, &seen), bearer(token.AccessToken))

		testutil.StatusIs(t, w, http.StatusUnauthorized)
		assert.Equal(t, "TOKEN_REVOKED", testutil.DecodeEnvelope(t, w).Error.Code)
	})

	t.Run("revoked user is rejected", func(t *testing.T) {
		store := auth.NewInMemoryRevocationStore()
		token, claims := issue(t)
		require.NoError(t, store.RevokeUser(ctx, claims.UserID, time.Minute))

		var seen seenRequest
		w := serve(jwtRouter(JWTConfig{JWTService: svc, Revocations: store}, &seen), bearer(token.AccessToken))

		testutil.StatusIs(t, w, http.StatusUnauthorized)
	})

	t.Run("other tokens stay valid", func(t *testing.T) {
		store := auth.NewInMemoryRevocationStore()
		_, revoked := issue(t)
		require.NoError(t, store.RevokeToken(ctx, revoked.ID, time.Minute))
		token, _ := issue(t)

		var seen seenRequest
		w := serve(jwtRouter(JWTConfig{JWTService: svc, Revocations: store}, &seen), bearer(token.AccessToken))

		testutil.StatusIs(t, w, http.StatusOK)
	})

	t.Run("store failure fails open", func(t *testing.T) {
		token, claims := issue(t)

		var seen seenRequest
		w := serve(jwtRouter(JWTConfig{JWTService: svc, Revocations: failingRevocations{}}, &seen), bearer(token.AccessToken))

		testutil.StatusIs(t, w, http.StatusOK)
		assert.Equal(t, claims.UserID, seen.userID)
	})
}

func TestActingUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := ActingUserID(c)
	assert.Error(t, err)

	c.Set(JWTUserIDKey, "not-a-uuid")
	_, err = ActingUserID(c)
	assert.Error(t, err)

	id := uuid.New()
	c.Set(JWTUserIDKey, id.String())
	got, err := ActingUserID(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
