package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

type fakeBlacklist struct {
	revoked map[string]bool
	err     error
}

func (f *fakeBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[token], nil
}

func TestJWTValidator(t *testing.T) {
	ctx := context.Background()

	t.Run("ValidToken", func(t *testing.T) {
		v := NewJWTValidator(testSecret, nil)
		tok := signToken(t, jwt.MapClaims{"user_id": "u-1", "role": "seller"})

		id, err := v.Validate(ctx, tok)
		require.NoError(t, err)
		assert.Equal(t, "u-1", id.UserID)
		assert.Equal(t, RoleSeller, id.Role)
	})

	t.Run("UnknownRoleDefaultsToUser", func(t *testing.T) {
		v := NewJWTValidator(testSecret, nil)
		tok := signToken(t, jwt.MapClaims{"user_id": "u-1", "role": "superuser"})

		id, err := v.Validate(ctx, tok)
		require.NoError(t, err)
		assert.Equal(t, RoleUser, id.Role)
	})

	t.Run("EmptyToken", func(t *testing.T) {
		v := NewJWTValidator(testSecret, nil)

		_, err := v.Validate(ctx, "")
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("BadSignature", func(t *testing.T) {
		v := NewJWTValidator("other-secret", nil)
		tok := signToken(t, jwt.MapClaims{"user_id": "u-1"})

		_, err := v.Validate(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		v := NewJWTValidator(testSecret, nil)
		tok := signToken(t, jwt.MapClaims{
			"user_id": "u-1",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})

		_, err := v.Validate(ctx, tok)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("MissingUserID", func(t *testing.T) {
		v := NewJWTValidator(testSecret, nil)
		tok := signToken(t, jwt.MapClaims{"role": "user"})

		_, err := v.Validate(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Revoked", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{"user_id": "u-1"})
		v := NewJWTValidator(testSecret, &fakeBlacklist{revoked: map[string]bool{tok: true}})

		_, err := v.Validate(ctx, tok)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("BlacklistErrorFailsOpen", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{"user_id": "u-1"})
		v := NewJWTValidator(testSecret, &fakeBlacklist{err: assert.AnError})

		id, err := v.Validate(ctx, tok)
		require.NoError(t, err)
		assert.Equal(t, "u-1", id.UserID)
	})
}

func TestExtractAccessToken(t *testing.T) {
	t.Run("Cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})

		assert.Equal(t, "cookie-token", ExtractAccessToken(r))
	})

	t.Run("BearerFallback", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer header-token")

		assert.Equal(t, "header-token", ExtractAccessToken(r))
	})

	t.Run("CookieWins", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})
		r.Header.Set("Authorization", "Bearer header-token")

		assert.Equal(t, "cookie-token", ExtractAccessToken(r))
	})

	t.Run("None", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		assert.Equal(t, "", ExtractAccessToken(r))
	})
}

func TestRoleChecks(t *testing.T) {
	assert.False(t, RoleUser.CanManageCatalog())
	assert.True(t, RoleSeller.CanManageCatalog())
	assert.True(t, RoleAdmin.CanManageCatalog())

	assert.False(t, RoleUser.SeesAllOrders())
	assert.True(t, RoleSeller.SeesAllOrders())
	assert.True(t, RoleAdmin.SeesAllOrders())
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	_, ok := IdentityFrom(ctx)
	assert.False(t, ok)

	id := Identity{UserID: "u-9", Role: RoleAdmin}
	got, ok := IdentityFrom(WithIdentity(ctx, id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
