package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-be/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator struct {
	identity auth.Identity
	err      error
}

func (s *stubValidator) Validate(ctx context.Context, token string) (auth.Identity, error) {
	if s.err != nil {
		return auth.Identity{}, s.err
	}
	return s.identity, nil
}

func performRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	t.Run("ValidTokenSetsIdentity", func(t *testing.T) {
		validator := &stubValidator{identity: auth.Identity{UserID: "user-1", Role: auth.RoleUser}}

		r := gin.New()
		r.GET("/protected", RequireAuth(validator), func(c *gin.Context) {
			id, ok := auth.IdentityFrom(c.Request.Context())
			assert.True(t, ok)
			assert.Equal(t, "user-1", id.UserID)
			c.Status(http.StatusOK)
		})

		w := performRequest(r, http.MethodGet, "/protected")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("RejectionIs401", func(t *testing.T) {
		validator := &stubValidator{err: auth.ErrInvalidToken}

		r := gin.New()
		r.GET("/protected", RequireAuth(validator), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := performRequest(r, http.MethodGet, "/protected")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), auth.ErrInvalidToken.Error())
	})
}

func TestRequireRole(t *testing.T) {
	route := func(role auth.Role, required ...auth.Role) *gin.Engine {
		validator := &stubValidator{identity: auth.Identity{UserID: "u-1", Role: role}}
		r := gin.New()
		r.GET("/managed", RequireAuth(validator), RequireRole(required...), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return r
	}

	t.Run("MatchingRolePasses", func(t *testing.T) {
		w := performRequest(route(auth.RoleSeller, auth.RoleSeller, auth.RoleAdmin), http.MethodGet, "/managed")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("WrongRoleIs403", func(t *testing.T) {
		w := performRequest(route(auth.RoleUser, auth.RoleSeller, auth.RoleAdmin), http.MethodGet, "/managed")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("MissingIdentityIs401", func(t *testing.T) {
		r := gin.New()
		r.GET("/managed", RequireRole(auth.RoleAdmin), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := performRequest(r, http.MethodGet, "/managed")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
