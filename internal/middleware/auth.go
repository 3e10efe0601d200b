package middleware

import (
	"net/http"

	"storefront-be/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireAuth validates the access token and stores the caller identity
// in the request context. Rejections are 401 with the validator's message.
func RequireAuth(validator auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.ExtractAccessToken(c.Request)

		identity, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		ctx := auth.WithIdentity(c.Request.Context(), identity)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole gates a route group to the given roles. Must run after
// RequireAuth.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.IdentityFrom(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrNoToken.Error()})
			return
		}

		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
	}
}
