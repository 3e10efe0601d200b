package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("access token required")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// TokenValidator is the token-validation collaborator: it turns a raw
// bearer/session token into a caller identity or rejects it.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (Identity, error)
}

// Blacklist answers whether a token has been revoked. Revocation itself
// happens in the (external) credential service; we only consult the shared
// cache.
type Blacklist interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type jwtValidator struct {
	secret    []byte
	blacklist Blacklist
}

// NewJWTValidator verifies HMAC-signed tokens carrying user_id and role
// claims. blacklist may be nil when no revocation cache is configured.
func NewJWTValidator(secret string, blacklist Blacklist) TokenValidator {
	return &jwtValidator{secret: []byte(secret), blacklist: blacklist}
}

func (v *jwtValidator) Validate(ctx context.Context, tokenStr string) (Identity, error) {
	if tokenStr == "" {
		return Identity{}, ErrNoToken
	}

	if v.blacklist != nil {
		revoked, err := v.blacklist.IsRevoked(ctx, tokenStr)
		if err == nil && revoked {
			return Identity{}, ErrTokenRevoked
		}
		// Cache errors fail open: a dead cache must not lock everyone out.
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Identity{}, ErrInvalidToken
	}

	role, _ := claims["role"].(string)

	return Identity{UserID: userID, Role: ParseRole(role)}, nil
}

// ExtractAccessToken pulls the token from the access_token cookie,
// falling back to the Authorization header.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie("access_token"); err == nil {
		if cookie.Value != "" {
			return cookie.Value
		}
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
