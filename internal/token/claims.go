package token

import (
	"time"

	"github.com/abenov/coursehub/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the client can see inside the bearer token. The decode is
// unverified: signature checking is the server's job, the client only
// inspects identity, role, and expiry.
type Claims struct {
	UserID    string
	Role      domain.Role
	Email     string
	ExpiresAt time.Time
}

func (c *Claims) Expired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// DecodeClaims parses raw without verifying its signature.
func DecodeClaims(raw string) (*Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}

	claims := &Claims{}
	if v, ok := mc["userId"].(string); ok {
		claims.UserID = v
	} else if v, ok := mc["sub"].(string); ok {
		claims.UserID = v
	}
	if v, ok := mc["role"].(string); ok {
		claims.Role = domain.Role(v)
	}
	if v, ok := mc["email"].(string); ok {
		claims.Email = v
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	if claims.UserID == "" {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
