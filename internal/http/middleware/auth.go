package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gojwt "github.com/go-jose/go-jose/v4/jwt"

	"github.com/fieldlane/fieldlane-auth/internal/jwt"
)

const (
	sessionClaimsKey = "sessionClaims"
	stdClaimsKey     = "stdClaims"
)

// Auth validates Authorization headers and attaches session claims.
type Auth struct {
	Tokens *jwt.Generator
}

// ValidateJWT ensures the request carries a valid bearer token.
func (m *Auth) ValidateJWT(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Authorization header required."})
		return
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Bearer token required."})
		return
	}

	std, custom, err := m.Tokens.ValidateSessionToken(strings.TrimSpace(parts[1]))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Invalid access token."})
		return
	}

	c.Set(stdClaimsKey, std)
	c.Set(sessionClaimsKey, custom)
	c.Next()
}

// GetSessionClaims exposes session token claims to handlers.
func GetSessionClaims(c *gin.Context) (*jwt.SessionClaims, bool) {
	value, ok := c.Get(sessionClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*jwt.SessionClaims)
	return claims, ok
}

// GetStdClaims returns the standard JWT claims set.
func GetStdClaims(c *gin.Context) (*gojwt.Claims, bool) {
	value, ok := c.Get(stdClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*gojwt.Claims)
	return claims, ok
}
