// Package auth guards the ingestion endpoints with HMAC-signed service
// tokens. Scrapers and participant collectors authenticate with a bearer
// token issued out of band.
package auth

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier validates service tokens against a shared secret
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier creates a verifier from the INGEST_TOKEN_SECRET
// environment variable.
func NewTokenVerifier() *TokenVerifier {
	return &TokenVerifier{secret: []byte(os.Getenv("INGEST_TOKEN_SECRET"))}
}

// IssueServiceToken mints a long-lived token for a named collaborator.
// Used by the seed utility; production tokens are provisioned the same way.
func (v *TokenVerifier) IssueServiceToken(service string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", fmt.Errorf("INGEST_TOKEN_SECRET is not set")
	}

	claims := jwt.MapClaims{
		"sub": service,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// VerifyToken checks a bearer token and returns the service name it was
// issued to.
func (v *TokenVerifier) VerifyToken(tokenString string) (string, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to verify token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("token carries no subject")
	}

	return sub, nil
}

// Middleware returns a gin middleware that rejects requests without a valid
// service token. The verified service name is stored in the context.
func (v *TokenVerifier) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		service, err := v.VerifyToken(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("service", service)
		c.Next()
	}
}
