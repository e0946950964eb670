package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pitchside/crease/pkg/token"
)

const (
	// AuthScorerIDKey is the context key the authenticated scorer id is
	// stored under.
	AuthScorerIDKey = "auth_scorer_id"
)

// AuthMiddleware validates the bearer token and puts the scorer id on the
// context. Token issuance is the identity service's concern; this service
// only verifies the signature.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format. Expected: Bearer <token>"})
			return
		}

		claims, err := token.ValidateJWT(bearerToken[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			return
		}

		c.Set(AuthScorerIDKey, claims.ScorerID)
		c.Next()
	}
}

// GetScorerIDFromContext extracts the authenticated scorer id from the context.
func GetScorerIDFromContext(c *gin.Context) (string, error) {
	v, exists := c.Get(AuthScorerIDKey)
	if !exists {
		return "", errors.New("scorer id not found in context")
	}
	id, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("scorer id has unexpected type: %T", v)
	}
	return id, nil
}
