package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	apiKeyHeader = "X-API-Key"
	bearerPrefix = "Bearer "
)

// APIKeyMiddleware guards mutating routes. The key is accepted from
// the X-API-Key header or as a bearer token. An empty configured key
// disables the guard.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		presented := c.GetHeader(apiKeyHeader)
		if presented == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, bearerPrefix) {
				presented = strings.TrimPrefix(auth, bearerPrefix)
			}
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing API key"})
			return
		}

		c.Next()
	}
}
