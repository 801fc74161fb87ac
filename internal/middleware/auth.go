package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/microcash/transactions-api/internal/apikey"
	"github.com/microcash/transactions-api/internal/apperrors"
	"github.com/microcash/transactions-api/internal/domain"
)

const (
	// APIKeyHeader carries the caller's key.
	APIKeyHeader = "X-API-KEY"

	PrincipalKey = "principal"
)

// Auth middleware validates the X-API-KEY header against the key store.
// Requests without a known key never reach the transaction endpoints.
func Auth(keys *apikey.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(APIKeyHeader)
		if presented == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "API key required",
			})
			return
		}

		principal, err := keys.GetByKey(c.Request.Context(), presented)
		if err != nil {
			if apperrors.IsKind(err, apperrors.KindNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid API key",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"code":    "SERVICE_UNAVAILABLE",
				"message": "Unable to verify API key",
			})
			return
		}

		// Store the principal for downstream handlers and the rate limiter.
		c.Set(PrincipalKey, principal)

		c.Next()
	}
}

// GetPrincipal retrieves the authenticated caller from the gin context.
func GetPrincipal(c *gin.Context) *domain.APIKey {
	if principal, exists := c.Get(PrincipalKey); exists {
		if key, ok := principal.(*domain.APIKey); ok {
			return key
		}
	}
	return nil
}
