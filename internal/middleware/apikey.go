package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Raiterion-coder/finance-manager/internal/errors"
)

// APIKeyHeader carries the shared key when one is configured.
const APIKeyHeader = "X-API-Key"

// APIKey guards a route group with a single shared key. An empty key
// disables the check, which is the default for a local single-user ledger.
func APIKey(apiKey string) gin.HandlerFunc {
	if apiKey == "" {
		return func(c *gin.Context) { c.Next() }
	}
	expected := []byte(apiKey)
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}
