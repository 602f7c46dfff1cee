package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneylens/internal/errors"
)

var (
	errKeyNotConfigured = &apperrors.AppError{Code: "API_KEY_NOT_CONFIGURED", Message: "This endpoint is not configured", StatusCode: http.StatusServiceUnavailable}
	errInvalidAPIKey    = &apperrors.AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
)

// APIKeyAuth guards machine endpoints such as /metrics with a static key
// sent in X-API-Key. An empty configured key disables the endpoint.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, errKeyNotConfigured)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, errInvalidAPIKey)
			return
		}
		c.Next()
	}
}
