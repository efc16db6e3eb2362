package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "github.com/AlexyDarius/finarius/internal/errors"
)

// PipelineAuthMiddleware guards the mutating pipeline endpoints (cache clear,
// price download) with the X-API-Key header. An empty configured key disables
// those endpoints entirely.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			RespondError(c, apperrors.ErrPipelineNotConfigured)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			RespondError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
