// internal/middleware/logging_middleware.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"board-bridge/internal/utils"
)

// LoggingMiddleware logs every request once it completes
func LoggingMiddleware(logger *utils.ServiceLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		// The upgrade handler returns when the socket is handed off
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.LogAPIRequest(
			c.Request.Method,
			path,
			c.Request.UserAgent(),
			c.ClientIP(),
			c.Writer.Status(),
			time.Since(startTime),
		)
	}
}
