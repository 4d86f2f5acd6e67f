// internal/middleware/recovery_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"label-service/internal/utils"
)

// RecoveryMiddleware turns a handler panic into a 500 envelope. Panics caused
// by a client that went away are logged without a response.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			fields := []zap.Field{
				zap.Any("panic", recovered),
				zap.String("request_id", c.GetString(RequestIDKey)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
			}

			if err, ok := recovered.(error); ok && clientGone(err) {
				logger.Warn("Client disconnected", fields...)
				c.Abort()
				return
			}

			logger.Error("Panic recovered", append(fields, zap.Stack("stacktrace"))...)
			utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", nil)
			c.Abort()
		}()

		c.Next()
	}
}

func clientGone(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
