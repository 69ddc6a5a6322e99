package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"localsphere-backend/pkg/logger"
	"localsphere-backend/pkg/response"
)

// Recovery recovers from panics and returns 500 error. A panicking
// request never takes the process down with it.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered", zap.Any("panic", err), zap.String("path", c.Request.URL.Path))
				response.InternalError(c, "Internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
