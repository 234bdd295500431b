package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shorturl-go/internal/apperrors"
	"shorturl-go/internal/limiter"
)

// RateLimitMiddleware 按客户端 IP 对创建请求做固定窗口限流
// 限流器是进程内的，多实例部署时每个实例各自计数（尽力而为）
func RateLimitMiddleware(l *limiter.FixedWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !l.Allow(key) {
			zap.L().Warn("Rate limit exceeded",
				zap.String("client_ip", key),
				zap.String("path", c.Request.URL.Path))
			_ = c.Error(apperrors.RateLimitedError())
			c.Abort()
			return
		}
		c.Next()
	}
}
