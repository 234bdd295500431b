package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shorturl-go/internal/apperrors"
	"shorturl-go/internal/i18n"
	"shorturl-go/response"
)

// GlobalErrorMiddleware 全局错误中间件
// 把 handler 通过 c.Error 附加的 AppError 映射为对应状态码和本地化消息
func GlobalErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			for _, err := range c.Errors {
				var appErr *apperrors.AppError
				if errors.As(err.Err, &appErr) {
					c.AbortWithStatusJSON(appErr.Code, response.ErrorFromAppError(appErr, localize(c, appErr.MessageID)))
					return
				}
			}

			// 默认处理未定义的错误
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error("Internal Server Error"))
			return
		}
	}
}

// localize 用请求上下文里的 Localizer 翻译消息键，失败时返回空串让调用方兜底
func localize(c *gin.Context, messageID string) string {
	if messageID == "" {
		return ""
	}
	return i18n.Localize(c.Request.Context(), messageID)
}
