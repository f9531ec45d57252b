package middleware

import (
	"github.com/gin-gonic/gin"

	"tutor/internal/pkg/ctxutil"
	"tutor/internal/pkg/id"
)

// RequestIDHeader 请求 ID 头
const RequestIDHeader = "X-Request-ID"

// RequestID 请求 ID 中间件，沿用客户端传入的合法 ID，否则生成新的
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !id.IsValid(requestID) {
			requestID = id.New()
		}

		c.Set("request_id", requestID)
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), requestID))
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}
