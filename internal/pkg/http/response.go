package http

import "github.com/gin-gonic/gin"

// 错误码：前三位为 HTTP 状态码
const (
	CodeInvalidBody      = 40001
	CodeInvalidParam     = 40002
	CodeNotFound         = 40401
	CodeConflict         = 40901
	CodeInternal         = 50001
	CodeProviderFailed   = 50201
	CodeStoreUnavailable = 50301
)

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Code    int    `json:"code"`             // 错误码（非0表示错误）
	Message string `json:"message"`          // 错误消息
	Detail  string `json:"detail,omitempty"` // 错误详情（可选）
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string, detail ...string) *ErrorResponse {
	resp := &ErrorResponse{
		Code:    code,
		Message: message,
	}
	if len(detail) > 0 && detail[0] != "" {
		resp.Detail = detail[0]
	}
	return resp
}

// AbortWithError 写入错误响应并中止后续处理，HTTP 状态码取错误码前三位
func AbortWithError(c *gin.Context, code int, message string, detail ...string) {
	c.AbortWithStatusJSON(code/100, NewErrorResponse(code, message, detail...))
}
