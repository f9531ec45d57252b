package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tutor/internal/ai"
	"tutor/internal/pkg/bookmarktools"
	"tutor/internal/pkg/conversation"
	httputil "tutor/internal/pkg/http"
	"tutor/internal/repository"
	"tutor/internal/service"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// respondError 按错误类型选择状态码和错误码
func respondError(c *gin.Context, err error) {
	var code int
	var message string

	switch {
	case errors.Is(err, ai.ErrEmptyContent),
		errors.Is(err, conversation.ErrEmptyContent):
		code, message = httputil.CodeInvalidBody, "Content must not be empty"
	case errors.Is(err, ai.ErrUnknownModel):
		code, message = httputil.CodeInvalidBody, "Unknown model"
	case errors.Is(err, conversation.ErrUnknownRole):
		code, message = httputil.CodeInvalidBody, "Unknown message role"
	case errors.Is(err, repository.ErrInvalidPair):
		code, message = httputil.CodeInvalidBody, "Invalid conversation pair"
	case errors.Is(err, service.ErrInvalidTheme):
		code, message = httputil.CodeInvalidParam, "Invalid theme"
	case errors.Is(err, bookmarktools.ErrUnsupportedFormat):
		code, message = httputil.CodeInvalidParam, "Unsupported export format"
	case errors.Is(err, service.ErrSessionNotFound):
		code, message = httputil.CodeNotFound, "Conversation session not found"
	case errors.Is(err, conversation.ErrOrphanMessage):
		code, message = httputil.CodeConflict, "No pending user message"
	case errors.Is(err, service.ErrChatFailed):
		code, message = httputil.CodeProviderFailed, "Chat provider failed"
	case errors.Is(err, repository.ErrStoreUnavailable):
		code, message = httputil.CodeStoreUnavailable, "Bookmark storage unavailable"
	default:
		code, message = httputil.CodeInternal, "Internal server error"
	}

	if code/100 == http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("request failed")
	}
	httputil.AbortWithError(c, code, message, err.Error())
}

// badRequest 请求体或参数无法解析
func badRequest(c *gin.Context, code int, message string, err error) {
	httputil.AbortWithError(c, code, message, err.Error())
}
