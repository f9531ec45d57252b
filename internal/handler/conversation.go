package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tutor/internal/model"
	httputil "tutor/internal/pkg/http"
	"tutor/internal/service"
)

// sessionURI 会话路径参数
type sessionURI struct {
	ID string `uri:"id" binding:"required"`
}

// ConversationHandler 对话会话处理器
type ConversationHandler struct {
	chatSvc     *service.ChatService
	bookmarkSvc *service.BookmarkService
}

// NewConversationHandler 创建对话会话处理器
func NewConversationHandler(chatSvc *service.ChatService, bookmarkSvc *service.BookmarkService) *ConversationHandler {
	return &ConversationHandler{
		chatSvc:     chatSvc,
		bookmarkSvc: bookmarkSvc,
	}
}

// Create 创建会话
// @Summary      创建会话
// @Tags         会话
// @Produce      json
// @Success      201  {object}  model.SessionResponse
// @Router       /api/conversations [post]
func (h *ConversationHandler) Create(c *gin.Context) {
	c.JSON(http.StatusCreated, model.SessionResponse{ID: h.chatSvc.CreateSession()})
}

// Delete 删除会话
// @Summary      删除会话
// @Tags         会话
// @Param        id   path  string  true  "会话ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse  "会话不存在"
// @Router       /api/conversations/{id} [delete]
func (h *ConversationHandler) Delete(c *gin.Context) {
	var uri sessionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, httputil.CodeInvalidParam, "Invalid session id", err)
		return
	}
	if !h.chatSvc.DeleteSession(uri.ID) {
		respondError(c, service.ErrSessionNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// RecordMessage 记录一条消息事件
// @Summary      记录消息
// @Description  记录由客户端产生的 user / assistant / error 消息事件
// @Tags         会话
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "会话ID"
// @Param        request  body      model.RecordMessageRequest  true  "消息"
// @Success      200      {object}  model.PairResponse
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      404      {object}  ErrorResponse  "会话不存在"
// @Failure      409      {object}  ErrorResponse  "没有等待回复的用户消息"
// @Router       /api/conversations/{id}/messages [post]
func (h *ConversationHandler) RecordMessage(c *gin.Context) {
	var uri sessionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, httputil.CodeInvalidParam, "Invalid session id", err)
		return
	}
	var req model.RecordMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, httputil.CodeInvalidBody, "Invalid request body", err)
		return
	}

	if err := h.chatSvc.RecordMessage(uri.ID, &req); err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.chatSvc.LatestPair(uri.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LatestPair 最近一次完整配对
// @Summary      最近一次完整配对
// @Tags         会话
// @Produce      json
// @Param        id   path      string  true  "会话ID"
// @Success      200  {object}  model.PairResponse
// @Failure      404  {object}  ErrorResponse  "会话不存在"
// @Router       /api/conversations/{id}/pair [get]
func (h *ConversationHandler) LatestPair(c *gin.Context) {
	var uri sessionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, httputil.CodeInvalidParam, "Invalid session id", err)
		return
	}

	resp, err := h.chatSvc.LatestPair(uri.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Bookmark 收藏会话中最近一次完整配对
// @Summary      收藏最近的配对
// @Tags         会话
// @Produce      json
// @Param        id   path      string  true  "会话ID"
// @Success      200  {object}  model.SaveBookmarkResponse
// @Failure      404  {object}  ErrorResponse  "会话不存在"
// @Failure      503  {object}  ErrorResponse  "存储不可用"
// @Router       /api/conversations/{id}/bookmark [post]
func (h *ConversationHandler) Bookmark(c *gin.Context) {
	var uri sessionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, httputil.CodeInvalidParam, "Invalid session id", err)
		return
	}

	result, err := h.bookmarkSvc.SaveLatest(c.Request.Context(), uri.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSaveResponse(result))
}

func toSaveResponse(result *service.SaveResult) model.SaveBookmarkResponse {
	return model.SaveBookmarkResponse{
		Outcome:  string(result.Outcome),
		Message:  result.Outcome.Message(),
		Bookmark: result.Bookmark,
	}
}
