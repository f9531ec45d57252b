package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tutor/internal/model"
	httputil "tutor/internal/pkg/http"
	"tutor/internal/service"
)

// ChatHandler 对话处理器
type ChatHandler struct {
	chatSvc *service.ChatService
}

// NewChatHandler 创建对话处理器
func NewChatHandler(chatSvc *service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// Chat 对话接口
// @Summary      发送消息
// @Description  发送一条用户消息并返回助手回复；带 session_id 时回复进入该会话的配对跟踪器
// @Tags         对话
// @Accept       json
// @Produce      json
// @Param        request  body      model.ChatRequest  true  "对话请求"
// @Success      200      {object}  model.ChatResponse
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      404      {object}  ErrorResponse  "会话不存在"
// @Failure      502      {object}  ErrorResponse  "模型调用失败"
// @Router       /api/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, httputil.CodeInvalidBody, "Invalid request body", err)
		return
	}

	resp, err := h.chatSvc.Chat(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Models 可用模型
// @Summary      可用模型列表
// @Tags         对话
// @Produce      json
// @Success      200  {object}  model.ModelsResponse
// @Router       /api/models [get]
func (h *ChatHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatSvc.Models())
}
