package handler

import (
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tutor/internal/model"
	httputil "tutor/internal/pkg/http"
	"tutor/internal/service"
)

// BookmarkHandler 收藏处理器
type BookmarkHandler struct {
	bookmarkSvc    *service.BookmarkService
	originPatterns []string
}

// NewBookmarkHandler 创建收藏处理器，originPatterns 为 websocket 允许的来源
func NewBookmarkHandler(bookmarkSvc *service.BookmarkService, originPatterns []string) *BookmarkHandler {
	return &BookmarkHandler{
		bookmarkSvc:    bookmarkSvc,
		originPatterns: originPatterns,
	}
}

// List 收藏列表
// @Summary      收藏列表
// @Description  返回有效收藏，按助手回复时间倒序
// @Tags         收藏
// @Produce      json
// @Success      200  {object}  model.BookmarkListResponse
// @Failure      503  {object}  ErrorResponse  "存储不可用"
// @Router       /api/bookmarks [get]
func (h *BookmarkHandler) List(c *gin.Context) {
	bookmarks, err := h.bookmarkSvc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.BookmarkListResponse{
		Bookmarks: bookmarks,
		Total:     len(bookmarks),
	})
}

// Save 保存一问一答
// @Summary      保存收藏
// @Description  重复内容返回 outcome=duplicate，不视为错误
// @Tags         收藏
// @Accept       json
// @Produce      json
// @Param        request  body      model.SaveBookmarkRequest  true  "一问一答"
// @Success      200      {object}  model.SaveBookmarkResponse
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      503      {object}  ErrorResponse  "存储不可用"
// @Router       /api/bookmarks [post]
func (h *BookmarkHandler) Save(c *gin.Context) {
	var req model.SaveBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, httputil.CodeInvalidBody, "Invalid request body", err)
		return
	}

	result, err := h.bookmarkSvc.Save(c.Request.Context(), &model.Conversation{
		User:      req.User,
		Assistant: req.Assistant,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSaveResponse(result))
}

// Remove 删除收藏
// @Summary      删除收藏
// @Tags         收藏
// @Produce      json
// @Param        id   path      int  true  "收藏ID"
// @Success      200  {object}  model.RemoveBookmarkResponse
// @Failure      400  {object}  ErrorResponse  "ID 无效"
// @Failure      503  {object}  ErrorResponse  "存储不可用"
// @Router       /api/bookmarks/{id} [delete]
func (h *BookmarkHandler) Remove(c *gin.Context) {
	bookmarkID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, httputil.CodeInvalidParam, "Invalid bookmark id", err)
		return
	}

	removed, err := h.bookmarkSvc.Remove(c.Request.Context(), bookmarkID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.RemoveBookmarkResponse{Removed: removed})
}

// Export 导出收藏
// @Summary      导出收藏
// @Tags         收藏
// @Produce      text/markdown
// @Produce      text/html
// @Param        format  query     string  false  "markdown 或 html"  default(markdown)
// @Success      200     {string}  string
// @Failure      400     {object}  ErrorResponse  "格式不支持"
// @Router       /api/bookmarks/export [get]
func (h *BookmarkHandler) Export(c *gin.Context) {
	content, contentType, err := h.bookmarkSvc.Export(c.Request.Context(), c.DefaultQuery("format", "markdown"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, []byte(content))
}

// Events 收藏变更推送
// @Summary      收藏变更推送 (websocket)
// @Description  每次收藏集合变化时推送 {"type":"refresh","key":"chatBookmarks"}
// @Tags         收藏
// @Router       /api/bookmarks/events [get]
func (h *BookmarkHandler) Events(c *gin.Context) {
	opts := &websocket.AcceptOptions{OriginPatterns: h.originPatterns}
	if len(h.originPatterns) == 0 {
		opts.InsecureSkipVerify = true
	}

	conn, err := websocket.Accept(c.Writer, c.Request, opts)
	if err != nil {
		log.Warn().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	events, cancel := h.bookmarkSvc.Subscribe()
	defer cancel()

	// 只推送，不读取客户端消息
	ctx := conn.CloseRead(c.Request.Context())
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		}
	}
}
