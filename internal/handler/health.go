package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	port func() int
}

// NewHealthHandler 创建健康检查处理器，port 返回实际监听端口
func NewHealthHandler(port func() int) *HealthHandler {
	return &HealthHandler{port: port}
}

// Health 健康检查
// @Summary      健康检查
// @Tags         系统
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.port != nil {
		resp["port"] = h.port()
	}
	c.JSON(http.StatusOK, resp)
}

// Ready 就绪检查
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
