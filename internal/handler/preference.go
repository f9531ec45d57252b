package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tutor/internal/model"
	httputil "tutor/internal/pkg/http"
	"tutor/internal/service"
)

// PreferenceHandler 偏好设置处理器
type PreferenceHandler struct {
	prefSvc *service.PreferenceService
}

// NewPreferenceHandler 创建偏好设置处理器
func NewPreferenceHandler(prefSvc *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{prefSvc: prefSvc}
}

// GetTheme 当前主题
// @Summary      当前主题
// @Tags         偏好设置
// @Produce      json
// @Success      200  {object}  model.ThemeResponse
// @Router       /api/preferences/theme [get]
func (h *PreferenceHandler) GetTheme(c *gin.Context) {
	theme, err := h.prefSvc.Theme(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ThemeResponse{Theme: theme})
}

// SetTheme 设置主题
// @Summary      设置主题
// @Tags         偏好设置
// @Accept       json
// @Produce      json
// @Param        request  body      model.ThemeRequest  true  "dark 或 light"
// @Success      200      {object}  model.ThemeResponse
// @Failure      400      {object}  ErrorResponse  "主题无效"
// @Router       /api/preferences/theme [put]
func (h *PreferenceHandler) SetTheme(c *gin.Context) {
	var req model.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, httputil.CodeInvalidBody, "Invalid request body", err)
		return
	}

	theme, err := h.prefSvc.SetTheme(c.Request.Context(), req.Theme)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ThemeResponse{Theme: theme})
}

// ToggleTheme 切换主题
// @Summary      切换主题
// @Tags         偏好设置
// @Produce      json
// @Success      200  {object}  model.ThemeResponse
// @Router       /api/preferences/theme/toggle [post]
func (h *PreferenceHandler) ToggleTheme(c *gin.Context) {
	theme, err := h.prefSvc.ToggleTheme(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ThemeResponse{Theme: theme})
}

// GetProfile 学生资料
// @Summary      学生资料
// @Tags         偏好设置
// @Produce      json
// @Success      200  {object}  model.Profile
// @Router       /api/preferences/profile [get]
func (h *PreferenceHandler) GetProfile(c *gin.Context) {
	profile, err := h.prefSvc.Profile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// SetProfile 保存学生资料
// @Summary      保存学生资料
// @Tags         偏好设置
// @Accept       json
// @Produce      json
// @Param        request  body      model.Profile  true  "学生资料"
// @Success      200      {object}  model.Profile
// @Router       /api/preferences/profile [put]
func (h *PreferenceHandler) SetProfile(c *gin.Context) {
	var profile model.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		badRequest(c, httputil.CodeInvalidBody, "Invalid request body", err)
		return
	}

	if err := h.prefSvc.SaveProfile(c.Request.Context(), &profile); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
