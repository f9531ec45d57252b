package service

import (
	"context"
	"strings"

	"tutor/internal/model"
	"tutor/internal/repository"
)

// PreferenceService 主题和学生资料
type PreferenceService struct {
	repo *repository.PreferenceRepo
}

// NewPreferenceService 创建偏好设置服务
func NewPreferenceService(repo *repository.PreferenceRepo) *PreferenceService {
	return &PreferenceService{repo: repo}
}

// Theme 当前主题，未设置或值无效时为 dark
func (s *PreferenceService) Theme(ctx context.Context) (string, error) {
	theme, ok, err := s.repo.Theme(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return model.ThemeDark, nil
	}
	if normalized, valid := normalizeTheme(theme); valid {
		return normalized, nil
	}
	return model.ThemeDark, nil
}

// SetTheme 设置主题
func (s *PreferenceService) SetTheme(ctx context.Context, theme string) (string, error) {
	normalized, ok := normalizeTheme(theme)
	if !ok {
		return "", ErrInvalidTheme
	}
	if err := s.repo.SetTheme(ctx, normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// ToggleTheme 在 dark 和 light 之间切换
func (s *PreferenceService) ToggleTheme(ctx context.Context) (string, error) {
	current, err := s.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := model.ThemeLight
	if current == model.ThemeLight {
		next = model.ThemeDark
	}
	return s.SetTheme(ctx, next)
}

// Profile 学生资料
func (s *PreferenceService) Profile(ctx context.Context) (*model.Profile, error) {
	return s.repo.Profile(ctx)
}

// SaveProfile 保存学生资料
func (s *PreferenceService) SaveProfile(ctx context.Context, profile *model.Profile) error {
	return s.repo.SetProfile(ctx, profile)
}

func normalizeTheme(theme string) (string, bool) {
	switch t := strings.ToLower(strings.TrimSpace(theme)); t {
	case model.ThemeDark, model.ThemeLight:
		return t, true
	default:
		return "", false
	}
}
