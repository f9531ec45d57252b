package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"tutor/internal/model"
	"tutor/internal/pkg/kvstore"
)

// 偏好设置的存储键
const (
	ThemeKey   = "theme"
	ProfileKey = "profileData"
)

// PreferenceRepo 偏好设置仓库，与收藏共用同一个键值存储
type PreferenceRepo struct {
	kv kvstore.Store
}

// NewPreferenceRepo 创建偏好设置仓库
func NewPreferenceRepo(kv kvstore.Store) *PreferenceRepo {
	return &PreferenceRepo{kv: kv}
}

// Theme 读取主题，未设置时 ok 为 false
func (r *PreferenceRepo) Theme(ctx context.Context) (string, bool, error) {
	return r.get(ctx, ThemeKey)
}

// SetTheme 保存主题
func (r *PreferenceRepo) SetTheme(ctx context.Context, theme string) error {
	return r.set(ctx, ThemeKey, theme)
}

// Profile 读取学生资料，未设置或无法解析时返回空资料
func (r *PreferenceRepo) Profile(ctx context.Context) (*model.Profile, error) {
	value, ok, err := r.get(ctx, ProfileKey)
	if err != nil {
		return nil, err
	}
	profile := &model.Profile{}
	if !ok {
		return profile, nil
	}
	if err := json.Unmarshal([]byte(value), profile); err != nil {
		return &model.Profile{}, nil
	}
	return profile, nil
}

// SetProfile 保存学生资料
func (r *PreferenceRepo) SetProfile(ctx context.Context, profile *model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return r.set(ctx, ProfileKey, string(data))
}

func (r *PreferenceRepo) get(ctx context.Context, key string) (string, bool, error) {
	if r.kv == nil {
		return "", false, fmt.Errorf("%w: no kv store configured", ErrStoreUnavailable)
	}
	value, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return value, ok, nil
}

func (r *PreferenceRepo) set(ctx context.Context, key, value string) error {
	if r.kv == nil {
		return fmt.Errorf("%w: no kv store configured", ErrStoreUnavailable)
	}
	if err := r.kv.Set(ctx, key, value); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}
