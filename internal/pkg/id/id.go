package id

import (
	"time"

	"github.com/google/uuid"
)

// New 生成会话/请求 ID（UUID 字符串）
func New() string {
	return uuid.New().String()
}

// IsValid 验证UUID格式是否有效
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Bookmark 收藏 ID：保存时刻的毫秒时间戳，同一毫秒内可能重复
func Bookmark(at time.Time) int64 {
	return at.UnixMilli()
}
