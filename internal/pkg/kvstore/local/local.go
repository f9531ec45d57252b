package local

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"tutor/internal/pkg/kvstore"
)

// LocalStore 本地文件系统键值存储，每个键一个文件
type LocalStore struct {
	basePath string // 基础路径
}

// NewLocalStore 创建本地文件系统存储
func NewLocalStore(basePath string) (*LocalStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("local base path is required")
	}
	// 确保基础路径存在
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	return &LocalStore{basePath: basePath}, nil
}

// Get 读取值
func (s *LocalStore) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set 先写临时文件再重命名，读方不会看到半截内容
func (s *LocalStore) Set(ctx context.Context, key, value string) error {
	tmp, err := os.CreateTemp(s.basePath, ".kv-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace key %s: %w", key, err)
	}
	return nil
}

// Remove 删除键
func (s *LocalStore) Remove(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return nil // 文件不存在，认为删除成功
		}
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Close 无需释放资源
func (s *LocalStore) Close() error {
	return nil
}

// Type 存储类型
func (s *LocalStore) Type() string {
	return string(kvstore.TypeLocal)
}

// path 键经过转义，不会逃出基础路径
func (s *LocalStore) path(key string) string {
	return filepath.Join(s.basePath, url.PathEscape(key)+".json")
}
