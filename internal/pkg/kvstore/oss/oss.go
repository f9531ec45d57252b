package oss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"tutor/internal/pkg/kvstore"
)

// OSSStore 阿里云OSS键值存储，每个键一个对象
type OSSStore struct {
	bucket     *oss.Bucket
	bucketName string
	prefix     string
}

// NewOSSStore 创建阿里云OSS存储
func NewOSSStore(endpoint, bucketName, accessKeyID, accessKeySecret, prefix string) (*OSSStore, error) {
	// 创建OSS客户端
	client, err := oss.New(endpoint, accessKeyID, accessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	// 获取Bucket
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &OSSStore{
		bucket:     bucket,
		bucketName: bucketName,
		prefix:     strings.Trim(prefix, "/"),
	}, nil
}

// Get 读取对象内容
func (s *OSSStore) Get(ctx context.Context, key string) (string, bool, error) {
	body, err := s.bucket.GetObject(s.objectKey(key), oss.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get object: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", false, fmt.Errorf("failed to read object: %w", err)
	}
	return string(data), true, nil
}

// Set 覆盖写入对象
func (s *OSSStore) Set(ctx context.Context, key, value string) error {
	options := []oss.Option{
		oss.ContentType("application/json"),
		oss.WithContext(ctx),
	}
	if err := s.bucket.PutObject(s.objectKey(key), strings.NewReader(value), options...); err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

// Remove 删除对象
func (s *OSSStore) Remove(ctx context.Context, key string) error {
	if err := s.bucket.DeleteObject(s.objectKey(key), oss.WithContext(ctx)); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Close OSS 客户端无需关闭
func (s *OSSStore) Close() error {
	return nil
}

// Type 存储类型
func (s *OSSStore) Type() string {
	return string(kvstore.TypeOSS)
}

func (s *OSSStore) objectKey(key string) string {
	if s.prefix == "" {
		return key + ".json"
	}
	return path.Join(s.prefix, key+".json")
}

func isNotFound(err error) bool {
	var svcErr oss.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.StatusCode == http.StatusNotFound || svcErr.Code == "NoSuchKey"
	}
	return false
}
