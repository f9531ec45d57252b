package bolt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"

	"tutor/internal/pkg/kvstore"
)

// DefaultBucket 默认 bucket 名称
const DefaultBucket = "kv"

// Store BoltDB 单文件键值存储
type Store struct {
	db     *bbolt.DB
	bucket []byte
}

// Open 打开（必要时创建）数据库文件
func Open(path, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bolt dir: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}

	return &Store{db: db, bucket: []byte(bucket)}, nil
}

// Get 读取值，返回的字符串是拷贝，事务结束后仍然有效
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v != nil {
			value = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, mapErr(err)
	}
	return value, found, nil
}

// Set 写入值
func (s *Store) Set(ctx context.Context, key, value string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), []byte(value))
	})
	return mapErr(err)
}

// Remove 删除键
func (s *Store) Remove(ctx context.Context, key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
	return mapErr(err)
}

// Close 关闭数据库文件
func (s *Store) Close() error {
	return s.db.Close()
}

// Type 存储类型
func (s *Store) Type() string {
	return string(kvstore.TypeBolt)
}

func mapErr(err error) error {
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return kvstore.ErrClosed
	}
	return err
}
